// Package export renders an asset's change history into downloadable
// formats.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/termgraph/changetrack/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// HistoryReader is the slice of the change record store the exporter needs.
type HistoryReader interface {
	FindAll(ctx context.Context, asset *domain.Instance) ([]domain.ChangeRecord, error)
}

// Service exports change histories.
type Service struct {
	history HistoryReader
}

// NewService creates an export service over the history reader.
func NewService(history HistoryReader) *Service {
	return &Service{history: history}
}

var historyHeader = []string{"Recorded", "Kind", "Author", "Attribute", "Original Value", "New Value", "Label", "Vocabulary"}

// ExportHistory writes the asset's full history to w in the given format.
func (s *Service) ExportHistory(ctx context.Context, asset *domain.Instance, format Format, w io.Writer) error {
	records, err := s.history.FindAll(ctx, asset)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, historyRow(record))
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func historyRow(record domain.ChangeRecord) []string {
	return []string{
		record.Timestamp.UTC().Format(time.RFC3339),
		string(record.Type),
		string(record.Author),
		string(record.ChangedAttribute),
		formatValues(record.OriginalValue),
		formatValues(record.NewValue),
		formatLabel(record.Label),
		string(record.Vocabulary),
	}
}

func writeCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(historyHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, rows [][]string) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	const sheet = "History"
	if err := workbook.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to prepare worksheet: %w", err)
	}

	writeRow := func(rowIndex int, values []string) error {
		for columnIndex, value := range values {
			cell, err := excelize.CoordinatesToCellName(columnIndex+1, rowIndex)
			if err != nil {
				return err
			}
			if err := workbook.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, historyHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if err := writeRow(i+2, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := workbook.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatValues(values domain.ValueSet) string {
	if values.Empty() {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, value := range values.Sorted() {
		switch {
		case value.Identifier:
			parts = append(parts, "<"+value.Lexical+">")
		case value.Language != "":
			parts = append(parts, value.Lexical+"@"+value.Language)
		default:
			parts = append(parts, value.Lexical)
		}
	}
	return strings.Join(parts, "; ")
}

func formatLabel(label domain.MultilingualString) string {
	if len(label) == 0 {
		return ""
	}
	languages := make([]string, 0, len(label))
	for lang := range label {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	parts := make([]string, 0, len(languages))
	for _, lang := range languages {
		if lang == "" {
			parts = append(parts, label[lang])
			continue
		}
		parts = append(parts, label[lang]+"@"+lang)
	}
	return strings.Join(parts, "; ")
}
