package changelog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/termgraph/changetrack/internal/domain"
	"github.com/termgraph/changetrack/internal/graph"
)

// PersistenceError wraps a backing-store failure during change tracking. The
// engine performs no retries; rollback belongs to the surrounding transaction
// manager.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("change tracking persistence failure (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store writes change records into their resolved tracking context and reads
// an asset's history back ordered newest-first.
type Store struct {
	graph    graph.Store
	resolver *ContextResolver
	log      *logrus.Entry
}

// NewStore creates a record store over the graph store and context resolver.
func NewStore(graphStore graph.Store, resolver *ContextResolver, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		graph:    graphStore,
		resolver: resolver,
		log:      logger.WithField("component", "changelog"),
	}
}

// Persist writes one change record into the context resolved for the asset.
// Only the author's identifier is written; the author entity itself lives in
// its own shared partition and is never duplicated into tracking contexts.
func (s *Store) Persist(ctx context.Context, record domain.ChangeRecord, asset *domain.Instance) error {
	if record.Author.Empty() || record.ChangedEntity.Empty() || record.Timestamp.IsZero() {
		return fmt.Errorf("changelog: record requires author, changed entity and timestamp")
	}
	if record.Type.TypeIRI() == "" {
		return fmt.Errorf("changelog: unknown record kind %q", record.Type)
	}

	trackingContext, err := s.resolver.Resolve(ctx, asset)
	if err != nil {
		return &PersistenceError{Op: "resolve tracking context", Err: err}
	}

	if err := s.graph.Insert(ctx, recordQuads(record, trackingContext)); err != nil {
		return &PersistenceError{Op: "write record", Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"record":  record.ID,
		"kind":    record.Type,
		"entity":  record.ChangedEntity,
		"context": trackingContext,
	}).Debug("persisted change record")
	return nil
}

// FindAll returns every change record describing the asset, ordered by
// timestamp descending and, within one timestamp, ascending by changed
// attribute with delete records last. An asset without history yields an
// empty list.
func (s *Store) FindAll(ctx context.Context, asset *domain.Instance) ([]domain.ChangeRecord, error) {
	trackingContext, err := s.resolver.Resolve(ctx, asset)
	if err != nil {
		return nil, err
	}

	entityRef := graph.IRI(string(asset.URI))
	refs, err := s.graph.Find(ctx, graph.Pattern{
		Predicate: domain.PropChangedEntity,
		Object:    &entityRef,
		Context:   trackingContext,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "read history", Err: err}
	}

	records := make([]domain.ChangeRecord, 0, len(refs))
	for _, ref := range refs {
		quads, err := s.graph.Find(ctx, graph.Pattern{Subject: ref.Subject, Context: trackingContext})
		if err != nil {
			return nil, &PersistenceError{Op: "read record", Err: err}
		}
		record, err := assembleRecord(ref.Subject, quads)
		if err != nil {
			return nil, fmt.Errorf("changelog: record %s: %w", ref.Subject, err)
		}
		records = append(records, record)
	}

	domain.SortRecords(records)
	return records, nil
}

// recordQuads encodes a record as facts in its tracking context.
func recordQuads(record domain.ChangeRecord, trackingContext string) []graph.Quad {
	subject := string(record.IRI())
	quads := []graph.Quad{
		{Subject: subject, Predicate: domain.RDFType, Object: graph.IRI(record.Type.TypeIRI()), Context: trackingContext},
		{Subject: subject, Predicate: domain.PropTimestamp, Object: graph.Literal(record.Timestamp.UTC().Format(time.RFC3339Nano)), Context: trackingContext},
		{Subject: subject, Predicate: domain.PropAuthor, Object: graph.IRI(string(record.Author)), Context: trackingContext},
		{Subject: subject, Predicate: domain.PropChangedEntity, Object: graph.IRI(string(record.ChangedEntity)), Context: trackingContext},
	}

	switch record.Type {
	case domain.ChangeUpdate:
		quads = append(quads, graph.Quad{
			Subject: subject, Predicate: domain.PropChangedAttribute,
			Object: graph.IRI(string(record.ChangedAttribute)), Context: trackingContext,
		})
		for _, value := range record.OriginalValue.Sorted() {
			quads = append(quads, graph.Quad{
				Subject: subject, Predicate: domain.PropOriginalValue,
				Object: valueTerm(value), Context: trackingContext,
			})
		}
		for _, value := range record.NewValue.Sorted() {
			quads = append(quads, graph.Quad{
				Subject: subject, Predicate: domain.PropNewValue,
				Object: valueTerm(value), Context: trackingContext,
			})
		}
	case domain.ChangeDelete:
		for _, lang := range sortedLanguages(record.Label) {
			quads = append(quads, graph.Quad{
				Subject: subject, Predicate: domain.RDFSLabel,
				Object: graph.LangLiteral(record.Label[lang], lang), Context: trackingContext,
			})
		}
		if !record.Vocabulary.Empty() {
			quads = append(quads, graph.Quad{
				Subject: subject, Predicate: domain.PropVocabulary,
				Object: graph.IRI(string(record.Vocabulary)), Context: trackingContext,
			})
		}
	}

	return quads
}

// assembleRecord rebuilds a record from the facts stored under its subject.
func assembleRecord(subject string, quads []graph.Quad) (domain.ChangeRecord, error) {
	id, err := domain.RecordIDFromIRI(subject)
	if err != nil {
		return domain.ChangeRecord{}, fmt.Errorf("invalid record identifier: %w", err)
	}

	record := domain.ChangeRecord{ID: id}
	var originalValues, newValues []domain.Value
	for _, quad := range quads {
		switch quad.Predicate {
		case domain.RDFType:
			kind, ok := domain.ChangeTypeFromIRI(quad.Object.Value)
			if !ok {
				return domain.ChangeRecord{}, fmt.Errorf("unknown record kind %q", quad.Object.Value)
			}
			record.Type = kind
		case domain.PropTimestamp:
			timestamp, parseErr := time.Parse(time.RFC3339Nano, quad.Object.Value)
			if parseErr != nil {
				return domain.ChangeRecord{}, fmt.Errorf("invalid timestamp: %w", parseErr)
			}
			record.Timestamp = timestamp
		case domain.PropAuthor:
			record.Author = domain.URI(quad.Object.Value)
		case domain.PropChangedEntity:
			record.ChangedEntity = domain.URI(quad.Object.Value)
		case domain.PropChangedAttribute:
			record.ChangedAttribute = domain.URI(quad.Object.Value)
		case domain.PropOriginalValue:
			originalValues = append(originalValues, termValue(quad.Object))
		case domain.PropNewValue:
			newValues = append(newValues, termValue(quad.Object))
		case domain.RDFSLabel:
			if record.Label == nil {
				record.Label = domain.MultilingualString{}
			}
			record.Label[quad.Object.Lang] = quad.Object.Value
		case domain.PropVocabulary:
			record.Vocabulary = domain.URI(quad.Object.Value)
		}
	}
	if record.Type == "" {
		return domain.ChangeRecord{}, fmt.Errorf("record kind fact is missing")
	}
	record.OriginalValue = domain.NewValueSet(originalValues...)
	record.NewValue = domain.NewValueSet(newValues...)

	return record, nil
}

func valueTerm(value domain.Value) graph.Term {
	return graph.Term{Value: value.Lexical, IRI: value.Identifier, Lang: value.Language}
}

func termValue(term graph.Term) domain.Value {
	return domain.Value{Lexical: term.Value, Identifier: term.IRI, Language: term.Lang}
}

func sortedLanguages(label domain.MultilingualString) []string {
	if len(label) == 0 {
		return nil
	}
	languages := make([]string, 0, len(label))
	for lang := range label {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}
