package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both pgxpool.Pool and pgx.Tx, so a store view can
// run inside the caller's transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresStore persists quads in a statements table.
type PostgresStore struct {
	db querier
}

// NewPostgresStore creates a store backed by the connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// WithTx returns a view of the store that executes within the given
// transaction, so change records become visible together with the business
// write they accompany.
func (s *PostgresStore) WithTx(tx pgx.Tx) *PostgresStore {
	return &PostgresStore{db: tx}
}

// Insert appends the quads in one batch.
func (s *PostgresStore) Insert(ctx context.Context, quads []Quad) error {
	if len(quads) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, quad := range quads {
		batch.Queue(
			`INSERT INTO statements (context, subject, predicate, object_value, object_iri, object_lang)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			quad.Context,
			quad.Subject,
			quad.Predicate,
			quad.Object.Value,
			quad.Object.IRI,
			quad.Object.Lang,
		)
	}
	results := s.db.SendBatch(ctx, batch)
	defer results.Close()
	for range quads {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert statement: %w", err)
		}
	}
	return nil
}

// Find returns every quad matching the pattern.
func (s *PostgresStore) Find(ctx context.Context, pattern Pattern) ([]Quad, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT context, subject, predicate, object_value, object_iri, object_lang FROM statements`)

	conditions := []string{}
	args := []any{}
	appendCondition := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if pattern.Context != "" {
		appendCondition("context", pattern.Context)
	}
	if pattern.Subject != "" {
		appendCondition("subject", pattern.Subject)
	}
	if pattern.Predicate != "" {
		appendCondition("predicate", pattern.Predicate)
	}
	if pattern.Object != nil {
		appendCondition("object_value", pattern.Object.Value)
		appendCondition("object_iri", pattern.Object.IRI)
		appendCondition("object_lang", pattern.Object.Lang)
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY id")

	rows, err := s.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	quads := []Quad{}
	for rows.Next() {
		var quad Quad
		if scanErr := rows.Scan(
			&quad.Context,
			&quad.Subject,
			&quad.Predicate,
			&quad.Object.Value,
			&quad.Object.IRI,
			&quad.Object.Lang,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", scanErr)
		}
		quads = append(quads, quad)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate statements: %w", rowsErr)
	}

	return quads, nil
}
