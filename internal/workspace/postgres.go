package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/termgraph/changetrack/internal/domain"
)

// PostgresRegistry is the durable source of vocabulary tracking contexts.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistry wires a registry backed by pgxpool.
func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

func (r *PostgresRegistry) TrackingContext(ctx context.Context, vocabulary domain.URI) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("context registry not initialized")
	}

	var trackingContext string
	err := r.pool.QueryRow(
		ctx,
		`SELECT context_iri FROM vocabulary_contexts WHERE vocabulary_iri = $1`,
		string(vocabulary),
	).Scan(&trackingContext)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("vocabulary %s: %w", vocabulary, ErrNotFound)
		}
		return "", fmt.Errorf("failed to look up tracking context: %w", err)
	}

	return trackingContext, nil
}

func (r *PostgresRegistry) Register(ctx context.Context, vocabulary domain.URI, trackingContext string) error {
	if r.pool == nil {
		return fmt.Errorf("context registry not initialized")
	}
	if vocabulary.Empty() || trackingContext == "" {
		return fmt.Errorf("vocabulary and tracking context are required")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO vocabulary_contexts (vocabulary_iri, context_iri)
		 VALUES ($1, $2)
		 ON CONFLICT (vocabulary_iri) DO UPDATE SET context_iri = EXCLUDED.context_iri`,
		string(vocabulary),
		trackingContext,
	)
	if err != nil {
		return fmt.Errorf("failed to register tracking context: %w", err)
	}

	return nil
}
