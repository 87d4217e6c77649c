// Package workspace tracks which storage partition holds the change records
// of each vocabulary. The mapping is workspace metadata: vocabularies get
// their dedicated tracking context registered once, and resolution afterwards
// is a read-only lookup.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/termgraph/changetrack/internal/domain"
)

// ErrNotFound reports that a vocabulary has no registered tracking context.
var ErrNotFound = errors.New("tracking context not found")

// ContextRegistry maps vocabularies to their tracking contexts.
type ContextRegistry interface {
	// TrackingContext returns the tracking context registered for the
	// vocabulary, or ErrNotFound.
	TrackingContext(ctx context.Context, vocabulary domain.URI) (string, error)
	// Register stores the tracking context for a vocabulary, replacing any
	// previous registration.
	Register(ctx context.Context, vocabulary domain.URI, trackingContext string) error
}

// MemoryRegistry is an in-process registry for tests and embedded use.
type MemoryRegistry struct {
	mu       sync.RWMutex
	contexts map[domain.URI]string
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{contexts: make(map[domain.URI]string)}
}

func (r *MemoryRegistry) TrackingContext(ctx context.Context, vocabulary domain.URI) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	trackingContext, ok := r.contexts[vocabulary]
	if !ok {
		return "", fmt.Errorf("vocabulary %s: %w", vocabulary, ErrNotFound)
	}
	return trackingContext, nil
}

func (r *MemoryRegistry) Register(ctx context.Context, vocabulary domain.URI, trackingContext string) error {
	if vocabulary.Empty() || trackingContext == "" {
		return fmt.Errorf("vocabulary and tracking context are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[vocabulary] = trackingContext
	return nil
}
