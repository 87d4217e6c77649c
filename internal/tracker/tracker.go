// Package tracker orchestrates change tracking: it runs the diff calculator,
// stamps provenance onto the resulting records and hands them to the change
// record store. Calls are expected to run inside the same transaction as the
// business write they describe.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/termgraph/changetrack/internal/changelog"
	"github.com/termgraph/changetrack/internal/diff"
	"github.com/termgraph/changetrack/internal/domain"
)

// Tracker records creation, update and deletion events. Timestamps issued by
// one tracker instance are monotonically non-decreasing.
type Tracker struct {
	records    *changelog.Store
	calculator *diff.Calculator
	log        *logrus.Entry

	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// Option customizes a tracker.
type Option func(*Tracker)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a tracker over the record store and diff calculator.
func New(records *changelog.Store, calculator *diff.Calculator, logger *logrus.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	tracker := &Tracker{
		records:    records,
		calculator: calculator,
		log:        logger.WithField("component", "tracker"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(tracker)
	}
	return tracker
}

// RecordAddEvent persists one persist record for a freshly created entity.
// No diff is computed.
func (t *Tracker) RecordAddEvent(ctx context.Context, author domain.URI, created *domain.Instance) error {
	if err := requireActor(author); err != nil {
		return err
	}
	if created == nil || created.URI.Empty() {
		return fmt.Errorf("tracker: created entity with identifier is required")
	}

	record := domain.NewPersistRecord(created.URI)
	record.Author = author
	record.Timestamp = t.timestamp()

	if err := t.records.Persist(ctx, record, created); err != nil {
		return err
	}
	t.log.WithFields(logrus.Fields{"entity": created.URI, "author": author}).Debug("recorded entity creation")
	return nil
}

// RecordUpdateEvent diffs the updated entity against the original, stamps
// every resulting record with the author and one shared timestamp, and
// persists each record. An empty diff writes nothing.
func (t *Tracker) RecordUpdateEvent(ctx context.Context, author domain.URI, updated, original *domain.Instance) error {
	if err := requireActor(author); err != nil {
		return err
	}

	changes, err := t.calculator.CalculateChanges(updated, original)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	timestamp := t.timestamp()
	for i := range changes {
		changes[i].Author = author
		changes[i].Timestamp = timestamp
		if err := t.records.Persist(ctx, changes[i], updated); err != nil {
			return err
		}
	}
	t.log.WithFields(logrus.Fields{
		"entity":  updated.URI,
		"author":  author,
		"changes": len(changes),
	}).Debug("recorded entity update")
	return nil
}

// RecordDeleteEvent persists one delete record snapshotting the entity's
// label and owning vocabulary, so the event stays displayable after the
// entity itself is gone.
func (t *Tracker) RecordDeleteEvent(ctx context.Context, author domain.URI, deleted *domain.Instance, label domain.MultilingualString, vocabulary domain.URI) error {
	if err := requireActor(author); err != nil {
		return err
	}
	if deleted == nil || deleted.URI.Empty() {
		return fmt.Errorf("tracker: deleted entity with identifier is required")
	}

	record := domain.NewDeleteRecord(deleted.URI, label, vocabulary)
	record.Author = author
	record.Timestamp = t.timestamp()

	if err := t.records.Persist(ctx, record, deleted); err != nil {
		return err
	}
	t.log.WithFields(logrus.Fields{"entity": deleted.URI, "author": author}).Debug("recorded entity deletion")
	return nil
}

// timestamp returns the current instant, clamped so stamps never go
// backwards within this tracker instance.
func (t *Tracker) timestamp() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	stamp := t.now()
	if stamp.Before(t.last) {
		stamp = t.last
	}
	t.last = stamp
	return stamp
}

func requireActor(author domain.URI) error {
	if author.Empty() {
		return fmt.Errorf("tracker: acting user is required")
	}
	return nil
}
