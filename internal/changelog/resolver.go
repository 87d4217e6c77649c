// Package changelog persists change records into context-partitioned,
// append-only storage and reads an asset's history back in deterministic
// order.
package changelog

import (
	"context"
	"fmt"

	"github.com/termgraph/changetrack/internal/domain"
	"github.com/termgraph/changetrack/internal/metamodel"
	"github.com/termgraph/changetrack/internal/workspace"
)

// ContextResolver decides which storage partition an entity's change records
// belong to. Resolution is deterministic and performs metadata lookups only.
type ContextResolver struct {
	registry *metamodel.Registry
	contexts workspace.ContextRegistry
}

// NewContextResolver creates a resolver over the descriptor registry and the
// workspace context metadata.
func NewContextResolver(registry *metamodel.Registry, contexts workspace.ContextRegistry) *ContextResolver {
	return &ContextResolver{registry: registry, contexts: contexts}
}

// Resolve returns the tracking context for the entity's change records:
// collections use their registered partition, members use their owning
// collection's partition, and everything else gets a synthetic per-entity
// partition derived from its identifier. A collection without a registered
// partition is a metadata defect and fails.
func (r *ContextResolver) Resolve(ctx context.Context, asset *domain.Instance) (string, error) {
	if asset == nil || asset.URI.Empty() {
		return "", fmt.Errorf("changelog: asset with identifier is required")
	}

	if descriptor, ok := r.registry.Descriptor(asset.Type); ok {
		if descriptor.Collection {
			trackingContext, err := r.contexts.TrackingContext(ctx, asset.URI)
			if err != nil {
				return "", fmt.Errorf("changelog: resolve collection context: %w", err)
			}
			return trackingContext, nil
		}
		if descriptor.MembershipAttribute != "" {
			if owner, ok := owningCollection(asset, descriptor.MembershipAttribute); ok {
				trackingContext, err := r.contexts.TrackingContext(ctx, owner)
				if err != nil {
					return "", fmt.Errorf("changelog: resolve owning collection context: %w", err)
				}
				return trackingContext, nil
			}
			// Members without their owning collection loaded fall back
			// to the synthetic per-entity partition.
		}
	}

	return string(asset.URI) + domain.ChangeContextSuffix, nil
}

func owningCollection(asset *domain.Instance, attribute string) (domain.URI, bool) {
	switch owner := asset.Attributes[attribute].(type) {
	case domain.URI:
		return owner, !owner.Empty()
	case *domain.Instance:
		if owner == nil {
			return "", false
		}
		return owner.URI, !owner.URI.Empty()
	case string:
		return domain.URI(owner), owner != ""
	default:
		return "", false
	}
}
