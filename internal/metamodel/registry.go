package metamodel

import (
	"fmt"
	"sync"

	"github.com/termgraph/changetrack/internal/domain"
)

// Registry holds the type descriptors known to the engine. The surrounding
// application registers its entity types once at startup; lookups afterwards
// are read-only and safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]TypeDescriptor
}

// NewRegistry creates an empty descriptor registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]TypeDescriptor)}
}

// Register adds or replaces a type descriptor.
func (r *Registry) Register(descriptor TypeDescriptor) error {
	if descriptor.Type == "" {
		return fmt.Errorf("descriptor type must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[descriptor.Type] = descriptor
	return nil
}

// Descriptor looks up the descriptor for an entity type.
func (r *Registry) Descriptor(entityType string) (TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.descriptors[entityType]
	return descriptor, ok
}

// DescriptorFor resolves the descriptor for an instance, failing when the
// instance's type was never registered.
func (r *Registry) DescriptorFor(instance *domain.Instance) (TypeDescriptor, error) {
	if instance == nil {
		return TypeDescriptor{}, fmt.Errorf("instance must not be nil")
	}
	descriptor, ok := r.Descriptor(instance.Type)
	if !ok {
		return TypeDescriptor{}, fmt.Errorf("no descriptor registered for type %q", instance.Type)
	}
	return descriptor, nil
}
