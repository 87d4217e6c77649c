// Package metamodel describes entity types at runtime. The change-tracking
// engine never hard-codes per-type logic; it iterates the attribute
// descriptors registered here.
package metamodel

// AttributeKind distinguishes literal values from references to other
// entities.
type AttributeKind int

const (
	KindLiteral AttributeKind = iota
	KindReference
)

// Attribute describes one named slot on an entity type.
type Attribute struct {
	// IRI identifies the attribute (the predicate under which its values
	// are stored).
	IRI string
	// Kind tells literal values from entity references.
	Kind AttributeKind
	// Plural marks multi-valued attributes.
	Plural bool
	// Inferred marks values computed by the store itself; they are never
	// user-edited and are excluded from change tracking.
	Inferred bool
	// Ignored excludes an otherwise editable attribute from change
	// tracking.
	Ignored bool
	// IdentifierValued marks reference attributes whose declared value type
	// is already an identifier, so values are compared directly instead of
	// extracting identifiers from referenced objects.
	IdentifierValued bool
}

// TypeDescriptor enumerates the attributes of one entity type together with
// the open-ended capabilities the type supports.
type TypeDescriptor struct {
	// Type is the descriptor key, matching Instance.Type.
	Type string
	// Attributes lists the fixed attributes of the type.
	Attributes []Attribute
	// SupportsTypes marks types carrying an open set of type tags.
	SupportsTypes bool
	// SupportsProperties marks types carrying unmapped properties.
	SupportsProperties bool
	// Collection marks top-level collections (vocabularies). Their change
	// records live in the collection's own registered tracking partition.
	Collection bool
	// MembershipAttribute names the attribute holding the owning
	// collection's identifier for member types (terms), empty otherwise.
	MembershipAttribute string
}

// Attribute looks up a fixed attribute descriptor by IRI.
func (d TypeDescriptor) Attribute(iri string) (Attribute, bool) {
	for _, att := range d.Attributes {
		if att.IRI == iri {
			return att, true
		}
	}
	return Attribute{}, false
}
