package domain

// URI identifies an entity, an attribute or a named context in the backing
// graph store.
type URI string

func (u URI) String() string {
	return string(u)
}

// Empty reports whether the identifier is unset.
func (u URI) Empty() bool {
	return u == ""
}

// MultilingualString maps language tags to translations. The empty tag holds
// the language-less value, so a plain string label is {"": label}.
type MultilingualString map[string]string

// PlainString wraps a language-less string value.
func PlainString(value string) MultilingualString {
	if value == "" {
		return nil
	}
	return MultilingualString{"": value}
}

// Instance is one version of a domain entity, described by the runtime
// metamodel rather than a concrete struct. Attribute values are keyed by
// attribute IRI and may be literals (string, bool, numeric, time.Time,
// MultilingualString), identifiers (URI), referenced objects (*Instance) or
// slices of any of those.
type Instance struct {
	URI        URI
	Type       string
	Types      []string            // open set of type tags carried by the entity
	Attributes map[string]any      // attribute IRI -> value(s)
	Properties map[string][]string // unmapped properties: property IRI -> literal values
}

// NewInstance creates an empty instance of the given declared type.
func NewInstance(uri URI, entityType string) *Instance {
	return &Instance{
		URI:        uri,
		Type:       entityType,
		Attributes: make(map[string]any),
	}
}

// Identifier returns the instance identifier.
func (i *Instance) Identifier() URI {
	return i.URI
}

// WithAttribute sets an attribute value and returns the instance for chaining.
func (i *Instance) WithAttribute(attribute string, value any) *Instance {
	if i.Attributes == nil {
		i.Attributes = make(map[string]any)
	}
	i.Attributes[attribute] = value
	return i
}

// WithTypes sets the open type tags and returns the instance for chaining.
func (i *Instance) WithTypes(types ...string) *Instance {
	i.Types = types
	return i
}

// WithProperty sets an unmapped property value set and returns the instance
// for chaining.
func (i *Instance) WithProperty(property string, values ...string) *Instance {
	if i.Properties == nil {
		i.Properties = make(map[string][]string)
	}
	i.Properties[property] = values
	return i
}

// Clone returns a copy sharing no mutable containers with the original.
// Referenced instances are shared, matching the partially-loaded snapshots
// the diff calculator is designed for.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	clone := &Instance{
		URI:  i.URI,
		Type: i.Type,
	}
	if i.Types != nil {
		clone.Types = append([]string(nil), i.Types...)
	}
	if i.Attributes != nil {
		clone.Attributes = make(map[string]any, len(i.Attributes))
		for k, v := range i.Attributes {
			clone.Attributes[k] = v
		}
	}
	if i.Properties != nil {
		clone.Properties = make(map[string][]string, len(i.Properties))
		for k, v := range i.Properties {
			clone.Properties[k] = append([]string(nil), v...)
		}
	}
	return clone
}
