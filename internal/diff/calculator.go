// Package diff computes structural differences between two versions of an
// entity instance, driven entirely by the runtime metamodel.
package diff

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/termgraph/changetrack/internal/domain"
	"github.com/termgraph/changetrack/internal/metamodel"
)

// Calculator compares entity versions attribute by attribute and produces
// update records for every detected change. It is a pure function of its
// inputs and the registered descriptors.
type Calculator struct {
	registry *metamodel.Registry
}

// NewCalculator creates a calculator backed by the given descriptor registry.
func NewCalculator(registry *metamodel.Registry) *Calculator {
	return &Calculator{registry: registry}
}

// CalculateChanges compares an updated entity version against the original
// already in storage and returns one update record per changed attribute.
// Both arguments must be non-nil instances of the same type; violating that
// is a caller defect and fails immediately. The returned records carry no
// provenance yet - the tracker stamps author and timestamp before persisting.
func (c *Calculator) CalculateChanges(updated, original *domain.Instance) ([]domain.ChangeRecord, error) {
	if updated == nil || original == nil {
		return nil, fmt.Errorf("diff: both entity versions are required")
	}
	if updated.Type != original.Type {
		return nil, fmt.Errorf("diff: mismatched entity types %q and %q", updated.Type, original.Type)
	}
	descriptor, err := c.registry.DescriptorFor(updated)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	var records []domain.ChangeRecord
	for _, att := range descriptor.Attributes {
		if att.Inferred || att.Ignored {
			continue
		}
		originalSet, err := attributeValueSet(att, original.Attributes[att.IRI])
		if err != nil {
			return nil, fmt.Errorf("diff: attribute %s of %s: %w", att.IRI, original.URI, err)
		}
		updatedSet, err := attributeValueSet(att, updated.Attributes[att.IRI])
		if err != nil {
			return nil, fmt.Errorf("diff: attribute %s of %s: %w", att.IRI, updated.URI, err)
		}
		if !originalSet.Equals(updatedSet) {
			records = append(records, domain.NewUpdateRecord(updated.URI, domain.URI(att.IRI), originalSet, updatedSet))
		}
	}

	if descriptor.SupportsTypes {
		if record, changed := typeTagChange(updated, original); changed {
			records = append(records, record)
		}
	}
	if descriptor.SupportsProperties {
		records = append(records, propertyChanges(updated, original)...)
	}

	return records, nil
}

// typeTagChange compares the open type tag sets. A nil tag collection equals
// an explicitly empty one, so loading differences never show up as changes.
func typeTagChange(updated, original *domain.Instance) (domain.ChangeRecord, bool) {
	originalTags := typeTagSet(original.Types)
	updatedTags := typeTagSet(updated.Types)
	if originalTags.Equals(updatedTags) {
		return domain.ChangeRecord{}, false
	}
	return domain.NewUpdateRecord(updated.URI, domain.RDFType, originalTags, updatedTags), true
}

// propertyChanges diffs the open string-keyed property maps. Nil maps count
// as empty. Removed or altered keys report the value sets as found; added
// keys report an empty original.
func propertyChanges(updated, original *domain.Instance) []domain.ChangeRecord {
	originalProps := original.Properties
	updatedProps := updated.Properties

	var records []domain.ChangeRecord
	for _, key := range sortedKeys(originalProps) {
		originalSet := propertyValueSet(originalProps[key])
		updatedSet := propertyValueSet(updatedProps[key])
		if !originalSet.Equals(updatedSet) {
			records = append(records, domain.NewUpdateRecord(updated.URI, domain.URI(key), originalSet, updatedSet))
		}
	}
	for _, key := range sortedKeys(updatedProps) {
		if _, ok := originalProps[key]; ok {
			continue
		}
		updatedSet := propertyValueSet(updatedProps[key])
		if !updatedSet.Empty() {
			records = append(records, domain.NewUpdateRecord(updated.URI, domain.URI(key), nil, updatedSet))
		}
	}
	return records
}

func attributeValueSet(att metamodel.Attribute, value any) (domain.ValueSet, error) {
	if att.Kind == metamodel.KindReference {
		return identifierSet(value, att.IdentifierValued)
	}
	return literalSet(value)
}

// literalSet normalizes a literal attribute value into a value set. Singular
// values become singleton sets, so singular and plural attributes share one
// comparison path and nil values equal empty collections.
func literalSet(value any) (domain.ValueSet, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case domain.MultilingualString:
		values := make([]domain.Value, 0, len(typed))
		for lang, text := range typed {
			values = append(values, domain.LangLiteral(text, lang))
		}
		return domain.NewValueSet(values...), nil
	case []string:
		values := make([]domain.Value, 0, len(typed))
		for _, element := range typed {
			values = append(values, domain.Literal(element))
		}
		return domain.NewValueSet(values...), nil
	case []any:
		values := make([]domain.Value, 0, len(typed))
		for _, element := range typed {
			literal, err := literalValue(element)
			if err != nil {
				return nil, err
			}
			values = append(values, literal)
		}
		return domain.NewValueSet(values...), nil
	default:
		literal, err := literalValue(typed)
		if err != nil {
			return nil, err
		}
		return domain.NewValueSet(literal), nil
	}
}

func literalValue(value any) (domain.Value, error) {
	switch typed := value.(type) {
	case string:
		return domain.Literal(typed), nil
	case bool:
		return domain.Literal(strconv.FormatBool(typed)), nil
	case int:
		return domain.Literal(strconv.Itoa(typed)), nil
	case int64:
		return domain.Literal(strconv.FormatInt(typed, 10)), nil
	case float64:
		return domain.Literal(strconv.FormatFloat(typed, 'g', -1, 64)), nil
	case time.Time:
		return domain.Literal(typed.Format(time.RFC3339Nano)), nil
	default:
		return domain.Value{}, fmt.Errorf("unsupported literal value of type %T", value)
	}
}

// identifierSet maps a reference attribute value to the set of referenced
// identifiers. Referenced objects contribute their identifier only, so two
// snapshots loaded to different depths never differ spuriously.
func identifierSet(value any, identifierValued bool) (domain.ValueSet, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []domain.URI:
		values := make([]domain.Value, 0, len(typed))
		for _, element := range typed {
			values = append(values, domain.Identifier(element))
		}
		return domain.NewValueSet(values...), nil
	case []*domain.Instance:
		values := make([]domain.Value, 0, len(typed))
		for _, element := range typed {
			identifier, err := identifierValue(element, identifierValued)
			if err != nil {
				return nil, err
			}
			values = append(values, identifier)
		}
		return domain.NewValueSet(values...), nil
	case []string:
		values := make([]domain.Value, 0, len(typed))
		for _, element := range typed {
			identifier, err := identifierValue(element, identifierValued)
			if err != nil {
				return nil, err
			}
			values = append(values, identifier)
		}
		return domain.NewValueSet(values...), nil
	case []any:
		values := make([]domain.Value, 0, len(typed))
		for _, element := range typed {
			identifier, err := identifierValue(element, identifierValued)
			if err != nil {
				return nil, err
			}
			values = append(values, identifier)
		}
		return domain.NewValueSet(values...), nil
	default:
		identifier, err := identifierValue(typed, identifierValued)
		if err != nil {
			return nil, err
		}
		return domain.NewValueSet(identifier), nil
	}
}

func identifierValue(value any, identifierValued bool) (domain.Value, error) {
	if identifierValued {
		switch typed := value.(type) {
		case domain.URI:
			return domain.Identifier(typed), nil
		case string:
			return domain.Identifier(domain.URI(typed)), nil
		default:
			return domain.Value{}, fmt.Errorf("expected an identifier, got %T", value)
		}
	}
	switch typed := value.(type) {
	case *domain.Instance:
		if typed == nil {
			return domain.Value{}, fmt.Errorf("referenced instance is nil")
		}
		return domain.Identifier(typed.URI), nil
	case domain.URI:
		return domain.Identifier(typed), nil
	default:
		return domain.Value{}, fmt.Errorf("expected a referenced entity, got %T", value)
	}
}

func typeTagSet(tags []string) domain.ValueSet {
	if len(tags) == 0 {
		return nil
	}
	values := make([]domain.Value, 0, len(tags))
	for _, tag := range tags {
		values = append(values, domain.Identifier(domain.URI(tag)))
	}
	return domain.NewValueSet(values...)
}

func propertyValueSet(values []string) domain.ValueSet {
	if len(values) == 0 {
		return nil
	}
	literals := make([]domain.Value, 0, len(values))
	for _, value := range values {
		literals = append(literals, domain.Literal(value))
	}
	return domain.NewValueSet(literals...)
}

func sortedKeys(m map[string][]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
