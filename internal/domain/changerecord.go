package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChangeType discriminates the closed set of change record kinds.
type ChangeType string

const (
	ChangePersist ChangeType = "persist"
	ChangeUpdate  ChangeType = "update"
	ChangeDelete  ChangeType = "delete"
)

// TypeIRI returns the ontology type for the record kind.
func (t ChangeType) TypeIRI() string {
	switch t {
	case ChangePersist:
		return TypePersistRecord
	case ChangeUpdate:
		return TypeUpdateRecord
	case ChangeDelete:
		return TypeDeleteRecord
	}
	return ""
}

// ChangeTypeFromIRI resolves a record kind from its ontology type.
func ChangeTypeFromIRI(iri string) (ChangeType, bool) {
	switch iri {
	case TypePersistRecord:
		return ChangePersist, true
	case TypeUpdateRecord:
		return ChangeUpdate, true
	case TypeDeleteRecord:
		return ChangeDelete, true
	}
	return "", false
}

// Value is one element of a change record value set: either a literal (with an
// optional language tag) or an entity identifier.
type Value struct {
	Lexical    string
	Identifier bool
	Language   string
}

// Literal wraps a plain literal value.
func Literal(lexical string) Value {
	return Value{Lexical: lexical}
}

// LangLiteral wraps a language-tagged literal value.
func LangLiteral(lexical, language string) Value {
	return Value{Lexical: lexical, Language: language}
}

// Identifier wraps an entity identifier value.
func Identifier(uri URI) Value {
	return Value{Lexical: string(uri), Identifier: true}
}

// ValueSet is an unordered, duplicate-free collection of values. A nil set
// means the attribute held no value.
type ValueSet []Value

// NewValueSet builds a set from the given values, dropping duplicates.
func NewValueSet(values ...Value) ValueSet {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[Value]struct{}, len(values))
	set := make(ValueSet, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	return set
}

// Empty reports whether the set holds no values.
func (s ValueSet) Empty() bool {
	return len(s) == 0
}

// Contains reports whether the set holds the given value.
func (s ValueSet) Contains(v Value) bool {
	for _, member := range s {
		if member == v {
			return true
		}
	}
	return false
}

// Equals compares two sets ignoring order and duplicates. Nil and empty sets
// are equal.
func (s ValueSet) Equals(other ValueSet) bool {
	for _, v := range s {
		if !other.Contains(v) {
			return false
		}
	}
	for _, v := range other {
		if !s.Contains(v) {
			return false
		}
	}
	return true
}

// Sorted returns the set members in a deterministic order.
func (s ValueSet) Sorted() ValueSet {
	if len(s) < 2 {
		return s
	}
	out := append(ValueSet(nil), s...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lexical != out[j].Lexical {
			return out[i].Lexical < out[j].Lexical
		}
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return !out[i].Identifier && out[j].Identifier
	})
	return out
}

const recordIRIPrefix = "urn:uuid:"

// ChangeRecord is one immutable fact about something that happened to an
// entity. The kind decides which of the optional fields apply: update records
// carry the changed attribute and the value snapshots, delete records carry
// the label snapshot and the owning vocabulary.
type ChangeRecord struct {
	ID            uuid.UUID
	Type          ChangeType
	Timestamp     time.Time
	Author        URI
	ChangedEntity URI

	// Update records only.
	ChangedAttribute URI
	OriginalValue    ValueSet
	NewValue         ValueSet

	// Delete records only.
	Label      MultilingualString
	Vocabulary URI
}

// NewPersistRecord marks the creation of an entity.
func NewPersistRecord(entity URI) ChangeRecord {
	return ChangeRecord{
		ID:            uuid.New(),
		Type:          ChangePersist,
		ChangedEntity: entity,
	}
}

// NewUpdateRecord marks a single-attribute change on an entity.
func NewUpdateRecord(entity, attribute URI, originalValue, newValue ValueSet) ChangeRecord {
	return ChangeRecord{
		ID:               uuid.New(),
		Type:             ChangeUpdate,
		ChangedEntity:    entity,
		ChangedAttribute: attribute,
		OriginalValue:    originalValue,
		NewValue:         newValue,
	}
}

// NewDeleteRecord marks the removal of an entity, snapshotting its label and
// owning vocabulary for display after the entity itself is gone.
func NewDeleteRecord(entity URI, label MultilingualString, vocabulary URI) ChangeRecord {
	return ChangeRecord{
		ID:            uuid.New(),
		Type:          ChangeDelete,
		ChangedEntity: entity,
		Label:         label,
		Vocabulary:    vocabulary,
	}
}

// IRI returns the record subject identifier used in the graph store.
func (r ChangeRecord) IRI() URI {
	return URI(recordIRIPrefix + r.ID.String())
}

// RecordIDFromIRI extracts the record identifier from a record subject IRI.
func RecordIDFromIRI(iri string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(iri, recordIRIPrefix))
}

// CompareRecords orders change records for history listings: timestamp
// descending, then - for records sharing a timestamp - delete records after
// everything else, then ascending by changed attribute. Persist and update
// records with equal timestamps and attributes compare equal; a stable sort
// keeps their relative order.
func CompareRecords(a, b ChangeRecord) int {
	if !a.Timestamp.Equal(b.Timestamp) {
		if a.Timestamp.After(b.Timestamp) {
			return -1
		}
		return 1
	}
	aDelete := a.Type == ChangeDelete
	bDelete := b.Type == ChangeDelete
	if aDelete != bDelete {
		if aDelete {
			return 1
		}
		return -1
	}
	return strings.Compare(string(a.ChangedAttribute), string(b.ChangedAttribute))
}

// SortRecords sorts records in place into history order.
func SortRecords(records []ChangeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return CompareRecords(records[i], records[j]) < 0
	})
}
