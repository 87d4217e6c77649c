package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termgraph/changetrack/internal/domain"
	"github.com/termgraph/changetrack/internal/metamodel"
)

const (
	typeTerm = "term"

	attPrefLabel  = "http://www.w3.org/2004/02/skos/core#prefLabel"
	attDefinition = "http://www.w3.org/2004/02/skos/core#definition"
	attAltLabel   = "http://www.w3.org/2004/02/skos/core#altLabel"
	attRelated    = "http://www.w3.org/2004/02/skos/core#related"
	attBroader    = "http://www.w3.org/2004/02/skos/core#broader"
	attExactMatch = "http://www.w3.org/2004/02/skos/core#exactMatch"
	attModified   = "http://purl.org/dc/terms/modified"
	attDraft      = "http://example.org/model/is-draft"

	propSource = "http://purl.org/dc/terms/source"
)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	registry := metamodel.NewRegistry()
	require.NoError(t, registry.Register(metamodel.TypeDescriptor{
		Type: typeTerm,
		Attributes: []metamodel.Attribute{
			{IRI: attPrefLabel},
			{IRI: attDefinition},
			{IRI: attAltLabel, Plural: true},
			{IRI: attBroader, Kind: metamodel.KindReference},
			{IRI: attRelated, Kind: metamodel.KindReference, Plural: true},
			{IRI: attExactMatch, Kind: metamodel.KindReference, IdentifierValued: true},
			{IRI: attModified, Inferred: true},
			{IRI: attDraft, Ignored: true},
		},
		SupportsTypes:      true,
		SupportsProperties: true,
	}))
	return NewCalculator(registry)
}

func term(uri string) *domain.Instance {
	return domain.NewInstance(domain.URI(uri), typeTerm)
}

func TestCalculateChangesNoChanges(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").
		WithAttribute(attPrefLabel, "network").
		WithAttribute(attAltLabel, []string{"net", "mesh"}).
		WithTypes("http://example.org/model/approved").
		WithProperty(propSource, "RFC 1122")

	same, err := calculator.CalculateChanges(original, original)
	require.NoError(t, err)
	assert.Empty(t, same)

	clone, err := calculator.CalculateChanges(original.Clone(), original)
	require.NoError(t, err)
	assert.Empty(t, clone)
}

func TestCalculateChangesSingleLiteralAttribute(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attPrefLabel, "network")
	updated := term("http://example.org/term/1").WithAttribute(attPrefLabel, "computer network")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, domain.ChangeUpdate, record.Type)
	assert.Equal(t, domain.URI("http://example.org/term/1"), record.ChangedEntity)
	assert.Equal(t, domain.URI(attPrefLabel), record.ChangedAttribute)
	assert.True(t, record.OriginalValue.Equals(domain.NewValueSet(domain.Literal("network"))))
	assert.True(t, record.NewValue.Equals(domain.NewValueSet(domain.Literal("computer network"))))
}

func TestCalculateChangesNewlySetAttributeHasEmptyOriginal(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1")
	updated := term("http://example.org/term/1").WithAttribute(attDefinition, "a linked set of nodes")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].OriginalValue.Empty())
	assert.True(t, records[0].NewValue.Equals(domain.NewValueSet(domain.Literal("a linked set of nodes"))))
}

func TestCalculateChangesClearedAttributeHasEmptyNewValue(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attDefinition, "a linked set of nodes")
	updated := term("http://example.org/term/1")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].NewValue.Empty())
}

func TestCalculateChangesPluralLiteralSnapshots(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attAltLabel, []string{"a", "b"})
	updated := term("http://example.org/term/1").WithAttribute(attAltLabel, []string{"a", "c"})

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].OriginalValue.Equals(domain.NewValueSet(domain.Literal("a"), domain.Literal("b"))))
	assert.True(t, records[0].NewValue.Equals(domain.NewValueSet(domain.Literal("a"), domain.Literal("c"))))
}

func TestCalculateChangesPluralLiteralOrderIrrelevant(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attAltLabel, []string{"a", "b"})
	updated := term("http://example.org/term/1").WithAttribute(attAltLabel, []string{"b", "a", "a"})

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCalculateChangesNilVersusEmptyCollection(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attAltLabel, []string{})
	updated := term("http://example.org/term/1")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Empty(t, records)

	original = term("http://example.org/term/1").WithAttribute(attRelated, []domain.URI{})
	updated = term("http://example.org/term/1")
	records, err = calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCalculateChangesReferenceComparedByIdentifier(t *testing.T) {
	calculator := newCalculator(t)
	// Two distinct in-memory objects carrying the same identifier, loaded to
	// different depths.
	fullyLoaded := term("http://example.org/term/parent").WithAttribute(attPrefLabel, "parent")
	shallow := term("http://example.org/term/parent")

	original := term("http://example.org/term/1").WithAttribute(attBroader, fullyLoaded)
	updated := term("http://example.org/term/1").WithAttribute(attBroader, shallow)

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCalculateChangesReferenceChangeRecordsIdentifiers(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attBroader, term("http://example.org/term/old"))
	updated := term("http://example.org/term/1").WithAttribute(attBroader, term("http://example.org/term/new"))

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].OriginalValue.Equals(domain.NewValueSet(domain.Identifier("http://example.org/term/old"))))
	assert.True(t, records[0].NewValue.Equals(domain.NewValueSet(domain.Identifier("http://example.org/term/new"))))
}

func TestCalculateChangesIdentifierValuedReference(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attExactMatch, domain.URI("http://other.org/term/a"))
	updated := term("http://example.org/term/1").WithAttribute(attExactMatch, domain.URI("http://other.org/term/b"))

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].OriginalValue.Equals(domain.NewValueSet(domain.Identifier("http://other.org/term/a"))))
	assert.True(t, records[0].NewValue.Equals(domain.NewValueSet(domain.Identifier("http://other.org/term/b"))))
}

func TestCalculateChangesPluralReferenceIdentifierSets(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithAttribute(attRelated, []*domain.Instance{
		term("http://example.org/term/a"),
		term("http://example.org/term/b"),
	})
	updated := term("http://example.org/term/1").WithAttribute(attRelated, []*domain.Instance{
		term("http://example.org/term/b"),
		term("http://example.org/term/c"),
	})

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].OriginalValue.Equals(domain.NewValueSet(
		domain.Identifier("http://example.org/term/a"),
		domain.Identifier("http://example.org/term/b"),
	)))
	assert.True(t, records[0].NewValue.Equals(domain.NewValueSet(
		domain.Identifier("http://example.org/term/b"),
		domain.Identifier("http://example.org/term/c"),
	)))
}

func TestCalculateChangesTypeTags(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithTypes("http://example.org/model/draft")
	updated := term("http://example.org/term/1").WithTypes("http://example.org/model/approved")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.URI(domain.RDFType), records[0].ChangedAttribute)
	assert.True(t, records[0].OriginalValue.Equals(domain.NewValueSet(domain.Identifier("http://example.org/model/draft"))))
	assert.True(t, records[0].NewValue.Equals(domain.NewValueSet(domain.Identifier("http://example.org/model/approved"))))
}

func TestCalculateChangesTypeTagsNilEqualsEmpty(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithTypes()
	original.Types = []string{}
	updated := term("http://example.org/term/1")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCalculateChangesUnmappedProperties(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").
		WithProperty(propSource, "RFC 1122").
		WithProperty("http://example.org/prop/kept", "same")
	updated := term("http://example.org/term/1").
		WithProperty(propSource, "RFC 1122", "RFC 791").
		WithProperty("http://example.org/prop/kept", "same").
		WithProperty("http://example.org/prop/added", "new value")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byAttribute := map[domain.URI]domain.ChangeRecord{}
	for _, record := range records {
		byAttribute[record.ChangedAttribute] = record
	}

	changed, ok := byAttribute[domain.URI(propSource)]
	require.True(t, ok)
	assert.True(t, changed.OriginalValue.Equals(domain.NewValueSet(domain.Literal("RFC 1122"))))
	assert.True(t, changed.NewValue.Equals(domain.NewValueSet(domain.Literal("RFC 1122"), domain.Literal("RFC 791"))))

	added, ok := byAttribute["http://example.org/prop/added"]
	require.True(t, ok)
	assert.True(t, added.OriginalValue.Empty())
	assert.True(t, added.NewValue.Equals(domain.NewValueSet(domain.Literal("new value"))))
}

func TestCalculateChangesRemovedProperty(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").WithProperty(propSource, "RFC 1122")
	updated := term("http://example.org/term/1")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.URI(propSource), records[0].ChangedAttribute)
	assert.True(t, records[0].NewValue.Empty())
}

func TestCalculateChangesNilPropertiesEqualEmpty(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1")
	original.Properties = map[string][]string{}
	updated := term("http://example.org/term/1")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCalculateChangesSkipsInferredAndIgnored(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").
		WithAttribute(attModified, "2026-01-01T00:00:00Z").
		WithAttribute(attDraft, true)
	updated := term("http://example.org/term/1").
		WithAttribute(attModified, "2026-02-01T00:00:00Z").
		WithAttribute(attDraft, false)

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCalculateChangesMultipleAttributesProduceMultipleRecords(t *testing.T) {
	calculator := newCalculator(t)
	original := term("http://example.org/term/1").
		WithAttribute(attPrefLabel, "network").
		WithAttribute(attDefinition, "old definition")
	updated := term("http://example.org/term/1").
		WithAttribute(attPrefLabel, "computer network").
		WithAttribute(attDefinition, "new definition")

	records, err := calculator.CalculateChanges(updated, original)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCalculateChangesPreconditions(t *testing.T) {
	calculator := newCalculator(t)
	valid := term("http://example.org/term/1")

	_, err := calculator.CalculateChanges(nil, valid)
	assert.Error(t, err)

	_, err = calculator.CalculateChanges(valid, nil)
	assert.Error(t, err)

	other := domain.NewInstance("http://example.org/voc/1", "vocabulary")
	_, err = calculator.CalculateChanges(valid, other)
	assert.Error(t, err)

	unknown := domain.NewInstance("http://example.org/x", "unregistered")
	_, err = calculator.CalculateChanges(unknown, unknown.Clone())
	assert.Error(t, err)
}
