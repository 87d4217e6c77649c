// Package domain holds the change-tracking data model: entity instances,
// change records and the ontology terms used to persist them.
package domain

// Ontology terms for the change-tracking model.
// Record subjects are urn:uuid IRIs; everything else hangs off these predicates.
const (
	nsChanges = "https://termgraph.dev/ontology/changes/"

	// Record kinds
	TypePersistRecord = nsChanges + "persist-record"
	TypeUpdateRecord  = nsChanges + "update-record"
	TypeDeleteRecord  = nsChanges + "delete-record"

	// Record predicates
	PropTimestamp        = nsChanges + "has-timestamp"
	PropAuthor           = nsChanges + "has-author"
	PropChangedEntity    = nsChanges + "has-changed-entity"
	PropChangedAttribute = nsChanges + "has-changed-attribute"
	PropOriginalValue    = nsChanges + "has-original-value"
	PropNewValue         = nsChanges + "has-new-value"
	PropVocabulary       = nsChanges + "from-vocabulary"

	// Standard vocabulary
	RDFType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	// Suffix appended to an entity identifier to derive its synthetic
	// tracking partition when no collection metadata applies.
	ChangeContextSuffix = "/changes"
)
