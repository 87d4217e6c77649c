// Package graph abstracts the backing store as a set of subject-predicate-
// object facts partitioned into named contexts, matching the storage model
// the change log is written into.
package graph

import "context"

// Term is the object position of a statement: a literal with an optional
// language tag, or an entity identifier.
type Term struct {
	Value string
	IRI   bool
	Lang  string
}

// Literal builds a plain literal term.
func Literal(value string) Term {
	return Term{Value: value}
}

// LangLiteral builds a language-tagged literal term.
func LangLiteral(value, lang string) Term {
	return Term{Value: value, Lang: lang}
}

// IRI builds an identifier term.
func IRI(value string) Term {
	return Term{Value: value, IRI: true}
}

// Quad is one fact in a named context.
type Quad struct {
	Subject   string
	Predicate string
	Object    Term
	Context   string
}

// Pattern matches quads by exact value per position. Empty subject, predicate
// or context match anything; a nil object matches anything.
type Pattern struct {
	Subject   string
	Predicate string
	Object    *Term
	Context   string
}

// Matches reports whether the quad satisfies the pattern.
func (p Pattern) Matches(q Quad) bool {
	if p.Subject != "" && p.Subject != q.Subject {
		return false
	}
	if p.Predicate != "" && p.Predicate != q.Predicate {
		return false
	}
	if p.Context != "" && p.Context != q.Context {
		return false
	}
	if p.Object != nil && *p.Object != q.Object {
		return false
	}
	return true
}

// Store is the minimal pattern-based contract the change log needs from the
// backing graph store. Implementations block on store I/O and inherit
// cancellation from the caller's context.
type Store interface {
	// Insert appends facts to their contexts.
	Insert(ctx context.Context, quads []Quad) error
	// Find returns every fact matching the pattern.
	Find(ctx context.Context, pattern Pattern) ([]Quad, error)
}
