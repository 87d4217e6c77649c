package graph

import (
	"context"
	"testing"
)

func TestMemoryStoreFindByPattern(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	quads := []Quad{
		{Subject: "urn:a", Predicate: "p1", Object: Literal("one"), Context: "ctx1"},
		{Subject: "urn:a", Predicate: "p2", Object: IRI("urn:b"), Context: "ctx1"},
		{Subject: "urn:b", Predicate: "p1", Object: Literal("two"), Context: "ctx2"},
	}
	if err := store.Insert(ctx, quads); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	bySubject, err := store.Find(ctx, Pattern{Subject: "urn:a"})
	if err != nil {
		t.Fatalf("unexpected find error: %v", err)
	}
	if len(bySubject) != 2 {
		t.Fatalf("expected 2 quads for subject urn:a, got %d", len(bySubject))
	}

	byContext, err := store.Find(ctx, Pattern{Context: "ctx2"})
	if err != nil {
		t.Fatalf("unexpected find error: %v", err)
	}
	if len(byContext) != 1 || byContext[0].Subject != "urn:b" {
		t.Fatalf("expected single ctx2 quad for urn:b, got %v", byContext)
	}

	object := IRI("urn:b")
	byObject, err := store.Find(ctx, Pattern{Object: &object})
	if err != nil {
		t.Fatalf("unexpected find error: %v", err)
	}
	if len(byObject) != 1 || byObject[0].Predicate != "p2" {
		t.Fatalf("expected single quad with object urn:b, got %v", byObject)
	}
}

func TestMemoryStoreObjectPatternDistinguishesLiteralFromIRI(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Insert(ctx, []Quad{
		{Subject: "urn:a", Predicate: "p", Object: Literal("urn:b"), Context: "ctx"},
		{Subject: "urn:a", Predicate: "p", Object: IRI("urn:b"), Context: "ctx"},
	}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	object := IRI("urn:b")
	matches, err := store.Find(ctx, Pattern{Object: &object})
	if err != nil {
		t.Fatalf("unexpected find error: %v", err)
	}
	if len(matches) != 1 || !matches[0].Object.IRI {
		t.Fatalf("expected exactly the IRI quad, got %v", matches)
	}
}

func TestMemoryStoreEmptyResult(t *testing.T) {
	store := NewMemoryStore()
	matches, err := store.Find(context.Background(), Pattern{Subject: "urn:missing"})
	if err != nil {
		t.Fatalf("unexpected find error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}
