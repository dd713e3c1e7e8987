package tmplmin

import (
	"reflect"
	"testing"
)

type editMeta struct{ generation int }

// TestRebuildContentPreservesIdentity verifies a content rewrite keeps
// kind, location, and the opaque edit metadata by reference.
func TestRebuildContentPreservesIdentity(t *testing.T) {
	meta := &editMeta{generation: 3}
	old := &Span{
		Kind:        SpanMarkup,
		Content:     "  <p>  x  </p>  ",
		Start:       Position{Offset: 12, Line: 3, Column: 1},
		EditHandler: meta,
	}

	got := rebuildContent(old, "<p> x </p>")
	if got.Content != "<p> x </p>" {
		t.Errorf("content = %q", got.Content)
	}
	if got.Kind != SpanMarkup {
		t.Errorf("kind = %v", got.Kind)
	}
	if got.Start != old.Start {
		t.Errorf("start = %+v", got.Start)
	}
	if got.EditHandler != meta {
		t.Errorf("edit metadata not the same reference")
	}
	if got.Symbols != nil {
		t.Errorf("rebuilt markup span should carry no symbol stream")
	}
	if old.Content != "  <p>  x  </p>  " {
		t.Errorf("original span mutated: %q", old.Content)
	}
}

// TestRebuildSymbolsSyncsContent verifies both representations stay
// consistent after a symbol rewrite.
func TestRebuildSymbolsSyncsContent(t *testing.T) {
	old := &Span{
		Kind:    SpanCode,
		Content: "if  .Ok",
		Symbols: []Symbol{ident("if"), ws("  "), ident(".Ok")},
		Start:   Position{Offset: 2, Line: 1, Column: 3},
	}

	got := rebuildSymbols(old, CompactSymbols(old.Symbols))
	if got.Content != "if .Ok" {
		t.Errorf("content = %q, want %q", got.Content, "if .Ok")
	}
	if got.Text() != got.Content {
		t.Errorf("Text() = %q diverges from Content %q", got.Text(), got.Content)
	}
	if got.Start != old.Start {
		t.Errorf("start = %+v", got.Start)
	}

	// A stream compacted to nothing still counts as present.
	emptied := rebuildSymbols(old, CompactSymbols([]Symbol{comment("/*x*/")}))
	if emptied.Symbols == nil {
		t.Errorf("emptied stream should be empty, not absent")
	}
	if emptied.Content != "" {
		t.Errorf("emptied content = %q", emptied.Content)
	}
}

// TestCloneIndependence verifies mutating a clone never reaches the
// original tree.
func TestCloneIndependence(t *testing.T) {
	meta := &editMeta{generation: 1}
	original := &Block{Type: BlockDocument, Children: []Node{
		&Span{Kind: SpanMarkup, Content: "a", EditHandler: meta},
		&Block{Type: BlockStatement, Children: []Node{
			codeSpan(ident("x"), ws(" "), ident("y")),
		}},
	}}

	clone := original.Clone()
	if !reflect.DeepEqual(original, clone) {
		t.Fatalf("clone differs from original")
	}

	clone.Children[0].(*Span).Content = "changed"
	inner := clone.Children[1].(*Block).Children[0].(*Span)
	inner.Symbols[0].Content = "mutated"
	clone.Children[1].(*Block).Children = nil

	if got := original.Children[0].(*Span).Content; got != "a" {
		t.Errorf("original span content = %q", got)
	}
	origInner := original.Children[1].(*Block).Children[0].(*Span)
	if origInner.Symbols[0].Content != "x" {
		t.Errorf("original symbols mutated: %q", origInner.Symbols[0].Content)
	}

	// Opaque metadata is shared, not copied.
	if clone.Children[0].(*Span).EditHandler != meta {
		t.Errorf("edit metadata should be shared by reference")
	}

	if (*Span)(nil).Clone() != nil {
		t.Errorf("nil span clone should be nil")
	}
	if (*Block)(nil).Clone() != nil {
		t.Errorf("nil block clone should be nil")
	}
}
