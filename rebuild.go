package tmplmin

// Reconstruction helpers. A rewritten span keeps its identity
// attributes (kind, start location, edit-handling metadata); only the
// content representation changes. Downstream code generation depends on
// those attributes surviving the pass.

// rebuildContent returns a copy of old carrying content as its sole
// representation. Used for minified markup spans, whose token stream
// (if any) no longer corresponds to the rewritten text.
func rebuildContent(old *Span, content string) *Span {
	return &Span{
		Kind:        old.Kind,
		Content:     content,
		Start:       old.Start,
		EditHandler: old.EditHandler,
	}
}

// rebuildSymbols returns a copy of old carrying the rewritten symbol
// stream, with Content recomputed from the stream so both
// representations stay consistent.
func rebuildSymbols(old *Span, symbols []Symbol) *Span {
	return &Span{
		Kind:        old.Kind,
		Content:     symbolsText(symbols),
		Symbols:     symbols,
		Start:       old.Start,
		EditHandler: old.EditHandler,
	}
}

// Clone returns a deep copy of the span. The symbol stream is
// duplicated; EditHandler is shared by reference since it is opaque to
// this package.
func (s *Span) Clone() *Span {
	if s == nil {
		return nil
	}
	clone := &Span{
		Kind:        s.Kind,
		Content:     s.Content,
		Start:       s.Start,
		EditHandler: s.EditHandler,
	}
	if s.Symbols != nil {
		clone.Symbols = append([]Symbol(nil), s.Symbols...)
	}
	return clone
}

// Clone returns a deep copy of the block and its subtree.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	clone := &Block{Type: b.Type}
	if b.Children != nil {
		clone.Children = make([]Node, len(b.Children))
		for i, child := range b.Children {
			switch n := child.(type) {
			case *Span:
				clone.Children[i] = n.Clone()
			case *Block:
				clone.Children[i] = n.Clone()
			default:
				clone.Children[i] = child
			}
		}
	}
	return clone
}
