package tmplmin

// CompactSymbols rewrites a code span's symbol stream, removing
// comments and redundant whitespace without altering token semantics.
//
// Rules:
//   - comments are always dropped
//   - whitespace and newline runs collapse to a single separator: a
//     retained newline becomes one space at its own location, a
//     retained multi-character whitespace run keeps its first character
//   - unknown symbols collapse under the same adjacency rule as
//     whitespace but are never content-rewritten
//   - every other symbol passes through with type, content, and
//     location unchanged, in its original relative order
//
// The sequence start counts as already separated, so a leading
// whitespace run is dropped entirely. The output never contains two
// consecutive whitespace-class symbols. The input slice is not
// modified.
func CompactSymbols(symbols []Symbol) []Symbol {
	out := make([]Symbol, 0, len(symbols))
	prevSpace := true

	for _, sym := range symbols {
		switch sym.Type {
		case SymbolComment:
			// Dropped symbols emit nothing, so adjacency is judged
			// across them: prevSpace stays as it was.

		case SymbolWhiteSpace, SymbolNewLine:
			if prevSpace {
				continue
			}
			out = append(out, collapseSeparator(sym))
			prevSpace = true

		case SymbolUnknown:
			if prevSpace {
				continue
			}
			out = append(out, sym)
			prevSpace = true

		default:
			out = append(out, sym)
			prevSpace = false
		}
	}

	return out
}

// collapseSeparator rewrites a retained whitespace-class symbol to a
// single-character separator at the same source location. A separator
// must survive so adjacent tokens cannot glue together (`return x`
// must not become `returnx`).
func collapseSeparator(sym Symbol) Symbol {
	if sym.Type == SymbolNewLine {
		return Symbol{Type: SymbolWhiteSpace, Content: " ", Start: sym.Start}
	}
	if len(sym.Content) > 1 {
		return Symbol{Type: SymbolWhiteSpace, Content: sym.Content[:1], Start: sym.Start}
	}
	return sym
}
