package tmplmin

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SpanKind classifies the content of a leaf node.
type SpanKind int

const (
	// SpanMarkup is static markup text emitted verbatim at runtime.
	SpanMarkup SpanKind = iota
	// SpanCode is embedded executable code whose output exists only at
	// runtime.
	SpanCode
	// SpanMetaCode is structural template syntax (delimiters, keywords)
	// that frames embedded code but emits nothing itself.
	SpanMetaCode
)

// String returns the kind as a lowercase word.
func (k SpanKind) String() string {
	switch k {
	case SpanMarkup:
		return "markup"
	case SpanCode:
		return "code"
	case SpanMetaCode:
		return "metacode"
	default:
		return fmt.Sprintf("SpanKind(%d)", int(k))
	}
}

// MarshalText encodes the kind for JSON tree dumps.
func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// BlockType classifies the role of a container node.
type BlockType int

const (
	// BlockDocument is the root container produced by the parser.
	BlockDocument BlockType = iota
	// BlockMarkup is a region of static markup, possibly with embedded
	// dynamic children.
	BlockMarkup
	// BlockSection is a named sub-template region.
	BlockSection
	// BlockStatement is a control-flow construct (if, range, with).
	BlockStatement
	// BlockExpression is a single embedded output expression.
	BlockExpression
	// BlockHelper is a helper/function invocation construct.
	BlockHelper
	// BlockOther is any container kind this pass does not recognize.
	BlockOther
)

// String returns the block type as a lowercase word.
func (t BlockType) String() string {
	switch t {
	case BlockDocument:
		return "document"
	case BlockMarkup:
		return "markup"
	case BlockSection:
		return "section"
	case BlockStatement:
		return "statement"
	case BlockExpression:
		return "expression"
	case BlockHelper:
		return "helper"
	case BlockOther:
		return "other"
	default:
		return fmt.Sprintf("BlockType(%d)", int(t))
	}
}

// MarshalText encodes the block type for JSON tree dumps.
func (t BlockType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// SymbolType classifies a token inside a code span's symbol stream.
// Classification is assigned by the tokenizer that produced the stream
// and is never reassigned afterwards.
type SymbolType int

const (
	// SymbolWhiteSpace is a run of spaces or tabs.
	SymbolWhiteSpace SymbolType = iota
	// SymbolNewLine is a line break (\n or \r\n).
	SymbolNewLine
	// SymbolComment is a code comment.
	SymbolComment
	// SymbolUnknown is a token the tokenizer could not classify.
	SymbolUnknown
	// SymbolIdentifier is an identifier, field access, variable, or
	// keyword.
	SymbolIdentifier
	// SymbolLiteral is a string, character, or number literal.
	SymbolLiteral
	// SymbolOperator is an operator or punctuation token.
	SymbolOperator
)

// String returns the symbol type as a lowercase word.
func (t SymbolType) String() string {
	switch t {
	case SymbolWhiteSpace:
		return "whitespace"
	case SymbolNewLine:
		return "newline"
	case SymbolComment:
		return "comment"
	case SymbolUnknown:
		return "unknown"
	case SymbolIdentifier:
		return "identifier"
	case SymbolLiteral:
		return "literal"
	case SymbolOperator:
		return "operator"
	default:
		return fmt.Sprintf("SymbolType(%d)", int(t))
	}
}

// MarshalText encodes the symbol type for JSON tree dumps.
func (t SymbolType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Position locates a node or symbol in the original source.
type Position struct {
	Offset int `json:"offset"` // byte offset from the start of the source
	Line   int `json:"line"`   // 1-based line number
	Column int `json:"column"` // 1-based column in bytes
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Symbol is a classified token within a code span.
type Symbol struct {
	Type    SymbolType `json:"type"`
	Content string     `json:"content"`
	Start   Position   `json:"start"`
}

// Node is a token tree node: either a *Span leaf or a *Block container.
type Node interface {
	// Pos returns the node's location in the original source.
	Pos() Position

	node()
}

// Span is a leaf node carrying literal source text, a classified token
// stream, or both. Kind is immutable once assigned by the parser; a
// rewrite replaces only the content representation.
type Span struct {
	Kind    SpanKind
	Content string
	Symbols []Symbol
	Start   Position

	// EditHandler is opaque edit-handling metadata owned by the
	// downstream code generator. It is carried through rewrites
	// untouched and never interpreted.
	EditHandler any
}

// Pos returns the span's start location.
func (s *Span) Pos() Position { return s.Start }

func (s *Span) node() {}

// Text returns the span's source text: Content when present, otherwise
// the concatenation of its symbol contents.
func (s *Span) Text() string {
	if s.Content != "" || len(s.Symbols) == 0 {
		return s.Content
	}
	return symbolsText(s.Symbols)
}

// MarshalJSON encodes the span with a node tag so tree dumps
// distinguish leaves from containers.
func (s *Span) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node    string   `json:"node"`
		Kind    SpanKind `json:"kind"`
		Content string   `json:"content"`
		Symbols []Symbol `json:"symbols,omitempty"`
		Start   Position `json:"start"`
	}{
		Node:    "span",
		Kind:    s.Kind,
		Content: s.Content,
		Symbols: s.Symbols,
		Start:   s.Start,
	})
}

// Block is a container node holding an ordered list of children.
// Child order is source order: a rewrite may shrink the list but never
// reorders it.
type Block struct {
	Type     BlockType
	Children []Node
}

// Pos returns the position of the block's first child, or the zero
// Position for an empty block.
func (b *Block) Pos() Position {
	if len(b.Children) > 0 && b.Children[0] != nil {
		return b.Children[0].Pos()
	}
	return Position{}
}

func (b *Block) node() {}

// MarshalJSON encodes the block with a node tag so tree dumps
// distinguish containers from leaves.
func (b *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node     string    `json:"node"`
		Type     BlockType `json:"type"`
		Children []Node    `json:"children"`
	}{
		Node:     "block",
		Type:     b.Type,
		Children: b.Children,
	})
}

// Walk traverses the tree rooted at n in preorder, calling fn for each
// node. Returning false prunes the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	if b, ok := n.(*Block); ok && b != nil {
		for _, child := range b.Children {
			Walk(child, fn)
		}
	}
}

// symbolsText concatenates the contents of a symbol stream.
func symbolsText(symbols []Symbol) string {
	if len(symbols) == 0 {
		return ""
	}
	if len(symbols) == 1 {
		return symbols[0].Content
	}
	var sb strings.Builder
	for _, sym := range symbols {
		sb.WriteString(sym.Content)
	}
	return sb.String()
}
