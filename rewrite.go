package tmplmin

import "fmt"

// DefaultMaxDepth bounds rewrite recursion. Nesting depth is controlled
// by template authors, so a hostile or machine-generated template could
// otherwise recurse without bound.
const DefaultMaxDepth = 512

// State is the cross-node whitespace state the rewrite driver threads
// through a sibling list. It is owned by the driver for the duration of
// the pass and never stored in the tree.
type State struct {
	// WhitespaceCollapsed reports that trailing whitespace before the
	// cursor has already been collapsed or never existed, so a
	// following leading space would be redundant.
	WhitespaceCollapsed bool

	// EndedBlockElement reports that the previous output ended a
	// block-level element, making whitespace at the cursor
	// insignificant.
	EndedBlockElement bool

	// InScript reports that the cursor is inside a raw-text region
	// such as <script>, <style>, or <pre>, where content must be kept
	// verbatim.
	InScript bool
}

// InitialState returns the state for the start of a sibling list: no
// output exists yet, so whitespace counts as collapsed and the absent
// previous output counts as a block boundary.
func InitialState() State {
	return State{WhitespaceCollapsed: true, EndedBlockElement: true}
}

// barrier returns the conservative state forced after a node whose
// runtime output cannot be inspected: no whitespace assumption may
// carry across it. InScript carries over, since script regions are
// delimited by static markup rather than dynamic output.
func (s State) barrier() State {
	return State{InScript: s.InScript}
}

// Minifier is the markup-level collaborator that decides which bytes of
// a markup fragment are removable. Minify rewrites a single fragment
// under the given cross-fragment state; Analyse recomputes that state
// from a rewritten fragment. Both must be pure functions of their
// arguments.
type Minifier interface {
	Minify(content string, state State) (string, error)
	Analyse(content string, state State) State
}

// Rewriter is the post-parse rewrite pass. It walks a parsed template
// tree, minifying markup spans through the injected Minifier,
// compacting code span symbol streams, and recursing through nested
// logical blocks, never carrying a whitespace assumption across a
// boundary whose runtime output is unknown.
//
// A Rewriter holds no per-pass state and may be reused across trees,
// though a single tree must not be rewritten concurrently.
type Rewriter struct {
	minifier Minifier

	// MaxDepth bounds recursion depth. Zero means DefaultMaxDepth.
	MaxDepth int
}

// NewRewriter creates a Rewriter that minifies markup spans with m.
func NewRewriter(m Minifier) *Rewriter {
	return &Rewriter{minifier: m}
}

// Rewrite minifies the tree rooted at root in place: markup span
// contents are replaced by their minified form, code span symbol
// streams are compacted, and markup spans that were already empty are
// removed from their parent. Node kinds, source locations, and
// edit-handling metadata are preserved throughout.
//
// On error the tree must be discarded: the pass fails fast and makes no
// attempt to undo edits already applied.
func (r *Rewriter) Rewrite(root *Block) error {
	if root == nil {
		return fmt.Errorf("rewrite: %w: nil root", ErrMalformedTree)
	}
	if r.minifier == nil {
		return fmt.Errorf("rewrite: no minifier configured")
	}
	_, err := r.rewriteMarkup(root, InitialState(), 0)
	return err
}

func (r *Rewriter) maxDepth() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return DefaultMaxDepth
}

// rewriteMarkup runs the markup driver over b's children, threading
// state across siblings, and returns the state after the last child.
// Children are rewritten in place; removed spans shift survivors left
// over a write cursor and the slice is truncated once at the end.
func (r *Rewriter) rewriteMarkup(b *Block, state State, depth int) (State, error) {
	if depth > r.maxDepth() {
		return state, fmt.Errorf("rewrite %s block: %w (limit %d)", b.Type, ErrDepthExceeded, r.maxDepth())
	}

	w := 0
	for _, child := range b.Children {
		switch n := child.(type) {
		case *Span:
			if n == nil {
				return state, fmt.Errorf("rewrite %s block: %w: nil span child", b.Type, ErrMalformedTree)
			}

			if n.Kind == SpanMarkup {
				content := n.Text()
				if content == "" {
					// Dropped without advancing the state machine:
					// an empty span contributes no output.
					continue
				}
				minified, err := r.minifier.Minify(content, state)
				if err != nil {
					return state, fmt.Errorf("minify markup span at %s: %w", n.Start, err)
				}
				state = r.minifier.Analyse(minified, state)
				b.Children[w] = rebuildContent(n, minified)
				w++
				continue
			}

			// Code or metacode directly under a markup-driven list:
			// compact, then assume nothing about its runtime output.
			compacted, err := compactSpan(n)
			if err != nil {
				return state, err
			}
			b.Children[w] = compacted
			w++
			state = state.barrier()

		case *Block:
			if n == nil {
				return state, fmt.Errorf("rewrite %s block: %w: nil block child", b.Type, ErrMalformedTree)
			}

			switch n.Type {
			case BlockSection, BlockStatement, BlockExpression, BlockHelper:
				if err := r.rewriteOpaque(n, depth+1); err != nil {
					return state, err
				}
			default:
				// Unrecognized container kinds are assumed capable of
				// producing arbitrary output; they are not entered.
			}
			b.Children[w] = n
			w++
			state = state.barrier()

		default:
			return state, fmt.Errorf("rewrite %s block: %w: unexpected node %T", b.Type, ErrMalformedTree, child)
		}
	}
	b.Children = b.Children[:w]

	return state, nil
}

// rewriteOpaque applies the section/statement policy: code spans are
// compacted, nested statement blocks recurse with this same policy, and
// nested markup blocks get the full markup driver with a fresh initial
// state, since the enclosing construct's own output is unanalyzed and
// no assumption can be imported into the region. Everything else, the
// construct's structural metacode tokens included, passes through
// unchanged.
func (r *Rewriter) rewriteOpaque(b *Block, depth int) error {
	if depth > r.maxDepth() {
		return fmt.Errorf("rewrite %s block: %w (limit %d)", b.Type, ErrDepthExceeded, r.maxDepth())
	}

	for i, child := range b.Children {
		switch n := child.(type) {
		case *Span:
			if n == nil {
				return fmt.Errorf("rewrite %s block: %w: nil span child", b.Type, ErrMalformedTree)
			}
			if n.Kind != SpanCode {
				continue
			}
			compacted, err := compactSpan(n)
			if err != nil {
				return err
			}
			b.Children[i] = compacted

		case *Block:
			if n == nil {
				return fmt.Errorf("rewrite %s block: %w: nil block child", b.Type, ErrMalformedTree)
			}
			switch n.Type {
			case BlockStatement:
				if err := r.rewriteOpaque(n, depth+1); err != nil {
					return err
				}
			case BlockMarkup:
				if _, err := r.rewriteMarkup(n, InitialState(), depth+1); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("rewrite %s block: %w: unexpected node %T", b.Type, ErrMalformedTree, child)
		}
	}

	return nil
}

// compactSpan compacts a span's symbol stream and returns the rebuilt
// span. A code span carrying no symbol stream violates the upstream
// parser's output contract; metacode spans are frequently pure
// structural text and pass through when they have no stream.
func compactSpan(s *Span) (*Span, error) {
	if s.Symbols == nil {
		if s.Kind == SpanCode {
			return nil, fmt.Errorf("compact code span at %s: %w: missing symbol stream", s.Start, ErrMalformedTree)
		}
		return s, nil
	}
	return rebuildSymbols(s, CompactSymbols(s.Symbols)), nil
}
