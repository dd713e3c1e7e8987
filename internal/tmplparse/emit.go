package tmplparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/livefir/tmplmin"
)

// Emit renders a token tree back to template text. Spans contribute
// their text (empty spans contribute nothing, which is how compacted
// comments disappear) and blocks concatenate their children in order.
func Emit(root *tmplmin.Block) (string, error) {
	var buf strings.Builder
	if err := emitBlock(root, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EmitTrees renders a full template file: the main tree first, then
// every other tree wrapped in its {{define}}. Define placement is
// insignificant to the template engine, so pulling them after the main
// body preserves meaning even when the source interleaved them.
func EmitTrees(trees []*Tree) (string, error) {
	var buf strings.Builder
	for i, tree := range trees {
		if tree == nil {
			return "", fmt.Errorf("emit tree %d: %w: nil tree", i, tmplmin.ErrMalformedTree)
		}
		if i > 0 {
			buf.WriteString("{{define " + strconv.Quote(tree.Name) + "}}")
		}
		if err := emitBlock(tree.Root, &buf); err != nil {
			return "", fmt.Errorf("emit tree %q: %w", tree.Name, err)
		}
		if i > 0 {
			buf.WriteString("{{end}}")
		}
	}
	return buf.String(), nil
}

func emitBlock(blk *tmplmin.Block, buf *strings.Builder) error {
	if blk == nil {
		return fmt.Errorf("emit: %w: nil block", tmplmin.ErrMalformedTree)
	}
	for _, child := range blk.Children {
		switch n := child.(type) {
		case *tmplmin.Span:
			if n == nil {
				return fmt.Errorf("emit: %w: nil span", tmplmin.ErrMalformedTree)
			}
			buf.WriteString(n.Text())
		case *tmplmin.Block:
			if err := emitBlock(n, buf); err != nil {
				return err
			}
		default:
			return fmt.Errorf("emit: %w: unexpected node %T", tmplmin.ErrMalformedTree, child)
		}
	}
	return nil
}
