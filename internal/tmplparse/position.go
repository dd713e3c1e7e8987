package tmplparse

import (
	"sort"

	"github.com/livefir/tmplmin"
)

// lineIndex maps byte offsets in a source string to line/column
// positions without rescanning the source on every lookup.
type lineIndex struct {
	starts []int // byte offset of each line start; starts[0] is 0
}

func newLineIndex(src string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

// position converts a byte offset into a 1-based line/column position.
// Columns count bytes, matching how the upstream parser reports
// template positions.
func (ix *lineIndex) position(offset int) tmplmin.Position {
	line := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	})
	return tmplmin.Position{
		Offset: offset,
		Line:   line,
		Column: offset - ix.starts[line-1] + 1,
	}
}
