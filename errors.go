package tmplmin

import "errors"

var (
	// ErrMalformedTree reports a token tree that violates the upstream
	// parser's output contract: a nil node, or a code span carrying no
	// symbol stream. The pass fails fast instead of returning a
	// partially rewritten tree.
	ErrMalformedTree = errors.New("tmplmin: malformed token tree")

	// ErrDepthExceeded reports template nesting deeper than the
	// rewriter's configured limit.
	ErrDepthExceeded = errors.New("tmplmin: max nesting depth exceeded")
)
