// Package htmlmin minifies HTML. It supplies the markup collaborator
// for the rewrite pass: fragment-level whitespace collapsing and
// comment stripping driven by an externally supplied cross-fragment
// state, plus a whole-document minifier for plain HTML files.
package htmlmin

import (
	"strings"

	"github.com/livefir/tmplmin"
)

// Minifier minifies HTML fragments. A fragment is one markup span's
// content: it may begin or end anywhere in a document, including in
// the middle of a raw-text region, so every decision that depends on
// unseen left context comes from the state passed to Minify.
type Minifier struct {
	// KeepComments retains all comments instead of stripping them.
	KeepComments bool

	// KeepConditionalComments retains downlevel conditional comments
	// (<!--[if IE]> ... <![endif]-->) even while ordinary comments
	// are stripped.
	KeepConditionalComments bool
}

// New returns a Minifier with the default policy: ordinary comments
// stripped, conditional comments kept.
func New() *Minifier {
	return &Minifier{KeepConditionalComments: true}
}

// Minify rewrites one markup fragment. Whitespace runs collapse to a
// single space, or disappear entirely next to block-element boundaries
// and at positions the incoming state marks as already separated.
// Comments are stripped according to the keep flags. Raw-text content
// (script, style, pre, textarea) passes through verbatim, as does any
// construct the fragment cuts off before its terminator.
func (m *Minifier) Minify(content string, state tmplmin.State) (string, error) {
	if content == "" {
		return "", nil
	}

	var out strings.Builder
	out.Grow(len(content))

	wsCollapsed := state.WhitespaceCollapsed
	endedBlock := state.EndedBlockElement
	inRaw := state.InScript
	rawName := "" // unknown when the region opened in an earlier fragment

	i := 0
	for i < len(content) {
		if inRaw {
			end := indexRawClose(content, i, rawName)
			if end < 0 {
				out.WriteString(content[i:])
				i = len(content)
				continue
			}
			out.WriteString(content[i:end])
			i = end
			inRaw = false
			rawName = ""
			// The close tag itself goes through regular tag handling.
			continue
		}

		c := content[i]
		switch {
		case isSpace(c):
			j := i
			for j < len(content) && isSpace(content[j]) {
				j++
			}
			if !endedBlock && !wsCollapsed && !nextIsBlockBoundary(content, j) {
				out.WriteByte(' ')
				wsCollapsed = true
				endedBlock = false
			}
			i = j

		case c == '<' && strings.HasPrefix(content[i:], "<!--"):
			rel := strings.Index(content[i+4:], "-->")
			if rel < 0 {
				// Unterminated comment: the tail passes through so the
				// bytes survive for whatever completes it later.
				out.WriteString(content[i:])
				i = len(content)
				continue
			}
			comment := content[i : i+4+rel+3]
			if m.KeepComments || (m.KeepConditionalComments && isConditionalComment(comment)) {
				out.WriteString(comment)
				wsCollapsed = false
				endedBlock = false
			}
			// A stripped comment is transparent: whitespace handling
			// continues as if it were never there.
			i += len(comment)

		case c == '<' && i+1 < len(content) && (content[i+1] == '!' || content[i+1] == '?'):
			end, ok := tagEnd(content, i)
			if !ok {
				out.WriteString(content[i:])
				i = len(content)
				continue
			}
			out.WriteString(content[i : end+1])
			wsCollapsed = true
			endedBlock = true
			i = end + 1

		case c == '<' && isTagStart(content, i):
			end, ok := tagEnd(content, i)
			if !ok {
				// The tag continues in a later fragment; emit the cut
				// verbatim. Cross-fragment state cannot describe a
				// mid-tag position, so the remainder will be scanned
				// as text, which never drops a needed separator.
				out.WriteString(content[i:])
				i = len(content)
				continue
			}
			raw := content[i : end+1]
			out.WriteString(normalizeTag(raw))
			i = end + 1

			name, closing := tagIdent(raw)
			a := lookupAtom(name)
			if blockLevel[a] {
				wsCollapsed = true
				endedBlock = true
			} else {
				wsCollapsed = false
				endedBlock = false
			}
			if !closing && rawText[a] {
				inRaw = true
				rawName = name
			}

		default:
			j := i
			for j < len(content) && !isSpace(content[j]) && content[j] != '<' {
				j++
			}
			if j == i {
				// A literal '<' that does not open a tag.
				j++
			}
			out.WriteString(content[i:j])
			wsCollapsed = false
			endedBlock = false
			i = j
		}
	}

	return out.String(), nil
}

// normalizeTag collapses whitespace inside a tag: attribute separators
// become single spaces, whitespace around '=' and before the closing
// '>' disappears, and quoted values pass through untouched.
func normalizeTag(raw string) string {
	if !strings.ContainsAny(raw, " \t\n\r\f") {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	var last byte
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case isSpace(c):
			j := i
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			var next byte
			if j < len(raw) {
				next = raw[j]
			}
			selfClose := next == '/' && j+1 < len(raw) && raw[j+1] == '>'
			if next != '>' && next != '=' && last != '=' && !selfClose {
				b.WriteByte(' ')
				last = ' '
			}
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(raw) && raw[j] != c {
				j++
			}
			if j < len(raw) {
				j++
			}
			b.WriteString(raw[i:j])
			last = raw[j-1]
			i = j
		default:
			b.WriteByte(c)
			last = c
			i++
		}
	}
	return b.String()
}
