package htmlmin

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// blockLevel holds elements whose boundaries make adjacent whitespace
// insignificant: whitespace touching such a boundary can be removed
// outright instead of collapsed to a separator.
var blockLevel = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Body:       true,
	atom.Caption:    true,
	atom.Col:        true,
	atom.Colgroup:   true,
	atom.Dd:         true,
	atom.Details:    true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Fieldset:   true,
	atom.Figcaption: true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Head:       true,
	atom.Header:     true,
	atom.Hgroup:     true,
	atom.Hr:         true,
	atom.Html:       true,
	atom.Legend:     true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Menu:       true,
	atom.Nav:        true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Summary:    true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Td:         true,
	atom.Tfoot:      true,
	atom.Th:         true,
	atom.Thead:      true,
	atom.Title:      true,
	atom.Tr:         true,
	atom.Ul:         true,
}

// rawText holds elements whose content must pass through verbatim.
// Entering one of these switches the scanner (and the cross-fragment
// InScript flag) into raw mode until the matching close tag.
var rawText = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Pre:      true,
	atom.Textarea: true,
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-' || c == ':'
}

// isTagStart reports whether the '<' at s[i] opens a markup construct
// rather than appearing as literal text.
func isTagStart(s string, i int) bool {
	if i+1 >= len(s) {
		return false
	}
	c := s[i+1]
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '!' || c == '?' {
		return true
	}
	if c == '/' && i+2 < len(s) {
		c = s[i+2]
		return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
	}
	return false
}

// tagEnd returns the index of the '>' terminating the tag that starts
// at s[start], skipping quoted attribute values. ok is false when the
// tag does not terminate within s.
func tagEnd(s string, start int) (end int, ok bool) {
	var quote byte
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			return i, true
		}
	}
	return 0, false
}

// tagIdent extracts the lowercase element name from a raw tag and
// reports whether it is a closing tag.
func tagIdent(raw string) (name string, closing bool) {
	i := 1
	if i < len(raw) && raw[i] == '/' {
		closing = true
		i++
	}
	j := i
	for j < len(raw) && isNameByte(raw[j]) {
		j++
	}
	return strings.ToLower(raw[i:j]), closing
}

func lookupAtom(name string) atom.Atom {
	return atom.Lookup([]byte(name))
}

// indexRawClose returns the index of the close tag ending a raw-text
// region at or after start. rawName narrows the search to a specific
// element; empty rawName matches any raw-text close tag, which covers
// fragments that begin inside a region opened earlier.
func indexRawClose(s string, start int, rawName string) int {
	for i := start; i+2 < len(s); i++ {
		if s[i] != '<' || s[i+1] != '/' {
			continue
		}
		j := i + 2
		k := j
		for k < len(s) && isNameByte(s[k]) {
			k++
		}
		name := strings.ToLower(s[j:k])
		if rawName != "" {
			if name == rawName {
				return i
			}
			continue
		}
		if rawText[lookupAtom(name)] {
			return i
		}
	}
	return -1
}

// nextIsBlockBoundary reports whether the construct starting at s[i]
// is a block-level tag or a markup declaration, i.e. whitespace in
// front of it is insignificant.
func nextIsBlockBoundary(s string, i int) bool {
	if i >= len(s) || s[i] != '<' || !isTagStart(s, i) {
		return false
	}
	if s[i+1] == '!' || s[i+1] == '?' {
		// Declarations and processing instructions sit at block level,
		// but comments take part in inline flow until stripped.
		return !strings.HasPrefix(s[i:], "<!--")
	}
	end, ok := tagEnd(s, i)
	if !ok {
		return false
	}
	name, _ := tagIdent(s[i : end+1])
	return blockLevel[lookupAtom(name)]
}

// isConditionalComment reports whether the comment is a downlevel
// conditional (<!--[if IE]> ... or <!--<![endif]-->), which carries
// content and must survive comment stripping.
func isConditionalComment(comment string) bool {
	return strings.HasPrefix(comment, "<!--[if") ||
		strings.HasPrefix(comment, "<!--[endif") ||
		strings.Contains(comment, "<![endif]")
}
