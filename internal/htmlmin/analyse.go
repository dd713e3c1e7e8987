package htmlmin

import (
	"strings"

	"github.com/livefir/tmplmin"
)

type tailKind int

const (
	tailNone tailKind = iota
	tailSpace
	tailText
	tailBlockTag
	tailInlineTag
)

// Analyse recomputes the cross-fragment state from a fragment's
// minified content. Empty content carries the incoming state through
// unchanged; otherwise the result depends only on the content itself,
// except that an unclosed raw-text region from the incoming state
// stays open until a matching close tag appears.
func (m *Minifier) Analyse(content string, state tmplmin.State) tmplmin.State {
	if content == "" {
		return state
	}

	inRaw := state.InScript
	rawName := ""
	last := tailNone

	i := 0
	for i < len(content) {
		if inRaw {
			end := indexRawClose(content, i, rawName)
			if end < 0 {
				i = len(content)
				continue
			}
			if end > i {
				last = tailText
			}
			i = end
			inRaw = false
			rawName = ""
			continue
		}

		c := content[i]
		switch {
		case isSpace(c):
			for i < len(content) && isSpace(content[i]) {
				i++
			}
			last = tailSpace

		case c == '<' && strings.HasPrefix(content[i:], "<!--"):
			rel := strings.Index(content[i+4:], "-->")
			if rel < 0 {
				i = len(content)
				last = tailText
				continue
			}
			i += 4 + rel + 3
			last = tailText

		case c == '<' && i+1 < len(content) && (content[i+1] == '!' || content[i+1] == '?'):
			end, ok := tagEnd(content, i)
			if !ok {
				i = len(content)
				last = tailText
				continue
			}
			i = end + 1
			last = tailBlockTag

		case c == '<' && isTagStart(content, i):
			end, ok := tagEnd(content, i)
			if !ok {
				i = len(content)
				last = tailText
				continue
			}
			name, closing := tagIdent(content[i : end+1])
			a := lookupAtom(name)
			if blockLevel[a] {
				last = tailBlockTag
			} else {
				last = tailInlineTag
			}
			if !closing && rawText[a] {
				inRaw = true
				rawName = name
			}
			i = end + 1

		default:
			j := i
			for j < len(content) && !isSpace(content[j]) && content[j] != '<' {
				j++
			}
			if j == i {
				j++
			}
			i = j
			last = tailText
		}
	}

	if inRaw {
		return tmplmin.State{InScript: true}
	}
	switch last {
	case tailSpace:
		return tmplmin.State{WhitespaceCollapsed: true}
	case tailBlockTag:
		return tmplmin.State{WhitespaceCollapsed: true, EndedBlockElement: true}
	default:
		return tmplmin.State{}
	}
}
