package tmplparse

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/livefir/tmplmin"
)

// scanSymbols classifies pipe text into the symbol stream carried by
// code spans. base locates text[0] in the original source; every
// symbol's location advances from it.
//
// The classification errs toward pass-through kinds: only control
// bytes, which the upstream parser would have rejected, come out as
// Unknown, so the compactor can never drop a byte that carries
// meaning.
func scanSymbols(text string, base tmplmin.Position) []tmplmin.Symbol {
	symbols := make([]tmplmin.Symbol, 0, 8)
	line, col := base.Line, base.Column
	i := 0

	// step advances the cursor by n bytes, tracking line breaks.
	step := func(n int) {
		for k := 0; k < n; k++ {
			if text[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}

	for i < len(text) {
		start, startLine, startCol := i, line, col

		emit := func(t tmplmin.SymbolType) {
			symbols = append(symbols, tmplmin.Symbol{
				Type:    t,
				Content: text[start:i],
				Start: tmplmin.Position{
					Offset: base.Offset + start,
					Line:   startLine,
					Column: startCol,
				},
			})
		}

		c := text[i]
		switch {
		case c == '\r' && i+1 < len(text) && text[i+1] == '\n':
			step(2)
			emit(tmplmin.SymbolNewLine)

		case c == '\n' || c == '\r':
			step(1)
			emit(tmplmin.SymbolNewLine)

		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			for i < len(text) && isBlank(text[i]) {
				step(1)
			}
			emit(tmplmin.SymbolWhiteSpace)

		case strings.HasPrefix(text[i:], "/*"):
			if end := strings.Index(text[i+2:], "*/"); end < 0 {
				step(len(text) - i)
			} else {
				step(2 + end + 2)
			}
			emit(tmplmin.SymbolComment)

		case c == '"':
			step(1)
			for i < len(text) {
				if text[i] == '\\' && i+1 < len(text) {
					step(2)
					continue
				}
				done := text[i] == '"'
				step(1)
				if done {
					break
				}
			}
			emit(tmplmin.SymbolLiteral)

		case c == '\'':
			step(1)
			for i < len(text) {
				if text[i] == '\\' && i+1 < len(text) {
					step(2)
					continue
				}
				done := text[i] == '\''
				step(1)
				if done {
					break
				}
			}
			emit(tmplmin.SymbolLiteral)

		case c == '`':
			step(1)
			for i < len(text) && text[i] != '`' {
				step(1)
			}
			if i < len(text) {
				step(1)
			}
			emit(tmplmin.SymbolLiteral)

		case isNumStart(text, i):
			if c == '-' || c == '+' {
				step(1)
			}
			for i < len(text) && isNumByte(text[i]) {
				step(1)
			}
			emit(tmplmin.SymbolLiteral)

		case c == ':' && i+1 < len(text) && text[i+1] == '=':
			step(2)
			emit(tmplmin.SymbolOperator)

		case isIdentStart(text, i):
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if !isIdentRune(r) {
					break
				}
				step(size)
			}
			emit(tmplmin.SymbolIdentifier)

		case c < 0x20 || c == 0x7f:
			step(1)
			emit(tmplmin.SymbolUnknown)

		default:
			// Punctuation the pipe grammar knows: | ( ) , = and the
			// rest of printable ASCII, plus any stray non-letter rune.
			_, size := utf8.DecodeRuneInString(text[i:])
			step(size)
			emit(tmplmin.SymbolOperator)
		}
	}

	return symbols
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func isNumStart(s string, i int) bool {
	c := s[i]
	if c >= '0' && c <= '9' {
		return true
	}
	return (c == '-' || c == '+') && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9'
}

func isNumByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c == '.' || c == '_'
}

func isIdentStart(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || r == '_' || r == '$' || r == '.'
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '.'
}
