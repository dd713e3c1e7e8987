package htmlmin

import (
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var (
	docMinifier *minify.M
	docOnce     sync.Once
)

// documentMinifier returns the configured whole-document minifier (singleton)
func documentMinifier() *minify.M {
	docOnce.Do(func() {
		docMinifier = minify.New()
		docMinifier.AddFunc("text/html", html.Minify)
	})
	return docMinifier
}

// MinifyDocument minifies a complete HTML document. Unlike fragment
// minification it sees the whole input at once, so it can delegate to
// the general-purpose HTML minifier. If minification fails the
// original content is returned unchanged.
func MinifyDocument(content string) string {
	if !strings.Contains(content, "<") {
		return normalizeWhitespace(content)
	}
	minified, err := documentMinifier().String("text/html", content)
	if err != nil {
		return content
	}
	return minified
}

// normalizeWhitespace trims the text and collapses internal whitespace
// runs to single spaces
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
