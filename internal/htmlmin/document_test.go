package htmlmin

import (
	"strings"
	"testing"
)

func TestMinifyDocument(t *testing.T) {
	doc := `<html>
	<head>
		<title>  Demo  </title>
	</head>
	<body>
		<div class="wrap">
			<p>  Hello,   world  </p>
		</div>
	</body>
</html>`

	got := MinifyDocument(doc)
	if len(got) >= len(doc) {
		t.Errorf("MinifyDocument() did not shrink input: %d -> %d bytes", len(doc), len(got))
	}
	if strings.Contains(got, "  ") {
		t.Errorf("MinifyDocument() left a whitespace run: %q", got)
	}
	if !strings.Contains(got, "Hello, world") {
		t.Errorf("MinifyDocument() lost text content: %q", got)
	}
	t.Logf("minified: %s", got)
}

func TestMinifyDocumentTextOnly(t *testing.T) {
	got := MinifyDocument("  plain   text\n\twithout markup  ")
	if want := "plain text without markup"; got != want {
		t.Errorf("MinifyDocument() = %q, want %q", got, want)
	}
}

func TestMinifyDocumentStable(t *testing.T) {
	doc := "<div> <p>a</p> <p>b</p> </div>"
	once := MinifyDocument(doc)
	twice := MinifyDocument(once)
	if once != twice {
		t.Errorf("MinifyDocument() not stable: %q then %q", once, twice)
	}
}
