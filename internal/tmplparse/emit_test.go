package tmplparse

import (
	"strings"
	"testing"
	"text/template"

	"github.com/livefir/tmplmin"
)

var roundTripData = map[string]any{
	"Name":  "Ann",
	"OK":    true,
	"Count": 2,
	"Items": []string{"a", "b", "c"},
	"User":  map[string]any{"Admin": true},
}

func execute(t *testing.T, src string) string {
	t.Helper()
	tmpl, err := template.New("page").Parse(src)
	if err != nil {
		t.Fatalf("template %q does not parse: %v", src, err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, roundTripData); err != nil {
		t.Fatalf("template %q does not execute: %v", src, err)
	}
	return buf.String()
}

// Emitting a freshly parsed tree must produce a template with the same
// meaning, and emitting must be a fixpoint: parse(emit(parse(src)))
// emits the same text again.
func TestEmitRoundTrip(t *testing.T) {
	sources := []string{
		"Hello {{.Name}}!",
		"{{if .OK}}yes{{else}}no{{end}}",
		"{{range $i, $v := .Items}}[{{$i}}={{$v}}]{{end}}",
		"{{with .User}}admin={{.Admin}}{{end}}",
		`{{template "row" .}}{{define "row"}}<tr>{{.Name}}</tr>{{end}}`,
		"a{{/* note */}}b",
		"{{if gt (len .Items) 1}}many{{else if .OK}}ok{{end}}",
		`{{printf "%s-%d" .Name .Count}}`,
		`{{.Name | printf "%q"}}`,
		"{{`raw }} text`}}",
		"{{range .Items}}{{if eq . \"b\"}}{{break}}{{end}}{{.}}{{end}}",
		"  {{- .Name -}}  ",
		`{{define "zebra"}}z{{end}}{{define "alpha"}}a{{end}}{{template "alpha"}}{{template "zebra"}}`,
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			trees, err := Parse("page", src)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			emitted, err := EmitTrees(trees)
			if err != nil {
				t.Fatalf("EmitTrees() error = %v", err)
			}

			if got, want := execute(t, emitted), execute(t, src); got != want {
				t.Errorf("execution differs:\nsource  %q -> %q\nemitted %q -> %q", src, want, emitted, got)
			}

			again, err := Parse("page", emitted)
			if err != nil {
				t.Fatalf("emitted template %q does not re-parse: %v", emitted, err)
			}
			second, err := EmitTrees(again)
			if err != nil {
				t.Fatalf("EmitTrees() second pass error = %v", err)
			}
			if second != emitted {
				t.Errorf("emit not a fixpoint:\nfirst  %q\nsecond %q", emitted, second)
			}
		})
	}
}

func TestEmitSkipsEmptySpans(t *testing.T) {
	root := &tmplmin.Block{
		Type: tmplmin.BlockDocument,
		Children: []tmplmin.Node{
			&tmplmin.Span{Kind: tmplmin.SpanMarkup, Content: "a"},
			&tmplmin.Span{Kind: tmplmin.SpanCode, Symbols: []tmplmin.Symbol{}},
			&tmplmin.Span{Kind: tmplmin.SpanMarkup, Content: "b"},
		},
	}
	got, err := Emit(root)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got != "ab" {
		t.Errorf("Emit() = %q, want %q", got, "ab")
	}
}

func TestEmitNilBlock(t *testing.T) {
	if _, err := Emit(nil); err == nil {
		t.Fatal("expected error for nil root")
	}

	root := &tmplmin.Block{
		Type:     tmplmin.BlockDocument,
		Children: []tmplmin.Node{(*tmplmin.Block)(nil)},
	}
	if _, err := Emit(root); err == nil {
		t.Fatal("expected error for nil child block")
	}
}

func TestEmitTreesWrapsDefines(t *testing.T) {
	trees, err := Parse("page", `x{{define "part"}}y{{end}}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := EmitTrees(trees)
	if err != nil {
		t.Fatalf("EmitTrees() error = %v", err)
	}
	if want := `x{{define "part"}}y{{end}}`; got != want {
		t.Errorf("EmitTrees() = %q, want %q", got, want)
	}
}
