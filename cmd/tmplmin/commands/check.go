package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/livefir/tmplmin"
	"github.com/livefir/tmplmin/internal/htmlmin"
	"github.com/livefir/tmplmin/internal/tmplparse"
)

// Check verifies that each file survives the pass: it parses, rewrites,
// emits, and re-parses the emitted output. A file fails when the output
// no longer parses or the template set changed.
func Check(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("template file required")
	}

	failed := 0
	for _, path := range args {
		if err := checkFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("✅ %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed round-trip", failed, len(args))
	}
	return nil
}

func checkFile(path string) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}

	trees, err := tmplparse.Parse(path, string(data))
	if err != nil {
		return err
	}

	rw := tmplmin.NewRewriter(htmlmin.New())
	for _, tree := range trees {
		if err := rw.Rewrite(tree.Root); err != nil {
			return err
		}
	}

	out, err := tmplparse.EmitTrees(trees)
	if err != nil {
		return err
	}

	reparsed, err := tmplparse.Parse(path, out)
	if err != nil {
		return fmt.Errorf("minified output no longer parses: %w", err)
	}

	before := treeNames(trees)
	after := treeNames(reparsed)
	if before != after {
		return fmt.Errorf("template set changed: [%s] became [%s]", before, after)
	}
	return nil
}

// treeNames joins the named trees of a template set, keeping the main
// template's empty name as the leading entry.
func treeNames(trees []*tmplparse.Tree) string {
	names := make([]string, 0, len(trees))
	for _, tree := range trees {
		names = append(names, tree.Name)
	}
	return strings.Join(names, ",")
}
