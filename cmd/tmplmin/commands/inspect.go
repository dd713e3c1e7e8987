package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/livefir/tmplmin"
	"github.com/livefir/tmplmin/internal/htmlmin"
	"github.com/livefir/tmplmin/internal/tmplparse"
)

type treeDump struct {
	Name string         `json:"name"`
	Root *tmplmin.Block `json:"root"`
}

// Inspect dumps the parsed token tree of one template file as indented
// JSON. With --minified the tree is rewritten first.
func Inspect(args []string) error {
	minified := false
	var files []string
	for _, arg := range args {
		switch {
		case arg == "--minified":
			minified = true
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			files = append(files, arg)
		}
	}
	if len(files) != 1 {
		return fmt.Errorf("exactly one template file required")
	}
	path := files[0]

	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	trees, err := tmplparse.Parse(path, string(data))
	if err != nil {
		return err
	}

	if minified {
		rw := tmplmin.NewRewriter(htmlmin.New())
		for _, tree := range trees {
			if err := rw.Rewrite(tree.Root); err != nil {
				return err
			}
		}
	}

	dumps := make([]treeDump, 0, len(trees))
	for _, tree := range trees {
		dumps = append(dumps, treeDump{Name: tree.Name, Root: tree.Root})
	}

	out, err := json.MarshalIndent(dumps, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
