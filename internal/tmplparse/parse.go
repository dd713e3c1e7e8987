// Package tmplparse bridges Go's text/template parser to the token
// tree the rewrite pass operates on. The upstream parser runs once, up
// front; this package converts its node types into spans and blocks,
// and renders rewritten trees back to template text.
package tmplparse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template/parse"

	"github.com/livefir/tmplmin"
)

// Tree is one named parse tree converted to the token tree model. A
// template file yields one Tree per {{define}}/{{block}} plus the main
// body.
type Tree struct {
	Name string
	Root *tmplmin.Block
}

// Parse parses template source and converts every named tree. The main
// tree comes first; the remaining trees follow sorted by name, since
// the upstream parser hands them over in map order. Comments survive
// parsing and unknown functions are not an error, so sources can be
// processed without their helper funcmaps.
func Parse(name, src string) ([]*Tree, error) {
	t := parse.New(name)
	t.Mode = parse.ParseComments | parse.SkipFuncCheck
	treeSet := make(map[string]*parse.Tree)
	if _, err := t.Parse(src, "", "", treeSet); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	b := &builder{ix: newLineIndex(src)}

	main, ok := treeSet[name]
	if !ok || main.Root == nil {
		return nil, fmt.Errorf("failed to parse template %s: no main tree", name)
	}

	trees := []*Tree{{Name: name, Root: b.convertList(main.Root, tmplmin.BlockDocument)}}

	names := make([]string, 0, len(treeSet))
	for n := range treeSet {
		if n != name {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	for _, n := range names {
		trees = append(trees, &Tree{Name: n, Root: b.convertList(treeSet[n].Root, tmplmin.BlockDocument)})
	}
	return trees, nil
}

type builder struct {
	ix *lineIndex
}

func (b *builder) pos(p parse.Pos) tmplmin.Position {
	return b.ix.position(int(p))
}

// convertList converts a list node's children into a block of the
// given type, skipping nothing: every upstream node has a token-tree
// form.
func (b *builder) convertList(list *parse.ListNode, bt tmplmin.BlockType) *tmplmin.Block {
	out := &tmplmin.Block{Type: bt}
	if list == nil {
		return out
	}
	for _, n := range list.Nodes {
		out.Children = append(out.Children, b.convert(n))
	}
	return out
}

func (b *builder) convert(n parse.Node) tmplmin.Node {
	switch n := n.(type) {
	case *parse.TextNode:
		return &tmplmin.Span{
			Kind:    tmplmin.SpanMarkup,
			Content: string(n.Text),
			Start:   b.pos(n.Pos),
		}

	case *parse.ActionNode:
		return b.expression(n.Pos, formatPipe(n.Pipe))

	case *parse.CommentNode:
		start := b.pos(n.Pos)
		return &tmplmin.Span{
			Kind: tmplmin.SpanCode,
			Symbols: []tmplmin.Symbol{{
				Type:    tmplmin.SymbolComment,
				Content: "{{" + n.Text + "}}",
				Start:   start,
			}},
			Start: start,
		}

	case *parse.IfNode:
		return b.convertBranch("if", &n.BranchNode)
	case *parse.RangeNode:
		return b.convertBranch("range", &n.BranchNode)
	case *parse.WithNode:
		return b.convertBranch("with", &n.BranchNode)

	case *parse.TemplateNode:
		return b.convertTemplate(n)

	case *parse.BreakNode:
		return b.expression(n.Pos, "break")
	case *parse.ContinueNode:
		return b.expression(n.Pos, "continue")

	default:
		// Future upstream node kinds: carry their text as structural
		// metacode inside a container the rewrite never enters.
		start := b.pos(n.Position())
		return &tmplmin.Block{
			Type: tmplmin.BlockOther,
			Children: []tmplmin.Node{
				&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: n.String(), Start: start},
			},
		}
	}
}

// expression builds the block form of a {{...}} action: delimiters as
// structural metacode around a code span carrying the scanned pipe.
func (b *builder) expression(p parse.Pos, pipeText string) *tmplmin.Block {
	start := b.pos(p)
	return &tmplmin.Block{
		Type: tmplmin.BlockExpression,
		Children: []tmplmin.Node{
			&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "{{", Start: start},
			&tmplmin.Span{Kind: tmplmin.SpanCode, Symbols: scanSymbols(pipeText, start), Start: start},
			&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "}}", Start: start},
		},
	}
}

// convertBranch converts if/range/with. The bodies become nested
// markup blocks; an {{else if}} chain arrives from the parser as an
// if node alone in the else list and converts like any other nested
// statement, which emission renders in the expanded
// {{else}}{{if}}...{{end}}{{end}} form.
func (b *builder) convertBranch(keyword string, n *parse.BranchNode) *tmplmin.Block {
	start := b.pos(n.Pos)
	children := []tmplmin.Node{
		&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "{{" + keyword + " ", Start: start},
		&tmplmin.Span{Kind: tmplmin.SpanCode, Symbols: scanSymbols(formatPipe(n.Pipe), start), Start: start},
		&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "}}", Start: start},
		b.convertList(n.List, tmplmin.BlockMarkup),
	}
	if n.ElseList != nil {
		elsePos := b.pos(n.ElseList.Pos)
		children = append(children,
			&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "{{else}}", Start: elsePos},
			b.convertList(n.ElseList, tmplmin.BlockMarkup),
		)
	}
	children = append(children, &tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "{{end}}", Start: start})
	return &tmplmin.Block{Type: tmplmin.BlockStatement, Children: children}
}

func (b *builder) convertTemplate(n *parse.TemplateNode) *tmplmin.Block {
	arg := strconv.Quote(n.Name)
	if n.Pipe != nil {
		arg += " " + formatPipe(n.Pipe)
	}
	start := b.pos(n.Pos)
	return &tmplmin.Block{
		Type: tmplmin.BlockSection,
		Children: []tmplmin.Node{
			&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "{{template ", Start: start},
			&tmplmin.Span{Kind: tmplmin.SpanCode, Symbols: scanSymbols(arg, start), Start: start},
			&tmplmin.Span{Kind: tmplmin.SpanMetaCode, Content: "}}", Start: start},
		},
	}
}

// formatPipe renders a pipe back to source form: declarations, then
// commands joined with " | ".
func formatPipe(pipe *parse.PipeNode) string {
	if pipe == nil {
		return ""
	}

	var buf strings.Builder
	if len(pipe.Decl) > 0 {
		for i, decl := range pipe.Decl {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(decl.String())
		}
		if pipe.IsAssign {
			buf.WriteString(" = ")
		} else {
			buf.WriteString(" := ")
		}
	}
	for i, cmd := range pipe.Cmds {
		if i > 0 {
			buf.WriteString(" | ")
		}
		buf.WriteString(formatCommand(cmd))
	}
	return buf.String()
}

// formatCommand renders one command's arguments separated by single
// spaces. Nested pipes get parentheses, string literals keep their
// original quoting.
func formatCommand(cmd *parse.CommandNode) string {
	if cmd == nil {
		return ""
	}

	var buf strings.Builder
	for i, arg := range cmd.Args {
		if i > 0 {
			buf.WriteByte(' ')
		}
		switch a := arg.(type) {
		case *parse.StringNode:
			buf.WriteString(a.Quoted)
		case *parse.BoolNode:
			fmt.Fprintf(&buf, "%v", a.True)
		case *parse.DotNode:
			buf.WriteByte('.')
		case *parse.NilNode:
			buf.WriteString("nil")
		case *parse.PipeNode:
			// Nested call, e.g. (len .Items) in {{if gt (len .Items) 0}}.
			buf.WriteByte('(')
			buf.WriteString(formatPipe(a))
			buf.WriteByte(')')
		default:
			// Fields, variables, chains, identifiers, numbers.
			buf.WriteString(arg.String())
		}
	}
	return buf.String()
}
