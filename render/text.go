package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Text converts Markdown into plain terminal text. Emphasis markers are
// dropped, headings are underlined, lists keep bullets, task items become
// check boxes and tables become aligned columns.
func Text(markdown string) string {
	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	r := &textRenderer{source: source}
	r.walkBlock(doc)
	return strings.TrimRight(r.buf.String(), "\n ")
}

type textRenderer struct {
	source    []byte
	buf       bytes.Buffer
	listDepth int
}

func (r *textRenderer) walkBlock(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c)
	}
}

func (r *textRenderer) block(node ast.Node) {
	switch n := node.(type) {
	case *ast.Heading:
		title := r.textContent(n)
		r.buf.WriteString(title)
		r.buf.WriteByte('\n')
		r.buf.WriteString(strings.Repeat("─", max(3, lipgloss.Width(title))))
		r.buf.WriteString("\n\n")

	case *ast.Paragraph:
		r.inlines(n)
		r.buf.WriteString("\n\n")

	case *ast.TextBlock:
		r.inlines(n)
		r.buf.WriteString("\n")

	case *ast.Blockquote:
		sub := &textRenderer{source: r.source}
		sub.walkBlock(n)
		for _, line := range strings.Split(strings.TrimRight(sub.buf.String(), "\n "), "\n") {
			r.buf.WriteString("│ ")
			r.buf.WriteString(line)
			r.buf.WriteByte('\n')
		}
		r.buf.WriteByte('\n')

	case *ast.List:
		r.list(n)

	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			r.buf.WriteString("    ")
			r.buf.Write(seg.Value(r.source))
		}
		r.buf.WriteByte('\n')

	case *ast.ThematicBreak:
		r.buf.WriteString("──────────\n\n")

	case *east.Table:
		r.table(n)

	default:
		if node.HasChildren() {
			r.walkBlock(node)
		}
	}
}

func (r *textRenderer) inlines(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.inline(c)
	}
}

func (r *textRenderer) inline(node ast.Node) {
	switch n := node.(type) {
	case *ast.Text:
		r.buf.Write(n.Text(r.source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			r.buf.WriteByte('\n')
		}

	case *ast.String:
		r.buf.Write(n.Value)

	case *ast.CodeSpan:
		r.buf.WriteString(r.textContent(n))

	case *ast.Link:
		r.inlines(n)
		fmt.Fprintf(&r.buf, " (%s)", n.Destination)

	case *ast.AutoLink:
		r.buf.Write(n.URL(r.source))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			r.buf.Write(seg.Value(r.source))
		}

	case *east.TaskCheckBox:
		if n.IsChecked {
			r.buf.WriteString("[x] ")
		} else {
			r.buf.WriteString("[ ] ")
		}

	default:
		if node.HasChildren() {
			r.inlines(node)
		}
	}
}

func (r *textRenderer) textContent(n ast.Node) string {
	sub := &textRenderer{source: r.source}
	sub.inlines(n)
	return sub.buf.String()
}

func (r *textRenderer) list(n *ast.List) {
	idx := 0
	if n.Start > 0 {
		idx = int(n.Start) - 1
	}
	indent := strings.Repeat("  ", r.listDepth)

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		r.buf.WriteString(indent)
		if n.IsOrdered() {
			idx++
			fmt.Fprintf(&r.buf, "%d. ", idx)
		} else {
			r.buf.WriteString("• ")
		}
		r.listItem(item)
		r.buf.WriteByte('\n')
	}
	if r.listDepth == 0 {
		r.buf.WriteByte('\n')
	}
}

func (r *textRenderer) listItem(item *ast.ListItem) {
	first := true
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if !first {
				r.buf.WriteByte('\n')
				r.buf.WriteString(strings.Repeat("  ", r.listDepth+1))
			}
			r.inlines(n)
			first = false
		case *ast.List:
			r.buf.WriteByte('\n')
			r.listDepth++
			r.list(n)
			r.listDepth--
		default:
			r.block(c)
			first = false
		}
	}
}

func (r *textRenderer) table(t *east.Table) {
	var rows [][]string
	for child := t.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *east.TableHeader, *east.TableRow:
		default:
			continue
		}
		var cells []string
		for c := child.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, strings.TrimSpace(r.textContent(c)))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}

	numCols := 0
	for _, row := range rows {
		numCols = max(numCols, len(row))
	}
	widths := make([]int, numCols)
	for _, row := range rows {
		for j, c := range row {
			widths[j] = max(widths[j], lipgloss.Width(c))
		}
	}

	for i, row := range rows {
		var line strings.Builder
		for j := range numCols {
			c := ""
			if j < len(row) {
				c = row[j]
			}
			if j > 0 {
				line.WriteString("  ")
			}
			line.WriteString(c)
			line.WriteString(strings.Repeat(" ", widths[j]-lipgloss.Width(c)))
		}
		r.buf.WriteString(strings.TrimRight(line.String(), " "))
		r.buf.WriteByte('\n')
		if i == 0 {
			total := 0
			for _, w := range widths {
				total += w
			}
			r.buf.WriteString(strings.Repeat("─", total+2*(numCols-1)))
			r.buf.WriteByte('\n')
		}
	}
	r.buf.WriteByte('\n')
}
