// Package markdown renders the markdown suggestions returned by the
// analysis endpoint as terminal text.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Style decorates a span of text.
type Style func(string) string

// Renderer turns markdown into plain lines, decorating spans with its
// styles. Nil styles leave text unchanged.
type Renderer struct {
	Heading  Style
	Strong   Style
	Emphasis Style
	Code     Style
	Bullet   string
}

// Plain renders without decoration.
var Plain = Renderer{}

// Render renders src.
func Render(src string) string { return Plain.Render(src) }

// Render renders src.
func (r Renderer) Render(src string) string {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	return strings.TrimRight(strings.Join(r.blocks(doc, source), "\n\n"), "\n")
}

func (r Renderer) blocks(n ast.Node, src []byte) []string {
	var out []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.block(c, src); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r Renderer) block(n ast.Node, src []byte) string {
	switch n := n.(type) {
	case *ast.Heading:
		return apply(r.Heading, r.inline(n, src))
	case *ast.Paragraph, *ast.TextBlock:
		return r.inline(n, src)
	case *ast.List:
		return r.list(n, src)
	case *ast.FencedCodeBlock:
		return r.code(n.Lines(), src)
	case *ast.CodeBlock:
		return r.code(n.Lines(), src)
	case *ast.Blockquote:
		return prefix(strings.Join(r.blocks(n, src), "\n\n"), "│ ", "│ ")
	case *ast.ThematicBreak:
		return "───"
	default:
		return strings.Join(r.blocks(n, src), "\n\n")
	}
}

func (r Renderer) list(n *ast.List, src []byte) string {
	bullet := r.Bullet
	if bullet == "" {
		bullet = "•"
	}

	var items []string
	num := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := bullet + " "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		sep := "\n"
		if !n.IsTight {
			sep = "\n\n"
		}
		body := strings.Join(r.blocks(item, src), sep)
		items = append(items, prefix(body, marker, strings.Repeat(" ", len([]rune(marker)))))
	}
	return strings.Join(items, "\n")
}

func (r Renderer) code(lines *text.Segments, src []byte) string {
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(src)), "\r\n")
		out = append(out, "    "+apply(r.Code, line))
	}
	return strings.Join(out, "\n")
}

func (r Renderer) inline(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			switch {
			case c.HardLineBreak():
				b.WriteByte('\n')
			case c.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.Emphasis:
			if c.Level >= 2 {
				b.WriteString(apply(r.Strong, r.inline(c, src)))
			} else {
				b.WriteString(apply(r.Emphasis, r.inline(c, src)))
			}
		case *ast.CodeSpan:
			b.WriteString(apply(r.Code, r.inline(c, src)))
		case *ast.Link:
			label := r.inline(c, src)
			if dest := string(c.Destination); dest != "" && dest != label {
				label += " (" + dest + ")"
			}
			b.WriteString(label)
		case *ast.AutoLink:
			b.Write(c.URL(src))
		default:
			b.WriteString(r.inline(c, src))
		}
	}
	return b.String()
}

func apply(s Style, v string) string {
	if s == nil {
		return v
	}
	return s(v)
}

// prefix puts first before the first line of s and rest before the others.
func prefix(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		p := rest
		if i == 0 {
			p = first
		}
		if l == "" && i > 0 {
			lines[i] = strings.TrimRight(p, " ")
			continue
		}
		lines[i] = p + l
	}
	return strings.Join(lines, "\n")
}
