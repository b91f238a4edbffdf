package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Plain(t *testing.T) {
	src := "## Suggested crops\n\n" +
		"- **presenter** stays in frame for *portrait 9:16*\n" +
		"- **product** and `logo`\n"

	want := "Suggested crops\n\n" +
		"• presenter stays in frame for portrait 9:16\n" +
		"• product and logo"
	assert.Equal(t, want, Render(src))
}

func TestRender_Styles(t *testing.T) {
	r := Renderer{
		Heading:  strings.ToUpper,
		Strong:   func(s string) string { return "[" + s + "]" },
		Emphasis: func(s string) string { return "_" + s + "_" },
		Code:     func(s string) string { return "`" + s + "`" },
		Bullet:   "-",
	}
	got := r.Render("# Crops\n\n- **one** *two* `three`")
	assert.Equal(t, "CROPS\n\n- [one] _two_ `three`", got)
}

func TestRender_OrderedAndParagraphs(t *testing.T) {
	src := "First line\ncontinues here.\n\n1. alpha\n2. beta\n\n> quoted"
	got := Render(src)
	assert.Equal(t, "First line continues here.\n\n1. alpha\n2. beta\n\n│ quoted", got)
}

func TestRender_CodeAndLinks(t *testing.T) {
	got := Render("See [docs](https://example.com).\n\n```\nffprobe clip.mp4\n```\n")
	assert.Equal(t, "See docs (https://example.com).\n\n    ffprobe clip.mp4", got)
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(""))
	assert.Equal(t, "plain text", Render("plain text"))
}
