package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/menta2k/adaptvideo/internal/markdown"
)

// Color palette
const (
	colorPrimary   = "#7D56F4"
	colorSuccess   = "#04B575"
	colorError     = "#FF4040"
	colorInfo      = "#8A8A8A"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#874BFD"
	colorGuide     = "#FFCC00"
)

// Styles for the TUI application
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	GuideStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGuide))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorPrimary)).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight))
)

// suggestionRenderer renders analysis suggestions with the palette.
var suggestionRenderer = markdown.Renderer{
	Heading:  lipgloss.NewStyle().Bold(true).Underline(true).Render,
	Strong:   lipgloss.NewStyle().Bold(true).Render,
	Emphasis: lipgloss.NewStyle().Italic(true).Render,
	Code:     GuideStyle.Render,
}
