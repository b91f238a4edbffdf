package tui

import (
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"github.com/menta2k/adaptvideo/internal/utils"
	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/media"
	"github.com/menta2k/adaptvideo/pkg/session"
	"github.com/menta2k/adaptvideo/pkg/types"
)

var placeholder = color.NRGBA{40, 40, 48, 255}

// View implements tea.Model interface
func (m Model) View() string {
	st := m.screen.snapshot()
	var b strings.Builder

	title := TitleStyle.Render(TextTitle)
	if m.server != "" {
		title += " " + InfoStyle.Render(m.server)
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderThumbnail(st))
	b.WriteString("\n")

	b.WriteString(renderVideo(st))
	b.WriteString(m.renderSelection(st))
	if s := renderSubjects(st); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	if st.suggestions != "" {
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(suggestionRenderer.Render(st.suggestions)))
		b.WriteString("\n")
	}
	if s := renderResults(st); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}

	switch m.mode {
	case modeTemplates:
		b.WriteString("\n")
		b.WriteString(renderTemplateList(st, m.list))
	case modeHistory:
		b.WriteString("\n")
		b.WriteString(renderHistoryList(st, m.list))
	case modePath:
		b.WriteString("\n" + TextPathPrompt + m.input + cursorStyle.Render("_") + "\n")
	case modePrompt:
		b.WriteString("\n" + TextAskPrompt + m.input + cursorStyle.Render("_") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStatus(st))
	for _, n := range m.notes {
		b.WriteString(InfoStyle.Render("  " + n))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeTemplates, modeHistory:
		b.WriteString(InfoStyle.Render(TextFooterList))
	case modePath, modePrompt:
		b.WriteString(InfoStyle.Render(TextFooterInput))
	default:
		b.WriteString(InfoStyle.Render(TextFooterMain))
	}
	return b.String()
}

// renderThumbnail draws the thumbnail, or the cycling preview frame, with
// half blocks: each cell shows two vertically stacked pixels.
func (m Model) renderThumbnail(st state) string {
	w, h := m.ctrl.Selector().DisplaySize()
	src := st.thumb
	if st.frame != nil {
		src = st.frame
	}

	var small image.Image
	if src != nil {
		small = imaging.Resize(src, m.cols, m.rows*2, imaging.Box)
	} else {
		small = imaging.New(m.cols, m.rows*2, placeholder)
	}
	if st.frame == nil {
		var rect types.CropRect
		if st.guide != nil {
			rect = *st.guide
		}
		small = media.DrawSelection(small, rect, w, h, st.marker)
	}

	img := imaging.Clone(small)
	var b strings.Builder
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			top := img.NRGBAAt(col, 2*row)
			bottom := img.NRGBAAt(col, 2*row+1)
			style := lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom))
			cell := "▀"
			if m.mode == modeNormal && st.frame == nil && col == m.cursorX && row == m.cursorY {
				style = cursorStyle.Background(hex(bottom))
				cell = "┼"
			}
			b.WriteString(style.Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

func renderVideo(st state) string {
	if st.filename == "" {
		return InfoStyle.Render(TextNoVideo) + "\n"
	}
	line := st.filename
	if st.info != nil {
		line += fmt.Sprintf("  %dx%d (%s)  %s  %.0f fps",
			st.info.Width, st.info.Height,
			geometry.FormatAspect(st.info.Width, st.info.Height),
			utils.FormatDuration(st.info.Duration), st.info.FPS)
	}
	if st.thumbErr != nil {
		line += "  " + ErrorStyle.Render("thumbnail unavailable")
	}
	return line + "\n"
}

func (m Model) renderSelection(st state) string {
	sess := m.ctrl.Session()
	tmpl := "none"
	if m.busy == "" {
		if t, ok := sess.Template(); ok {
			tmpl = fmt.Sprintf("%s %dx%d", t.Name, t.Width, t.Height)
		}
	}
	convert := InfoStyle.Render("convert at position: disabled")
	if st.convertEnabled {
		convert = StatusStyle.Render("convert at position: ready")
	}
	mode := "…"
	if m.busy == "" {
		mode = string(sess.CropMode())
	}
	return fmt.Sprintf("template: %s  mode: %s  %s\n%s\n",
		tmpl, mode, convert, GuideStyle.Render(st.selStatus))
}

func renderSubjects(st state) string {
	if len(st.subjects) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(HighlightStyle.Render("subjects"))
	b.WriteString("\n")
	for i, s := range st.subjects {
		mark := "[ ]"
		if slices.Contains(st.selected, i) {
			mark = StatusStyle.Render("[x]")
		}
		conf := ""
		if s.Confidence != nil {
			conf = fmt.Sprintf(" %.0f%%", *s.Confidence*100)
		}
		fmt.Fprintf(&b, "%s %d %s (%.2f, %.2f) %s%s\n",
			mark, i+1, s.Subject, s.Center.X, s.Center.Y, s.Importance.OrDefault(), conf)
	}
	if len(st.recommended) > 0 {
		names := make([]string, 0, len(st.recommended))
		for _, t := range st.recommended {
			names = append(names, t.Name)
		}
		b.WriteString(InfoStyle.Render("recommended: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

func renderResults(st state) string {
	var b strings.Builder
	if p := st.preview; p != nil && p.result != nil {
		line := fmt.Sprintf("%s preview: %d frames", p.kind, len(p.result.PreviewFrames))
		if p.template != nil {
			line += " for " + p.template.Name
		}
		if p.result.SubjectName != "" {
			line += " around " + p.result.SubjectName
		}
		if p.kind == session.PreviewTemplate && p.result.IsAdjusted {
			line += " (position adjusted)"
		}
		if st.frameIndex >= 0 {
			line += fmt.Sprintf("  frame %d", st.frameIndex+1)
		}
		label := st.triggerLabel
		if !st.triggerEnabled {
			label = InfoStyle.Render(label)
		}
		b.WriteString(line + "  [l] " + label + "\n")
	}
	if c := st.conversion; c != nil {
		b.WriteString(StatusStyle.Render("converted: "+c.DownloadURL) + "  [d] download\n")
	}
	if c := st.comparison; c != nil && c.Data != nil {
		if o := c.Data.Original; o != nil {
			fmt.Fprintf(&b, "original  %s %dx%d, shown at %dx%d\n", o.Filename, o.Info.Width, o.Info.Height, c.Original.Width, c.Original.Height)
		}
		if v := c.Data.Converted; v != nil {
			fmt.Fprintf(&b, "converted %s %dx%d, shown at %dx%d\n", v.Filename, v.Info.Width, v.Info.Height, c.Converted.Width, c.Converted.Height)
		}
	}
	return b.String()
}

func renderTemplateList(st state, cursor int) string {
	var b strings.Builder
	for i, t := range st.templates {
		line := fmt.Sprintf("%-16s %5dx%-5d %s", t.Name, t.Width, t.Height, geometry.FormatAspect(t.Width, t.Height))
		if slices.ContainsFunc(st.recommended, func(r types.Template) bool { return r.Name == t.Name }) {
			line += " ★"
		}
		b.WriteString(listLine(line, i == cursor))
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func renderHistoryList(st state, cursor int) string {
	var b strings.Builder
	for i, v := range st.history {
		line := v.Filename
		if v.VideoInfo != nil {
			line += fmt.Sprintf("  %dx%d  %s", v.VideoInfo.Width, v.VideoInfo.Height, utils.FormatDuration(v.VideoInfo.Duration))
		}
		if n := len(v.ConvertedVideos); n > 0 {
			line += fmt.Sprintf("  %d converted", n)
		}
		b.WriteString(listLine(line, i == cursor))
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func listLine(text string, current bool) string {
	if current {
		return HighlightStyle.Render("› "+text) + "\n"
	}
	return "  " + text + "\n"
}

func renderStatus(st state) string {
	if st.status == "" {
		return ""
	}
	switch st.level {
	case session.LevelError:
		return ErrorStyle.Render(st.status) + "\n"
	case session.LevelSuccess:
		return StatusStyle.Render(st.status) + "\n"
	default:
		return st.status + "\n"
	}
}
