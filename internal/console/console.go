// Package console renders session output as plain lines for the
// non-interactive commands.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/menta2k/adaptvideo/internal/markdown"
	"github.com/menta2k/adaptvideo/internal/utils"
	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/session"
	"github.com/menta2k/adaptvideo/pkg/types"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

var suggestions = markdown.Renderer{
	Heading:  func(s string) string { return labelStyle.Render(s) },
	Strong:   func(s string) string { return lipgloss.NewStyle().Bold(true).Render(s) },
	Emphasis: func(s string) string { return lipgloss.NewStyle().Italic(true).Render(s) },
	Code:     func(s string) string { return dimStyle.Render(s) },
	Bullet:   "-",
}

// Printer writes every view, indicator and player update as a line. It is
// safe for concurrent use.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	last    string
}

// New creates a printer writing to w. Selector and player updates are only
// printed when verbose is set.
func New(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) detail(format string, args ...any) {
	if p.verbose {
		p.printf("%s\n", dimStyle.Render(fmt.Sprintf(format, args...)))
	}
}

// Status implements session.View. Repeated messages are printed once.
func (p *Printer) Status(msg string, level session.Level) {
	p.mu.Lock()
	if msg == p.last {
		p.mu.Unlock()
		return
	}
	p.last = msg
	p.mu.Unlock()

	switch level {
	case session.LevelError:
		p.printf("%s\n", errorStyle.Render("error: "+msg))
	case session.LevelSuccess:
		p.printf("%s\n", successStyle.Render(msg))
	default:
		p.printf("%s\n", msg)
	}
}

// ShowTemplates implements session.View.
func (p *Printer) ShowTemplates(templates []types.Template) {
	var b strings.Builder
	for _, t := range templates {
		fmt.Fprintf(&b, "%-20s %5dx%-5d %-6s %s\n", t.Name, t.Width, t.Height, geometry.FormatAspect(t.Width, t.Height), t.Description)
	}
	p.printf("%s", b.String())
}

// ShowHistory implements session.View.
func (p *Printer) ShowHistory(videos []types.UploadedVideo) {
	if len(videos) == 0 {
		p.printf("%s\n", dimStyle.Render("no uploaded videos"))
		return
	}
	var b strings.Builder
	for _, v := range videos {
		fmt.Fprintf(&b, "%s  %s", v.FileID, v.Filename)
		if v.VideoInfo != nil {
			fmt.Fprintf(&b, "  %dx%d  %s", v.VideoInfo.Width, v.VideoInfo.Height, utils.FormatDuration(v.VideoInfo.Duration))
		}
		b.WriteString("\n")
		for _, c := range v.ConvertedVideos {
			fmt.Fprintf(&b, "    %s  %s  %s\n", c.Filename, c.TemplateName, c.Timestamp)
		}
	}
	p.printf("%s", b.String())
}

// ShowVideo implements session.View.
func (p *Printer) ShowVideo(filename, _ string, info *types.VideoInfo) {
	line := labelStyle.Render("video") + " " + filename
	if info != nil {
		line += fmt.Sprintf("  %dx%d (%s)  %s  %.0f fps",
			info.Width, info.Height, geometry.FormatAspect(info.Width, info.Height),
			utils.FormatDuration(info.Duration), info.FPS)
	}
	p.printf("%s\n", line)
}

// ShowAnalysis implements session.View.
func (p *Printer) ShowAnalysis(subjects []types.Subject, text string, recommended []types.Template) {
	var b strings.Builder
	for i, s := range subjects {
		fmt.Fprintf(&b, "%d. %s at (%.2f, %.2f) %s", i+1, s.Subject, s.Center.X, s.Center.Y, s.Importance.OrDefault())
		if s.Confidence != nil {
			fmt.Fprintf(&b, " %.0f%%", *s.Confidence*100)
		}
		b.WriteString("\n")
	}
	if text != "" {
		b.WriteString(suggestions.Render(text))
		b.WriteString("\n")
	}
	if len(recommended) > 0 {
		names := make([]string, len(recommended))
		for i, t := range recommended {
			names[i] = t.Name
		}
		b.WriteString(labelStyle.Render("recommended") + " " + strings.Join(names, ", ") + "\n")
	}
	p.printf("%s", b.String())
}

// ShowSubjectSelection implements session.View.
func (p *Printer) ShowSubjectSelection(selected []int) {
	if len(selected) == 0 {
		return
	}
	nums := make([]string, len(selected))
	for i, n := range selected {
		nums[i] = fmt.Sprint(n + 1)
	}
	p.printf("selected subjects: %s\n", strings.Join(nums, ", "))
}

// ShowPreview implements session.View.
func (p *Printer) ShowPreview(kind session.PreviewKind, template *types.Template, result *types.PreviewResult) {
	if result == nil {
		return
	}
	line := fmt.Sprintf("%s preview: %d frames", kind, len(result.PreviewFrames))
	if template != nil {
		line += fmt.Sprintf(" for %s %dx%d", template.Name, template.Width, template.Height)
	}
	if result.SubjectName != "" {
		line += " around " + result.SubjectName
	}
	if kind == session.PreviewTemplate && result.IsAdjusted {
		line += " (position adjusted)"
	}
	p.printf("%s\n", line)
}

// ShowConversion implements session.View.
func (p *Printer) ShowConversion(result *types.ConvertResult) {
	if result == nil {
		return
	}
	p.printf("%s %s\n%s %s\n", labelStyle.Render("file"), result.Filename, labelStyle.Render("download"), result.DownloadURL)
}

// ShowComparison implements session.View.
func (p *Printer) ShowComparison(cmp session.Comparison) {
	if cmp.Data == nil {
		return
	}
	if o := cmp.Data.Original; o != nil {
		p.printf("original  %s %dx%d, shown at %dx%d\n", o.Filename, o.Info.Width, o.Info.Height, cmp.Original.Width, cmp.Original.Height)
	}
	if c := cmp.Data.Converted; c != nil {
		p.printf("converted %s %dx%d, shown at %dx%d\n", c.Filename, c.Info.Width, c.Info.Height, cmp.Converted.Width, cmp.Converted.Height)
	}
}

// ShowCropGuide implements selector.Indicator.
func (p *Printer) ShowCropGuide(rect types.CropRect) {
	p.detail("crop guide %.0fx%.0f at %.0f,%.0f", rect.Width, rect.Height, rect.Left, rect.Top)
}

// HideCropGuide implements selector.Indicator.
func (p *Printer) HideCropGuide() {}

// ShowCenterMarker implements selector.Indicator.
func (p *Printer) ShowCenterMarker(x, y float64) {
	p.detail("crop position %.0f,%.0f", x, y)
}

// HideCenterMarker implements selector.Indicator.
func (p *Printer) HideCenterMarker() {}

// SetConvertEnabled implements selector.Indicator.
func (p *Printer) SetConvertEnabled(enabled bool) {
	if enabled {
		p.detail("ready to convert at the chosen position")
	}
}

// SetStatus implements selector.Indicator.
func (p *Printer) SetStatus(text string) {
	p.detail("%s", text)
}

// ShowFrame implements player.Screen.
func (p *Printer) ShowFrame(index int, _ string) {
	p.detail("frame %d", index+1)
}

// RestoreFrame implements player.Screen.
func (p *Printer) RestoreFrame() {}

// SetTrigger implements player.Screen.
func (p *Printer) SetTrigger(bool, string) {}
