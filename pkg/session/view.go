package session

import (
	"github.com/menta2k/adaptvideo/pkg/selector"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// Level is the severity of a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Status messages.
const (
	MsgNoVideo           = "please select a video first"
	MsgNoVideoOrTemplate = "please choose a video and a template"
	MsgNoPosition        = "choose a crop position first"
	MsgNoTemplate        = selector.StatusChooseTemplate
	MsgNoConversion      = "convert the video first"
	MsgUploading         = "uploading video..."
	MsgUploaded          = "video uploaded, running AI analysis..."
	MsgAnalysing         = "running AI analysis..."
	MsgAnalysed          = "AI analysis complete"
	MsgPreviewing        = "generating preview..."
	MsgPreviewAdjusted   = "subject position adjusted to fit the template"
	MsgPreviewPerfect    = "perfect fit, no adjustment needed"
	MsgConverting        = "converting video..."
	MsgConverted         = "conversion complete"
	MsgLoadingComparison = "loading video comparison..."
)

// PreviewKind tells which frames a preview shows.
type PreviewKind int

const (
	PreviewTemplate PreviewKind = iota
	PreviewOriginal
	PreviewConverted
)

func (k PreviewKind) String() string {
	switch k {
	case PreviewOriginal:
		return "original"
	case PreviewConverted:
		return "converted"
	default:
		return "template"
	}
}

// DisplaySize is the size a player is shown at.
type DisplaySize struct {
	Width  int
	Height int
}

// Comparison is a before/after comparison with the display size of each
// side.
type Comparison struct {
	Data      *types.ComparisonData
	Original  DisplaySize
	Converted DisplaySize
}

// View renders session outcomes. Implementations must tolerate being
// called from the goroutine running the controller.
type View interface {
	Status(msg string, level Level)
	ShowTemplates(templates []types.Template)
	ShowHistory(videos []types.UploadedVideo)
	ShowVideo(filename, thumbnail string, info *types.VideoInfo)
	ShowAnalysis(subjects []types.Subject, suggestions string, recommended []types.Template)
	ShowSubjectSelection(selected []int)
	ShowPreview(kind PreviewKind, template *types.Template, result *types.PreviewResult)
	ShowConversion(result *types.ConvertResult)
	ShowComparison(cmp Comparison)
}
