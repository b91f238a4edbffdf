package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Point is a normalized position inside a frame; both coordinates are in [0,1]
// and independent of the size the frame is displayed at.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UnmarshalJSON accepts both {"x":..,"y":..} and the [x, y] pair the analysis
// endpoint uses for subject centres.
func (p *Point) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("invalid point pair: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("invalid point pair: want 2 values, got %d", len(pair))
		}
		p.X, p.Y = pair[0], pair[1]
		return nil
	}

	type plain Point
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid point: %w", err)
	}
	*p = Point(v)
	return nil
}

// MarshalJSON encodes the point as the [x, y] pair the service expects for
// crop centres.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// InUnitSquare reports whether both coordinates are within [0,1].
func (p Point) InUnitSquare() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Template is an output size preset offered by the service.
type Template struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Description string `json:"description"`
}

// AspectRatio returns width/height, or 0 for a degenerate template.
func (t Template) AspectRatio() float64 {
	if t.Width <= 0 || t.Height <= 0 {
		return 0
	}
	return float64(t.Width) / float64(t.Height)
}

// IsPortrait reports whether the template is taller than it is wide.
func (t Template) IsPortrait() bool {
	return t.Height > t.Width
}

// IsZero reports whether no template is set.
func (t Template) IsZero() bool {
	return t == Template{}
}

// Validate checks the template dimensions.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is empty")
	}
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("template %q has invalid size %dx%d", t.Name, t.Width, t.Height)
	}
	return nil
}

// Importance ranks a detected subject.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// OrDefault maps an unknown or empty importance to medium.
func (i Importance) OrDefault() Importance {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return i
	default:
		return ImportanceMedium
	}
}

// Subject is a region of interest suggested by the service's analysis.
type Subject struct {
	Subject    string     `json:"subject"`
	Center     Point      `json:"center"`
	Importance Importance `json:"importance,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Thumbnail  string     `json:"thumbnail,omitempty"`
}

// CropRect is a crop rectangle in display pixels.
type CropRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r CropRect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r CropRect) Bottom() float64 { return r.Top + r.Height }

// CropMode selects how the service chooses the crop centre.
type CropMode string

const (
	// CropModeCenter crops around the geometric centre of the frame.
	CropModeCenter CropMode = "center"
	// CropModeLLM crops around one or more subject positions.
	CropModeLLM CropMode = "llm"
)

// ConversionRequest is the body of the preview and convert calls. Preview
// requests carry TemplateName, convert requests carry Width and Height.
type ConversionRequest struct {
	FileID       string   `json:"file_id"`
	TemplateName string   `json:"template_name,omitempty"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	CropMode     CropMode `json:"crop_mode"`
	Center       *Point   `json:"center,omitempty"`
	Centers      []Point  `json:"centers,omitempty"`
}

// VideoInfo describes a video as reported by the service.
type VideoInfo struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
}

// ConvertedVideo is one conversion recorded for an upload.
type ConvertedVideo struct {
	Path         string `json:"path,omitempty"`
	Filename     string `json:"filename"`
	TemplateName string `json:"template_name"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// UploadedVideo is an entry of the upload history.
type UploadedVideo struct {
	FileID          string           `json:"file_id"`
	Filename        string           `json:"filename"`
	Thumbnail       string           `json:"thumbnail"`
	VideoInfo       *VideoInfo       `json:"video_info"`
	ConvertedVideos []ConvertedVideo `json:"converted_videos,omitempty"`
}

// UploadResult is returned by the upload endpoint.
type UploadResult struct {
	FileID    string     `json:"file_id"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	VideoInfo *VideoInfo `json:"video_info,omitempty"`
}

// ConversationTurn is one message of the analysis conversation history.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnalyzeRequest is the body of the analysis call.
type AnalyzeRequest struct {
	FileID              string             `json:"file_id"`
	ConversationHistory []ConversationTurn `json:"conversation_history"`
}

// AnalysisResult is returned by the analysis endpoint.
type AnalysisResult struct {
	AnalysisOptions          []Subject `json:"analysis_options"`
	Suggestions              string    `json:"suggestions"`
	RecommendedTemplateNames []string  `json:"recommended_template_names"`
}

// ConvertResult is returned by the convert endpoint.
type ConvertResult struct {
	Success     bool   `json:"success"`
	FileID      string `json:"file_id"`
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename,omitempty"`
}

// PreviewResult is returned by the three preview endpoints. IsAdjusted is
// only set by the template preview.
type PreviewResult struct {
	PreviewFrames []string `json:"preview_frames"`
	IsAdjusted    bool     `json:"is_adjusted"`
	FrameCount    int      `json:"frame_count,omitempty"`
	SubjectName   string   `json:"subject_name,omitempty"`
}

// FileRequest is the body of the calls that only need a file id.
type FileRequest struct {
	FileID string `json:"file_id"`
}

// ComparisonSide is one side of a before/after comparison.
type ComparisonSide struct {
	URL      string    `json:"url"`
	Filename string    `json:"filename"`
	Info     VideoInfo `json:"info"`
}

// ComparisonData is returned by the comparison endpoint.
type ComparisonData struct {
	Original  *ComparisonSide `json:"original"`
	Converted *ComparisonSide `json:"converted"`
}
