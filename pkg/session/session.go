// Package session holds the state of one editing session and the
// controller that drives it through upload, analysis, preview, conversion
// and comparison.
package session

import (
	"slices"

	"github.com/menta2k/adaptvideo/pkg/types"
)

// Session is the state of the video being worked on. It is owned by a
// Controller and mutated only from the caller's event loop.
type Session struct {
	fileID    string
	filename  string
	thumbnail string
	info      *types.VideoInfo

	templates   []types.Template
	template    *types.Template
	subjects    []types.Subject
	selected    []int
	suggestions string
	recommended []types.Template
	cropMode    types.CropMode
	history     []types.ConversationTurn

	convertedFileID string
	downloadURL     string
	convertedName   string

	previewFrames []string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{cropMode: types.CropModeLLM}
}

func (s *Session) FileID() string              { return s.fileID }
func (s *Session) Filename() string            { return s.filename }
func (s *Session) Thumbnail() string           { return s.thumbnail }
func (s *Session) VideoInfo() *types.VideoInfo { return s.info }
func (s *Session) Suggestions() string         { return s.suggestions }
func (s *Session) CropMode() types.CropMode    { return s.cropMode }
func (s *Session) ConvertedFileID() string     { return s.convertedFileID }
func (s *Session) DownloadURL() string         { return s.downloadURL }
func (s *Session) ConvertedFilename() string   { return s.convertedName }

// HasVideo reports whether a video is selected.
func (s *Session) HasVideo() bool { return s.fileID != "" }

// Templates returns the template catalogue.
func (s *Session) Templates() []types.Template {
	return slices.Clone(s.templates)
}

// Template returns the chosen output template.
func (s *Session) Template() (types.Template, bool) {
	if s.template == nil {
		return types.Template{}, false
	}
	return *s.template, true
}

// FindTemplate looks a template up by name.
func (s *Session) FindTemplate(name string) (types.Template, bool) {
	for _, t := range s.templates {
		if t.Name == name {
			return t, true
		}
	}
	return types.Template{}, false
}

// Subjects returns the subjects of the last analysis.
func (s *Session) Subjects() []types.Subject {
	return slices.Clone(s.subjects)
}

// Recommended returns the recommended templates of the last analysis.
func (s *Session) Recommended() []types.Template {
	return slices.Clone(s.recommended)
}

// SelectedSubjects returns the indices of the selected subjects in the
// order they were selected.
func (s *Session) SelectedSubjects() []int {
	return slices.Clone(s.selected)
}

// SelectedCenters returns the centres of the selected subjects.
func (s *Session) SelectedCenters() []types.Point {
	out := make([]types.Point, 0, len(s.selected))
	for _, i := range s.selected {
		out = append(out, s.subjects[i].Center)
	}
	return out
}

// FirstSubjectCenter returns the centre of the top subject, if any.
func (s *Session) FirstSubjectCenter() *types.Point {
	if len(s.subjects) == 0 {
		return nil
	}
	c := s.subjects[0].Center
	return &c
}

// PreviewFrames returns the frames of the last preview.
func (s *Session) PreviewFrames() []string {
	return slices.Clone(s.previewFrames)
}

// History returns the conversation sent with each analysis.
func (s *Session) History() []types.ConversationTurn {
	return slices.Clone(s.history)
}

// SetCropMode switches between centre and subject crops.
func (s *Session) SetCropMode(m types.CropMode) {
	if m == types.CropModeCenter || m == types.CropModeLLM {
		s.cropMode = m
	}
}

// ResetForNewVideo clears everything but the template catalogue.
func (s *Session) ResetForNewVideo() {
	templates := s.templates
	*s = *NewSession()
	s.templates = templates
}

func (s *Session) setVideo(fileID, filename, thumbnail string, info *types.VideoInfo) {
	s.fileID = fileID
	s.filename = filename
	s.thumbnail = thumbnail
	if info != nil {
		v := *info
		s.info = &v
	}
}

func (s *Session) setTemplates(t []types.Template) {
	s.templates = slices.Clone(t)
}

func (s *Session) setTemplate(t types.Template) {
	s.template = &t
}

func (s *Session) setConversion(r *types.ConvertResult) {
	s.convertedFileID = r.FileID
	s.downloadURL = r.DownloadURL
	s.convertedName = r.Filename
}

func (s *Session) setPreview(r *types.PreviewResult) {
	s.previewFrames = slices.Clone(r.PreviewFrames)
}

func (s *Session) setAnalysis(r *types.AnalysisResult) {
	s.subjects = slices.Clone(r.AnalysisOptions)
	s.selected = nil
	s.suggestions = r.Suggestions
	s.recommended = nil
	for _, name := range r.RecommendedTemplateNames {
		if t, ok := s.FindTemplate(name); ok {
			s.recommended = append(s.recommended, t)
		}
	}
}

// toggle flips the selection of subject i and reports whether it is now
// selected.
func (s *Session) toggle(i int) bool {
	if idx := slices.Index(s.selected, i); idx >= 0 {
		s.selected = slices.Delete(s.selected, idx, idx+1)
		return false
	}
	s.selected = append(s.selected, i)
	return true
}
