// Package selector tracks the manually chosen crop position and output
// template and derives the crop guide, status text and convert availability
// from them.
package selector

import (
	"errors"
	"fmt"

	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// State is the selection progress.
type State int

const (
	NoTemplateNoCenter State = iota
	TemplateOnly
	CenterOnly
	Ready
)

func (s State) String() string {
	switch s {
	case NoTemplateNoCenter:
		return "no-template-no-center"
	case TemplateOnly:
		return "template-only"
	case CenterOnly:
		return "center-only"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status texts shown for each state.
const (
	StatusChooseTemplate = "choose an output template"
	StatusChoosePosition = "click the thumbnail to choose a crop position"
	StatusReady          = "ready to convert"
)

// StatusFor returns the status text of a state.
func StatusFor(s State) string {
	switch s {
	case TemplateOnly:
		return StatusChoosePosition
	case Ready:
		return StatusReady
	default:
		return StatusChooseTemplate
	}
}

// Indicator renders the selection. It is implemented by the rendering layer.
type Indicator interface {
	ShowCropGuide(rect types.CropRect)
	HideCropGuide()
	ShowCenterMarker(x, y float64)
	HideCenterMarker()
	SetConvertEnabled(enabled bool)
	SetStatus(text string)
}

// ErrNoIndicator is returned when a selector is built without a renderer.
var ErrNoIndicator = errors.New("selector: indicator is required")

// Selector is the position selector state machine. It is not safe for
// concurrent use; mutate it from the event loop only.
type Selector struct {
	indicator     Indicator
	displayWidth  float64
	displayHeight float64

	template *types.Template
	center   *types.Point
	rect     types.CropRect
}

// New creates a selector for a thumbnail displayed at displayWidth x
// displayHeight pixels and renders the initial state.
func New(indicator Indicator, displayWidth, displayHeight float64) (*Selector, error) {
	if indicator == nil {
		return nil, ErrNoIndicator
	}
	if displayWidth <= 0 || displayHeight <= 0 {
		return nil, fmt.Errorf("selector: invalid display size %.0fx%.0f", displayWidth, displayHeight)
	}

	s := &Selector{
		indicator:     indicator,
		displayWidth:  displayWidth,
		displayHeight: displayHeight,
	}
	s.render()
	return s, nil
}

// State returns the current state.
func (s *Selector) State() State {
	switch {
	case s.template != nil && s.center != nil:
		return Ready
	case s.template != nil:
		return TemplateOnly
	case s.center != nil:
		return CenterOnly
	default:
		return NoTemplateNoCenter
	}
}

// Status returns the status text of the current state.
func (s *Selector) Status() string {
	return StatusFor(s.State())
}

// ConvertEnabled reports whether both a template and a position are chosen.
func (s *Selector) ConvertEnabled() bool {
	return s.State() == Ready
}

// CropRect returns the crop guide; ok is false unless the selector is Ready.
func (s *Selector) CropRect() (types.CropRect, bool) {
	if s.State() != Ready {
		return types.CropRect{}, false
	}
	return s.rect, true
}

// Template returns the chosen template, if any.
func (s *Selector) Template() (types.Template, bool) {
	if s.template == nil {
		return types.Template{}, false
	}
	return *s.template, true
}

// Center returns the chosen position, if any.
func (s *Selector) Center() (types.Point, bool) {
	if s.center == nil {
		return types.Point{}, false
	}
	return *s.center, true
}

// DisplaySize returns the size the thumbnail is displayed at.
func (s *Selector) DisplaySize() (float64, float64) {
	return s.displayWidth, s.displayHeight
}

// SelectTemplate sets the output template.
func (s *Selector) SelectTemplate(t types.Template) {
	s.template = &t
	s.render()
}

// SelectCenter sets the crop position, replacing any earlier one.
func (s *Selector) SelectCenter(p types.Point) {
	s.center = &p
	s.render()
}

// Resize updates the display size, e.g. after a terminal resize.
func (s *Selector) Resize(displayWidth, displayHeight float64) {
	if displayWidth <= 0 || displayHeight <= 0 {
		return
	}
	s.displayWidth, s.displayHeight = displayWidth, displayHeight
	s.render()
}

// Reset clears both the template and the position.
func (s *Selector) Reset() {
	s.template = nil
	s.center = nil
	s.rect = types.CropRect{}
	s.render()
}

func (s *Selector) render() {
	if s.center != nil {
		x, y := geometry.Denormalize(*s.center, s.displayWidth, s.displayHeight)
		s.indicator.ShowCenterMarker(x, y)
	} else {
		s.indicator.HideCenterMarker()
	}

	state := s.State()
	if state == Ready {
		s.rect = geometry.ComputeCropRect(*s.center, s.displayWidth, s.displayHeight, s.template.AspectRatio())
		s.indicator.ShowCropGuide(s.rect)
	} else {
		s.indicator.HideCropGuide()
	}

	s.indicator.SetConvertEnabled(state == Ready)
	s.indicator.SetStatus(StatusFor(state))
}
