// Package request assembles the bodies of the preview and convert calls.
package request

import (
	"errors"

	"github.com/menta2k/adaptvideo/pkg/types"
)

var (
	// ErrNoFile is returned when no uploaded file is selected.
	ErrNoFile = errors.New("no video selected")
	// ErrNoTemplate is returned when no output template is selected.
	ErrNoTemplate = errors.New("no output template selected")
)

// Build assembles a conversion request. Outside llm mode the service crops
// around the frame centre, so no position is sent. In llm mode a non-empty
// subject list is sent as centers and wins over the single centre.
func Build(fileID string, template types.Template, cropMode types.CropMode, singleCenter *types.Point, multiSubjectCenters []types.Point) types.ConversionRequest {
	req := types.ConversionRequest{
		FileID:       fileID,
		TemplateName: template.Name,
		Width:        template.Width,
		Height:       template.Height,
		CropMode:     cropMode,
	}

	if cropMode != types.CropModeLLM {
		return req
	}

	if len(multiSubjectCenters) > 0 {
		req.Centers = append([]types.Point(nil), multiSubjectCenters...)
		return req
	}
	if singleCenter != nil {
		c := *singleCenter
		req.Center = &c
	}
	return req
}

// ForConvert strips the template name; the convert endpoint takes the size.
func ForConvert(req types.ConversionRequest) types.ConversionRequest {
	req.TemplateName = ""
	return req
}

// ForPreview strips the size; the preview endpoint takes the template name.
func ForPreview(req types.ConversionRequest) types.ConversionRequest {
	req.Width, req.Height = 0, 0
	return req
}

// Validate reports missing context before any network call is made.
func Validate(fileID string, template types.Template) error {
	if fileID == "" {
		return ErrNoFile
	}
	if template.IsZero() {
		return ErrNoTemplate
	}
	return template.Validate()
}

// ModeFor returns llm when a crop position is known and center otherwise.
func ModeFor(center *types.Point, multiSubjectCenters []types.Point) types.CropMode {
	if center != nil || len(multiSubjectCenters) > 0 {
		return types.CropModeLLM
	}
	return types.CropModeCenter
}
