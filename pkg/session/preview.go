package session

import (
	"context"

	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/request"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// Preview renders sample frames of the chosen template in the current crop
// mode.
func (c *Controller) Preview(ctx context.Context) error {
	tmpl, _ := c.state.Template()
	if err := request.Validate(c.state.FileID(), tmpl); err != nil {
		return c.reject(missing(MsgNoVideoOrTemplate))
	}

	c.view.Status(MsgPreviewing, LevelInfo)
	res, err := c.transport.GeneratePreview(ctx, c.conversionRequest(tmpl))
	if err != nil {
		return c.fail(err, "preview generation failed")
	}

	c.state.setPreview(res)
	c.view.ShowPreview(PreviewTemplate, &tmpl, res)
	if res.IsAdjusted {
		c.view.Status(MsgPreviewAdjusted, LevelInfo)
	} else {
		c.view.Status(MsgPreviewPerfect, LevelSuccess)
	}
	return nil
}

// OriginalPreview renders sample frames of the uploaded video.
func (c *Controller) OriginalPreview(ctx context.Context) (*types.PreviewResult, error) {
	if !c.state.HasVideo() {
		return nil, c.reject(missing(MsgNoVideo))
	}
	res, err := c.transport.GenerateOriginalPreview(ctx, c.state.FileID())
	if err != nil {
		return nil, c.fail(err, "original preview generation failed")
	}
	c.state.setPreview(res)
	c.view.ShowPreview(PreviewOriginal, nil, res)
	return res, nil
}

// ConvertedPreview renders sample frames of the last conversion.
func (c *Controller) ConvertedPreview(ctx context.Context) (*types.PreviewResult, error) {
	id := c.state.ConvertedFileID()
	if id == "" {
		return nil, c.reject(missing(MsgNoConversion))
	}
	res, err := c.transport.GenerateConvertedPreview(ctx, id)
	if err != nil {
		return nil, c.fail(err, "converted preview generation failed")
	}
	c.state.setPreview(res)
	c.view.ShowPreview(PreviewConverted, nil, res)
	return res, nil
}

// Compare loads the before/after comparison of the current video. When it
// fails the service's conversion records are logged.
func (c *Controller) Compare(ctx context.Context) error {
	if !c.state.HasVideo() {
		return c.reject(missing(MsgNoVideo))
	}
	fileID := c.state.FileID()

	c.view.Status(MsgLoadingComparison, LevelInfo)
	data, err := c.transport.VideoComparison(ctx, fileID)
	if err != nil {
		if info, derr := c.transport.DebugConversions(ctx, fileID); derr == nil {
			c.logger.Info("conversion records", "file_id", fileID, "debug", info)
		} else {
			c.logger.Warn("debug request failed", "file_id", fileID, "error", derr)
		}
		return c.fail(err, "failed to load video comparison")
	}

	c.view.ShowComparison(Comparison{
		Data:      data,
		Original:  c.fit(data.Original),
		Converted: c.fit(data.Converted),
	})
	return nil
}

func (c *Controller) fit(side *types.ComparisonSide) DisplaySize {
	var w, h int
	if side != nil {
		w, h = side.Info.Width, side.Info.Height
	}
	w, h = geometry.FitWithin(w, h, c.compareW, c.compareH)
	return DisplaySize{Width: w, Height: h}
}
