package tui

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/adaptvideo/pkg/media"
	"github.com/menta2k/adaptvideo/pkg/player"
	"github.com/menta2k/adaptvideo/pkg/session"
	"github.com/menta2k/adaptvideo/pkg/types"
)

func dataURL(t *testing.T, w, h int) string {
	t.Helper()
	s, err := media.EncodeDataURL(imaging.New(w, h, color.NRGBA{200, 10, 10, 255}), "jpg", 80)
	require.NoError(t, err)
	return s
}

func TestScreen_Notify(t *testing.T) {
	s := NewScreen(640, 360)
	calls := 0
	s.SetNotify(func() { calls++ })

	s.Status("hello", session.LevelSuccess)
	s.SetStatus("choose a template")
	assert.Equal(t, 2, calls)

	st := s.snapshot()
	assert.Equal(t, "hello", st.status)
	assert.Equal(t, session.LevelSuccess, st.level)
	assert.Equal(t, "choose a template", st.selStatus)
}

func TestScreen_Indicator(t *testing.T) {
	s := NewScreen(640, 360)

	s.ShowCenterMarker(320, 90)
	require.NotNil(t, s.snapshot().marker)
	assert.Equal(t, types.Point{X: 0.5, Y: 0.25}, *s.snapshot().marker)

	rect := types.CropRect{Left: 10, Top: 0, Width: 200, Height: 360}
	s.ShowCropGuide(rect)
	s.SetConvertEnabled(true)
	st := s.snapshot()
	require.NotNil(t, st.guide)
	assert.Equal(t, rect, *st.guide)
	assert.True(t, st.convertEnabled)

	s.HideCropGuide()
	s.HideCenterMarker()
	st = s.snapshot()
	assert.Nil(t, st.guide)
	assert.Nil(t, st.marker)
}

func TestScreen_ShowVideoClearsDerivedState(t *testing.T) {
	s := NewScreen(640, 360)
	s.ShowAnalysis([]types.Subject{{Subject: "a"}}, "text", nil)
	s.ShowSubjectSelection([]int{0})
	s.ShowConversion(&types.ConvertResult{Success: true})
	s.ShowPreview(session.PreviewOriginal, nil, &types.PreviewResult{})

	info := &types.VideoInfo{Width: 1920, Height: 1080}
	s.ShowVideo("b.mp4", dataURL(t, 32, 18), info)

	st := s.snapshot()
	assert.Equal(t, "b.mp4", st.filename)
	assert.Same(t, info, st.info)
	require.NotNil(t, st.thumb)
	assert.Equal(t, image.Rect(0, 0, 32, 18), st.thumb.Bounds())
	assert.NoError(t, st.thumbErr)
	assert.Nil(t, st.subjects)
	assert.Empty(t, st.suggestions)
	assert.Nil(t, st.selected)
	assert.Nil(t, st.conversion)
	assert.Nil(t, st.preview)
	assert.Equal(t, -1, st.frameIndex)
}

func TestScreen_ShowVideoBadThumbnail(t *testing.T) {
	s := NewScreen(640, 360)
	s.ShowVideo("c.mp4", "not a data url", nil)
	st := s.snapshot()
	assert.Nil(t, st.thumb)
	assert.ErrorIs(t, st.thumbErr, media.ErrNotDataURL)
}

func TestScreen_Frames(t *testing.T) {
	s := NewScreen(640, 360)
	assert.Equal(t, player.LabelIdle, s.snapshot().triggerLabel)

	// Without a preview the frame is decoded on the fly.
	s.ShowFrame(2, dataURL(t, 8, 8))
	st := s.snapshot()
	require.NotNil(t, st.frame)
	assert.Equal(t, 2, st.frameIndex)

	s.ShowPreview(session.PreviewTemplate, nil, &types.PreviewResult{PreviewFrames: []string{"x", "y"}})
	pre := []image.Image{imaging.New(4, 4, color.White), imaging.New(6, 6, color.Black)}
	s.SetPreviewFrames(pre)
	s.ShowFrame(1, "ignored")
	st = s.snapshot()
	assert.Same(t, pre[1], st.frame)
	assert.Equal(t, 1, st.frameIndex)

	s.SetTrigger(false, player.LabelPlaying)
	s.RestoreFrame()
	st = s.snapshot()
	assert.Nil(t, st.frame)
	assert.Equal(t, -1, st.frameIndex)
	assert.False(t, st.triggerEnabled)
	assert.Equal(t, player.LabelPlaying, st.triggerLabel)
}

func TestScreen_SetPreviewFramesWithoutPreview(t *testing.T) {
	s := NewScreen(640, 360)
	s.SetPreviewFrames([]image.Image{imaging.New(2, 2, color.White)})
	assert.Nil(t, s.snapshot().preview)
}
