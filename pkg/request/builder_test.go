package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/adaptvideo/pkg/types"
)

var fullHD = types.Template{Name: "standard 16:9", Width: 1920, Height: 1080, Description: "Full HD"}

func decode(t *testing.T, req types.ConversionRequest) map[string]any {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestBuild_MultipleSubjectsWin(t *testing.T) {
	single := &types.Point{X: 0.5, Y: 0.5}
	multi := []types.Point{{X: 0.2, Y: 0.3}, {X: 0.8, Y: 0.5}}

	req := Build("abc", fullHD, types.CropModeLLM, single, multi)

	require.Len(t, req.Centers, 2)
	assert.Nil(t, req.Center)

	body := decode(t, ForConvert(req))
	assert.NotContains(t, body, "center")
	assert.Equal(t, []any{[]any{0.2, 0.3}, []any{0.8, 0.5}}, body["centers"])
	assert.Equal(t, "llm", body["crop_mode"])
}

func TestBuild_SingleCenterWhenNoSubjects(t *testing.T) {
	single := &types.Point{X: 0.25, Y: 0.75}
	req := Build("abc", fullHD, types.CropModeLLM, single, nil)

	require.NotNil(t, req.Center)
	assert.Equal(t, *single, *req.Center)
	assert.Empty(t, req.Centers)

	body := decode(t, req)
	assert.NotContains(t, body, "centers")
	assert.Equal(t, []any{0.25, 0.75}, body["center"])
}

func TestBuild_CenterModeOmitsPositions(t *testing.T) {
	single := &types.Point{X: 0.25, Y: 0.75}
	multi := []types.Point{{X: 0.2, Y: 0.3}}

	for _, mode := range []types.CropMode{types.CropModeCenter, "", "unknown"} {
		req := Build("abc", fullHD, mode, single, multi)
		body := decode(t, req)
		assert.NotContains(t, body, "center", "mode %q", mode)
		assert.NotContains(t, body, "centers", "mode %q", mode)
	}
}

func TestBuild_DoesNotAliasCallerSlice(t *testing.T) {
	multi := []types.Point{{X: 0.2, Y: 0.3}}
	req := Build("abc", fullHD, types.CropModeLLM, nil, multi)
	multi[0].X = 0.9
	assert.Equal(t, 0.2, req.Centers[0].X)
}

func TestTargetShapes(t *testing.T) {
	req := Build("abc", fullHD, types.CropModeCenter, nil, nil)

	convert := decode(t, ForConvert(req))
	assert.Equal(t, "abc", convert["file_id"])
	assert.EqualValues(t, 1920, convert["width"])
	assert.EqualValues(t, 1080, convert["height"])
	assert.NotContains(t, convert, "template_name")

	preview := decode(t, ForPreview(req))
	assert.Equal(t, "standard 16:9", preview["template_name"])
	assert.NotContains(t, preview, "width")
	assert.NotContains(t, preview, "height")
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate("", fullHD), ErrNoFile)
	assert.ErrorIs(t, Validate("abc", types.Template{}), ErrNoTemplate)
	assert.Error(t, Validate("abc", types.Template{Name: "broken"}))
	assert.NoError(t, Validate("abc", fullHD))
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, types.CropModeCenter, ModeFor(nil, nil))
	assert.Equal(t, types.CropModeLLM, ModeFor(&types.Point{X: 0.5, Y: 0.5}, nil))
	assert.Equal(t, types.CropModeLLM, ModeFor(nil, []types.Point{{X: 0.1, Y: 0.1}}))
}
