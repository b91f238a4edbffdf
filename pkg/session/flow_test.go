package session_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/adaptvideo/internal/stubserver"
	"github.com/menta2k/adaptvideo/pkg/api"
	"github.com/menta2k/adaptvideo/pkg/selector"
	"github.com/menta2k/adaptvideo/pkg/session"
	"github.com/menta2k/adaptvideo/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type recorder struct {
	subjects   []types.Subject
	previews   map[session.PreviewKind]*types.PreviewResult
	conversion *types.ConvertResult
	comparison *session.Comparison
	errors     []string
}

func (r *recorder) Status(msg string, level session.Level) {
	if level == session.LevelError {
		r.errors = append(r.errors, msg)
	}
}

func (r *recorder) ShowTemplates([]types.Template)                               {}
func (r *recorder) ShowHistory([]types.UploadedVideo)                            {}
func (r *recorder) ShowVideo(string, string, *types.VideoInfo)                   {}
func (r *recorder) ShowSubjectSelection([]int)                                   {}
func (r *recorder) ShowConversion(res *types.ConvertResult)                      { r.conversion = res }
func (r *recorder) ShowComparison(cmp session.Comparison)                        { r.comparison = &cmp }
func (r *recorder) ShowAnalysis(s []types.Subject, _ string, _ []types.Template) { r.subjects = s }

func (r *recorder) ShowPreview(kind session.PreviewKind, _ *types.Template, res *types.PreviewResult) {
	if r.previews == nil {
		r.previews = make(map[session.PreviewKind]*types.PreviewResult)
	}
	r.previews[kind] = res
}

type guide struct{}

func (guide) ShowCropGuide(types.CropRect)  {}
func (guide) HideCropGuide()                {}
func (guide) ShowCenterMarker(_, _ float64) {}
func (guide) HideCenterMarker()             {}
func (guide) SetConvertEnabled(bool)        {}
func (guide) SetStatus(string)              {}

func TestUploadFlowAgainstService(t *testing.T) {
	stub := stubserver.New()
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	sel, err := selector.New(guide{}, 640, 360)
	require.NoError(t, err)
	view := &recorder{}
	c, err := session.New(api.NewClient(srv.URL), view, sel)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))

	ctx := context.Background()
	require.NoError(t, c.LoadTemplates(ctx))
	require.NoError(t, c.UploadAndAnalyze(ctx, path))

	fileID := c.Session().FileID()
	require.NotEmpty(t, fileID)
	assert.Equal(t, 1, stub.Requests(api.PathUpload))
	assert.Equal(t, 1, stub.Requests(api.PathAnalyze))

	var analyzed types.AnalyzeRequest
	require.NoError(t, json.Unmarshal(stub.LastBody(api.PathAnalyze), &analyzed))
	assert.Equal(t, fileID, analyzed.FileID)
	assert.NotNil(t, analyzed.ConversationHistory)

	require.Len(t, view.subjects, 3)
	for _, s := range view.subjects {
		assert.True(t, s.Center.InUnitSquare(), s.Subject)
	}

	require.NoError(t, c.SelectTemplate("portrait 9:16"))
	require.NoError(t, c.ToggleSubject(0))
	require.NoError(t, c.ToggleSubject(1))

	require.NoError(t, c.Preview(ctx))
	require.NotNil(t, view.previews[session.PreviewTemplate])
	assert.NotEmpty(t, view.previews[session.PreviewTemplate].PreviewFrames)

	require.NoError(t, c.Convert(ctx))
	var converted types.ConversionRequest
	require.NoError(t, json.Unmarshal(stub.LastBody(api.PathConvert), &converted))
	assert.Equal(t, types.CropModeLLM, converted.CropMode)
	assert.Len(t, converted.Centers, 2)
	assert.Nil(t, converted.Center)
	assert.Equal(t, 1080, converted.Width)
	assert.Equal(t, 1920, converted.Height)
	assert.Empty(t, converted.TemplateName)

	require.NotNil(t, view.conversion)
	assert.Equal(t, fileID, c.Session().ConvertedFileID())
	assert.NotEmpty(t, c.Session().DownloadURL())

	_, err = c.ConvertedPreview(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Compare(ctx))
	require.NotNil(t, view.comparison)
	assert.Equal(t, 0, stub.Requests(api.PathDebugConversions+":file_id"))
	assert.Empty(t, view.errors)
}

func TestCompareWithoutConversionQueriesDebug(t *testing.T) {
	stub := stubserver.New()
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	sel, err := selector.New(guide{}, 640, 360)
	require.NoError(t, err)
	view := &recorder{}
	c, err := session.New(api.NewClient(srv.URL), view, sel)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "clip.mov")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))
	require.NoError(t, c.UploadAndAnalyze(context.Background(), path))

	err = c.Compare(context.Background())
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, stub.Requests(api.PathDebugConversions+":file_id"))
	assert.NotEmpty(t, view.errors)
}
