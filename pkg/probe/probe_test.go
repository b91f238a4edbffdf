package probe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "streams": [
    {"codec_type": "audio", "duration": "12.0"},
    {"codec_type": "video", "width": 1920, "height": 1080,
     "avg_frame_rate": "30000/1001", "r_frame_rate": "30/1", "duration": "12.01"}
  ],
  "format": {"duration": "12.512"}
}`

func TestParse(t *testing.T) {
	info, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.InDelta(t, 12.512, info.Duration, 1e-9)
}

func TestParse_NoVideo(t *testing.T) {
	_, err := Parse([]byte(`{"streams":[{"codec_type":"audio"}],"format":{}}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 25.0, parseRate("25"))
	assert.Equal(t, 30.0, parseRate("30/1"))
	assert.Equal(t, 0.0, parseRate("0/0"))
	assert.Equal(t, 0.0, parseRate(""))
}

func TestInspect_Unavailable(t *testing.T) {
	p := New()
	p.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	_, err := p.Inspect("clip.mp4")
	assert.ErrorIs(t, err, ErrProbeUnavailable)
}

func TestInspect_UsesProbeOutput(t *testing.T) {
	p := New()
	p.lookPath = func(string) (string, error) { return "/usr/bin/ffprobe", nil }
	p.probe = func(path string) (string, error) {
		assert.Equal(t, "clip.mp4", path)
		return sample, nil
	}

	info, err := p.Inspect("clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1080, info.Height)

	p.probe = func(string) (string, error) { return "", errors.New("moov atom not found") }
	_, err = p.Inspect("clip.mp4")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrProbeUnavailable)
}
