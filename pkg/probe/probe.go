// Package probe reads stream information from local video files with
// ffprobe.
package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/menta2k/adaptvideo/pkg/types"
)

var (
	// ErrProbeUnavailable is returned when ffprobe is not installed; callers
	// may proceed without a local check.
	ErrProbeUnavailable = errors.New("ffprobe not available")
	// ErrNoVideoStream is returned for files without a video stream.
	ErrNoVideoStream = errors.New("no video stream")
)

// Prober inspects files with ffprobe.
type Prober struct {
	binary   string
	lookPath func(string) (string, error)
	probe    func(path string) (string, error)
}

// New creates a prober using the ffprobe found on PATH.
func New() *Prober {
	return &Prober{
		binary:   "ffprobe",
		lookPath: exec.LookPath,
		probe: func(path string) (string, error) {
			return ffmpeg.Probe(path)
		},
	}
}

// Inspect returns the size, duration and frame rate of the first video
// stream in path.
func (p *Prober) Inspect(path string) (types.VideoInfo, error) {
	if _, err := p.lookPath(p.binary); err != nil {
		return types.VideoInfo{}, fmt.Errorf("%w: %v", ErrProbeUnavailable, err)
	}
	out, err := p.probe(path)
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Parse([]byte(out))
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Parse reads ffprobe's -show_streams -show_format JSON.
func Parse(data []byte) (types.VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return types.VideoInfo{}, fmt.Errorf("invalid ffprobe output: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		info := types.VideoInfo{Width: s.Width, Height: s.Height}
		info.FPS = parseRate(s.AvgFrameRate)
		if info.FPS == 0 {
			info.FPS = parseRate(s.RFrameRate)
		}
		info.Duration, _ = strconv.ParseFloat(out.Format.Duration, 64)
		if info.Duration == 0 {
			info.Duration, _ = strconv.ParseFloat(s.Duration, 64)
		}
		return info, nil
	}
	return types.VideoInfo{}, ErrNoVideoStream
}

// parseRate turns "30000/1001" or "25" into frames per second.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
