package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/menta2k/adaptvideo/pkg/types"
)

const eps = 1e-9

func TestComputeCropRect_StaysInsideDisplay(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		center := types.Point{X: rng.Float64(), Y: rng.Float64()}
		w := 1 + rng.Float64()*1999
		h := 1 + rng.Float64()*1999
		aspect := 0.1 + rng.Float64()*5

		r := ComputeCropRect(center, w, h, aspect)

		if r.Left < -eps || r.Top < -eps {
			t.Fatalf("negative origin for center=%v display=%.2fx%.2f aspect=%.3f: %+v", center, w, h, aspect, r)
		}
		if r.Right() > w+eps || r.Bottom() > h+eps {
			t.Fatalf("rect overflows display %.2fx%.2f for center=%v aspect=%.3f: %+v", w, h, center, aspect, r)
		}
		assert.InDelta(t, aspect, r.Width/r.Height, 1e-6)
	}
}

func TestComputeCropRect_Idempotent(t *testing.T) {
	center := types.Point{X: 0.31, Y: 0.77}
	a := ComputeCropRect(center, 640, 360, 9.0/16.0)
	b := ComputeCropRect(center, 640, 360, 9.0/16.0)
	assert.Equal(t, a, b)
}

func TestComputeCropRect_EdgeClamp(t *testing.T) {
	// 9:16 on a 16:9 display is narrower than the display
	r := ComputeCropRect(types.Point{X: 0, Y: 0}, 640, 360, 9.0/16.0)
	assert.Equal(t, 0.0, r.Left)
	assert.Equal(t, 0.0, r.Top)
	assert.InDelta(t, 360.0, r.Height, eps)
	assert.InDelta(t, 202.5, r.Width, eps)

	r = ComputeCropRect(types.Point{X: 1, Y: 1}, 640, 360, 9.0/16.0)
	assert.InDelta(t, 640-202.5, r.Left, eps)
	assert.Equal(t, 0.0, r.Top)
}

func TestComputeCropRect_WiderTargetUsesFullWidth(t *testing.T) {
	// 3840x1526 banner on a 16:9 display
	aspect := 3840.0 / 1526.0
	r := ComputeCropRect(types.Point{X: 0.5, Y: 0.5}, 640, 360, aspect)
	assert.InDelta(t, 640.0, r.Width, eps)
	assert.InDelta(t, 640.0/aspect, r.Height, eps)
	assert.Equal(t, 0.0, r.Left)
	assert.InDelta(t, (360-r.Height)/2, r.Top, eps)
}

func TestComputeCropRect_CentredWhenRoomAllows(t *testing.T) {
	r := ComputeCropRect(types.Point{X: 0.5, Y: 0.5}, 1000, 500, 1)
	assert.InDelta(t, 250.0, r.Left, eps)
	assert.InDelta(t, 0.0, r.Top, eps)
	assert.InDelta(t, 500.0, r.Width, eps)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		w, h   float64
		expect types.Point
	}{
		{"middle", 320, 180, 640, 360, types.Point{X: 0.5, Y: 0.5}},
		{"origin", 0, 0, 640, 360, types.Point{X: 0, Y: 0}},
		{"outside is clamped", 700, -5, 640, 360, types.Point{X: 1, Y: 0}},
		{"degenerate display", 10, 10, 0, 0, types.Point{X: 0.5, Y: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.x, tt.y, tt.w, tt.h)
			assert.InDelta(t, tt.expect.X, got.X, eps)
			assert.InDelta(t, tt.expect.Y, got.Y, eps)
		})
	}
}

func TestDenormalizeRoundTrip(t *testing.T) {
	p := Normalize(123, 45, 640, 360)
	x, y := Denormalize(p, 640, 360)
	assert.InDelta(t, 123.0, x, 1e-6)
	assert.InDelta(t, 45.0, y, 1e-6)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape 1080p", 1920, 1080, 400, 225},
		{"portrait 9:16", 1080, 1920, 169, 300},
		{"ultra wide banner", 3840, 1526, 400, 159},
		{"small video keeps size", 320, 240, 320, 240},
		{"square", 1080, 1080, 300, 300},
		{"unknown size", 0, 0, 400, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.w, tt.h, 400, 300)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestFormatAspect(t *testing.T) {
	assert.Equal(t, "1.78:1", FormatAspect(1920, 1080))
	assert.Equal(t, "0.56:1", FormatAspect(1080, 1920))
	assert.Equal(t, "unknown", FormatAspect(0, 1080))
}
