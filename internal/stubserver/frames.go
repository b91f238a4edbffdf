package stubserver

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/adaptvideo/pkg/media"
	"github.com/menta2k/adaptvideo/pkg/types"
)

const (
	frameWidth  = 640
	frameHeight = 360
)

// subjects is the fixed analysis answer.
var subjects = []types.Subject{
	{Subject: "presenter", Center: types.Point{X: 0.3, Y: 0.45}, Importance: types.ImportanceHigh, Confidence: ptr(0.92)},
	{Subject: "product", Center: types.Point{X: 0.72, Y: 0.6}, Importance: types.ImportanceMedium, Confidence: ptr(0.81)},
	{Subject: "logo", Center: types.Point{X: 0.88, Y: 0.15}, Importance: types.ImportanceLow, Confidence: ptr(0.64)},
}

var subjectColors = []color.NRGBA{
	{230, 80, 60, 255},
	{60, 200, 120, 255},
	{250, 220, 70, 255},
}

func ptr(v float64) *float64 { return &v }

// frame renders frame i of a synthetic clip: a gradient backdrop with one
// disc per subject drifting slightly between frames.
func frame(i int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	shift := uint8(i * 20)
	for y := 0; y < frameHeight; y++ {
		for x := 0; x < frameWidth; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*255/frameWidth) / 3,
				G: uint8(y*255/frameHeight)/3 + shift/4,
				B: 90 + shift/2,
				A: 255,
			})
		}
	}

	for n, s := range subjects {
		cx := s.Center.X*frameWidth + 6*math.Sin(float64(i))
		cy := s.Center.Y * frameHeight
		disc(img, cx, cy, 28-float64(n)*6, subjectColors[n])
	}
	return img
}

func disc(img *image.NRGBA, cx, cy, r float64, c color.NRGBA) {
	b := img.Bounds()
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			if !image.Pt(x, y).In(b) {
				continue
			}
			if dx, dy := float64(x)-cx, float64(y)-cy; dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// thumbnailFor returns the subject close-up shown next to each analysis
// option.
func thumbnailFor(s types.Subject) (string, error) {
	src := frame(0)
	box := 100
	x := int(s.Center.X*frameWidth) - box/2
	y := int(s.Center.Y*frameHeight) - box/2
	r := image.Rect(x, y, x+box, y+box).Intersect(src.Bounds())
	return media.EncodeDataURL(imaging.Crop(src, r), "jpg", 80)
}

// previewFrames renders count frames cropped to the target around center
// and scaled down for display. adjusted reports whether any crop had to be
// shifted inwards.
func previewFrames(count int, center types.Point, targetW, targetH, maxW, maxH int) ([]string, bool, error) {
	out := make([]string, 0, count)
	adjusted := false
	for i := 0; i < count; i++ {
		var img image.Image = frame(i)
		if targetW > 0 && targetH > 0 {
			var shifted bool
			img, shifted = media.CropAround(img, center, targetW, targetH)
			adjusted = adjusted || shifted
		}
		s, err := media.EncodeDataURL(media.Fit(img, maxW, maxH), "jpg", 80)
		if err != nil {
			return nil, false, err
		}
		out = append(out, s)
	}
	return out, adjusted, nil
}

// averageCenter merges several subject positions into the single crop
// centre the service uses for a multi-subject crop.
func averageCenter(points []types.Point) types.Point {
	if len(points) == 0 {
		return types.Point{X: 0.5, Y: 0.5}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return types.Point{X: sx / n, Y: sy / n}
}
