package media

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// CropAround crops img to the aspect ratio of targetW x targetH around
// center. adjusted is true when the frame edge forced the crop away from
// the requested centre.
func CropAround(img image.Image, center types.Point, targetW, targetH int) (image.Image, bool) {
	b := img.Bounds()
	fw, fh := float64(b.Dx()), float64(b.Dy())
	if targetW <= 0 || targetH <= 0 || fw == 0 || fh == 0 {
		return img, false
	}

	rect := geometry.ComputeCropRect(center, fw, fh, float64(targetW)/float64(targetH))
	wantX, wantY := geometry.Denormalize(center, fw, fh)
	gotX := rect.Left + rect.Width/2
	gotY := rect.Top + rect.Height/2
	adjusted := math.Abs(gotX-wantX) > 0.5 || math.Abs(gotY-wantY) > 0.5

	r := image.Rect(
		b.Min.X+int(rect.Left+0.5),
		b.Min.Y+int(rect.Top+0.5),
		b.Min.X+int(rect.Right()+0.5),
		b.Min.Y+int(rect.Bottom()+0.5),
	).Intersect(b)
	if r.Empty() {
		return img, adjusted
	}
	return imaging.Crop(img, r), adjusted
}

// Fit scales img down to fit within maxW x maxH; smaller images are
// returned unchanged.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}
