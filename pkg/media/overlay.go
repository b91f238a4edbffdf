package media

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/types"
)

var (
	guideColor  = color.NRGBA{255, 204, 0, 255}
	markerColor = color.NRGBA{255, 0, 0, 255}
	shadeColor  = color.NRGBA{0, 0, 0, 110}
)

// DrawSelection draws the crop guide and centre marker onto a copy of img.
// rect is in display pixels of a displayW x displayH display and is scaled
// to the image. The area outside the guide is darkened. A zero rect draws
// only the marker; a nil center draws only the guide.
func DrawSelection(img image.Image, rect types.CropRect, displayW, displayH float64, center *types.Point) image.Image {
	out := imaging.Clone(img)
	w := out.Bounds().Dx()
	h := out.Bounds().Dy()
	stroke := int(math.Max(2, 0.004*float64(min(w, h))))
	cross := int(math.Max(4, 0.02*float64(min(w, h))))

	if rect.Width > 0 && rect.Height > 0 && displayW > 0 && displayH > 0 {
		sx := float64(w) / displayW
		sy := float64(h) / displayH
		box := image.Rect(
			int(rect.Left*sx+0.5),
			int(rect.Top*sy+0.5),
			int(rect.Right()*sx+0.5),
			int(rect.Bottom()*sy+0.5),
		).Intersect(out.Bounds())

		shadeOutside(out, box)
		drawBox(out, box, guideColor, stroke)
	}

	if center != nil {
		px, py := geometry.Denormalize(*center, float64(w), float64(h))
		x, y := int(px+0.5), int(py+0.5)
		for s := -stroke / 2; s <= stroke/2; s++ {
			drawHLine(out, y+s, x-cross, x+cross, markerColor)
			drawVLine(out, x+s, y-cross, y+cross, markerColor)
		}
	}

	return out
}

func shadeOutside(img *image.NRGBA, keep image.Rectangle) {
	b := img.Bounds()
	a := float64(shadeColor.A) / 255
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if image.Pt(x, y).In(keep) {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(float64(img.Pix[i+0]) * (1 - a))
			img.Pix[i+1] = uint8(float64(img.Pix[i+1]) * (1 - a))
			img.Pix[i+2] = uint8(float64(img.Pix[i+2]) * (1 - a))
		}
	}
}

func drawBox(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	if r.Empty() {
		return
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	b := img.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0 = max(x0, b.Min.X)
	x1 = min(x1, b.Max.X)
	for x := x0; x < x1; x++ {
		img.SetNRGBA(x, y, c)
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	y0 = max(y0, b.Min.Y)
	y1 = min(y1, b.Max.Y)
	for y := y0; y < y1; y++ {
		img.SetNRGBA(x, y, c)
	}
}
