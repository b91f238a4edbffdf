package media

import (
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const sheetGap = 4

var sheetBackground = color.NRGBA{24, 24, 24, 255}

// ContactSheet lays frames out side by side, each scaled to cellW pixels
// wide. It returns nil when there are no frames.
func ContactSheet(frames []image.Image, cellW int) image.Image {
	if len(frames) == 0 || cellW <= 0 {
		return nil
	}

	cells := make([]image.Image, 0, len(frames))
	cellH := 0
	for _, f := range frames {
		if f == nil {
			continue
		}
		c := imaging.Resize(f, cellW, 0, imaging.Lanczos)
		cellH = max(cellH, c.Bounds().Dy())
		cells = append(cells, c)
	}
	if len(cells) == 0 {
		return nil
	}

	width := len(cells)*cellW + (len(cells)+1)*sheetGap
	height := cellH + 2*sheetGap
	sheet := imaging.New(width, height, sheetBackground)

	x := sheetGap
	for _, c := range cells {
		y := sheetGap + (cellH-c.Bounds().Dy())/2
		sheet = imaging.Paste(sheet, c, image.Pt(x, y))
		x += cellW + sheetGap
	}
	return sheet
}

// Save writes img to path as jpg, png or webp.
func Save(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default:
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// Extension returns the file extension used for an output format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "webp":
		return ".webp"
	case "png":
		return ".png"
	default:
		return ".jpg"
	}
}
