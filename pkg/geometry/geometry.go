// Package geometry computes the crop guide shown over a displayed thumbnail.
package geometry

import (
	"fmt"
	"math"

	"github.com/menta2k/adaptvideo/pkg/types"
)

// ComputeCropRect returns the largest rectangle with the target aspect ratio
// that fits the display, centred on the normalized point and shifted inward
// so it never leaves the display bounds.
func ComputeCropRect(center types.Point, displayWidth, displayHeight, targetAspectRatio float64) types.CropRect {
	displayAspectRatio := displayWidth / displayHeight

	var cropWidth, cropHeight float64
	if targetAspectRatio > displayAspectRatio {
		// Target is wider: use the full width
		cropWidth = displayWidth
		cropHeight = cropWidth / targetAspectRatio
	} else {
		// Target is taller: use the full height
		cropHeight = displayHeight
		cropWidth = cropHeight * targetAspectRatio
	}

	left := center.X*displayWidth - cropWidth/2
	top := center.Y*displayHeight - cropHeight/2

	return types.CropRect{
		Left:   clamp(left, 0, displayWidth-cropWidth),
		Top:    clamp(top, 0, displayHeight-cropHeight),
		Width:  cropWidth,
		Height: cropHeight,
	}
}

// Normalize converts a position in display pixels to a normalized point.
func Normalize(x, y, displayWidth, displayHeight float64) types.Point {
	if displayWidth <= 0 || displayHeight <= 0 {
		return types.Point{X: 0.5, Y: 0.5}
	}
	return types.Point{
		X: clamp(x/displayWidth, 0, 1),
		Y: clamp(y/displayHeight, 0, 1),
	}
}

// Denormalize converts a normalized point to display pixels.
func Denormalize(p types.Point, displayWidth, displayHeight float64) (float64, float64) {
	return p.X * displayWidth, p.Y * displayHeight
}

// FitWithin scales a video size to fit maxW x maxH while keeping its aspect
// ratio. Landscape sizes are bounded by width first, portrait sizes by height.
// Unknown sizes get the full box.
func FitWithin(width, height, maxW, maxH int) (int, int) {
	if width <= 0 || height <= 0 {
		return maxW, maxH
	}

	aspect := float64(width) / float64(height)
	var w, h float64
	if aspect > 1 {
		w = math.Min(float64(maxW), float64(width))
		h = w / aspect
		if h > float64(maxH) {
			h = float64(maxH)
			w = h * aspect
		}
	} else {
		h = math.Min(float64(maxH), float64(height))
		w = h * aspect
		if w > float64(maxW) {
			w = float64(maxW)
			h = w / aspect
		}
	}
	return int(math.Round(w)), int(math.Round(h))
}

// FormatAspect renders a size as "1.78:1".
func FormatAspect(width, height int) string {
	if width <= 0 || height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.2f:1", float64(width)/float64(height))
}

// clamp bounds v to [lo, hi]; lo wins when the range is empty.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
