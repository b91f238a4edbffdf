package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
)

// ErrNotDataURL is returned for strings without a base64 data URL header.
var ErrNotDataURL = errors.New("not a base64 data url")

// ParseDataURL splits a data:<mime>;base64,<payload> string.
func ParseDataURL(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data url payload: %w", err)
	}
	return strings.TrimSuffix(header, ";base64"), data, nil
}

// DecodeDataURL decodes the image carried by a data URL.
func DecodeDataURL(s string) (image.Image, error) {
	_, data, err := ParseDataURL(s)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// EncodeDataURL encodes img as a data URL in jpg, png or webp.
func EncodeDataURL(img image.Image, format string, quality int) (string, error) {
	var buf bytes.Buffer
	mime := "image/jpeg"

	switch strings.ToLower(format) {
	case "png":
		mime = "image/png"
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	case "webp":
		mime = "image/webp"
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return "", err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
