// Package canvas turns the browser drawing layer into the persisted JPEG
// artifact: decode, stroke detection, alpha flatten, lossy encode.
package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

// JPEGQuality matches the original capture setting; drawings are line art and
// survive lossy encoding well at high quality.
const JPEGQuality = 95

// ErrEmptyDrawing is returned when no drawing bytes were provided at all.
var ErrEmptyDrawing = errors.New("empty drawing data")

// Decode reads an encoded drawing (PNG from the canvas, or any format the
// imaging codecs register).
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDrawing
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode drawing: %w", err)
	}
	return img, nil
}

// DecodeDataURL reads a drawing submitted as a base64 data URL like
// "data:image/png;base64,..." — raw base64 without the prefix is also accepted.
func DecodeDataURL(s string) (image.Image, error) {
	if idx := strings.Index(s, "base64,"); idx >= 0 {
		s = s[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode drawing base64: %w", err)
	}
	return Decode(data)
}

// HasInk reports whether the drawing layer holds any committed pixel. The
// canvas layer is fully transparent until the first stroke, so one pixel with
// non-zero alpha distinguishes "strokes drawn" from "no strokes drawn".
// Images without an alpha channel always count as drawn.
func HasInk(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				return true
			}
		}
	}
	return false
}

// Flatten composites the drawing over an opaque white background, removing
// the alpha channel before JPEG encoding (which has none). Flattening an
// already-opaque image leaves its RGB values untouched.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	white := imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(white, img, image.Pt(0, 0), 1.0)
}

// EncodeJPEG encodes the flattened drawing at the fixed quality setting.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
