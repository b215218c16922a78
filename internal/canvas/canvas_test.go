package canvas

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// layer builds an 8x8 transparent canvas layer with optional stroke pixels.
func layer(strokes ...image.Point) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for _, p := range strokes {
		img.SetNRGBA(p.X, p.Y, color.NRGBA{A: 255})
	}
	return img
}

func TestHasInk(t *testing.T) {
	if HasInk(layer()) {
		t.Fatal("blank layer reported as drawn")
	}
	if !HasInk(layer(image.Pt(4, 4))) {
		t.Fatal("single stroke pixel not detected")
	}
	// A partially transparent stroke still counts as committed.
	faint := layer()
	faint.SetNRGBA(1, 1, color.NRGBA{A: 10})
	if !HasInk(faint) {
		t.Fatal("faint stroke not detected")
	}
}

func TestFlatten_ProducesFullyOpaqueImage(t *testing.T) {
	img := layer(image.Pt(2, 2))
	img.SetNRGBA(5, 5, color.NRGBA{R: 255, A: 128}) // semi-transparent red

	flat := Flatten(img)
	b := flat.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if a := flat.NRGBAAt(x, y).A; a != 255 {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 255", x, y, a)
			}
		}
	}
	// Untouched pixels become the white background.
	if c := flat.NRGBAAt(0, 0); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Fatalf("background pixel = %v, want white", c)
	}
	// The semi-transparent red blends towards white but stays reddish.
	if c := flat.NRGBAAt(5, 5); c.R <= c.G || c.G != c.B {
		t.Fatalf("blended pixel = %v, want red over white", c)
	}
}

func TestFlatten_IdempotentOnOpaqueImage(t *testing.T) {
	flat := Flatten(layer(image.Pt(2, 2), image.Pt(3, 3)))
	again := Flatten(flat)

	b := flat.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if flat.NRGBAAt(x, y) != again.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed on re-flatten: %v -> %v",
					x, y, flat.NRGBAAt(x, y), again.NRGBAAt(x, y))
			}
		}
	}
}

func TestEncodeJPEG_RoundTrips(t *testing.T) {
	data, err := EncodeJPEG(Flatten(layer(image.Pt(1, 1))))
	if err != nil {
		t.Fatalf("EncodeJPEG error: %v", err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("decoding encoded JPEG: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 8 || got.Dy() != 8 {
		t.Fatalf("bounds = %v, want 8x8", got)
	}
}

func TestDecodeDataURL(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, layer(image.Pt(3, 3))); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	for _, input := range []string{
		"data:image/png;base64," + encoded,
		encoded, // raw base64 without prefix
	} {
		img, err := DecodeDataURL(input)
		if err != nil {
			t.Fatalf("DecodeDataURL error: %v", err)
		}
		if !HasInk(img) {
			t.Fatal("decoded drawing lost its stroke")
		}
	}
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	if _, err := DecodeDataURL("data:image/png;base64,!!!not-base64!!!"); err == nil {
		t.Fatal("invalid base64 accepted")
	}
	if _, err := Decode(nil); err == nil {
		t.Fatal("empty drawing accepted")
	}
}
