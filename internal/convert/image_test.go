package convert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// testImage returns a 4x2 image: left half red, right half transparent.
func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNormalizeImage_PassThrough(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, testImage())
	got, err := NormalizeImage(data, ".PNG")
	if err != nil {
		t.Fatalf("NormalizeImage() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("NormalizeImage() changed PNG data")
	}
}

func TestNormalizeImage_GIFFlattened(t *testing.T) {
	t.Parallel()

	pal := image.NewPaletted(image.Rect(0, 0, 4, 2), color.Palette{color.Transparent, color.NRGBA{R: 255, A: 255}})
	for x := 0; x < 2; x++ {
		pal.SetColorIndex(x, 0, 1)
		pal.SetColorIndex(x, 1, 1)
	}
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}

	got, err := NormalizeImage(buf.Bytes(), ".gif")
	if err != nil {
		t.Fatalf("NormalizeImage() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v, want 4x2", img.Bounds())
	}
	if r, g, b, a := img.At(3, 0).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("transparent pixel = (%d,%d,%d,%d), want opaque white", r, g, b, a)
	}
	if r, g, _, _ := img.At(0, 0).RGBA(); r != 0xffff || g != 0 {
		t.Errorf("red pixel changed: r=%d g=%d", r, g)
	}
}

func TestNormalizeImage_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeImage([]byte("not an image"), ".bmp"); err == nil {
		t.Error("NormalizeImage() error = nil, want decode error")
	}
}

func TestImageStrategy_BMP(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "pixel.bmp")
	if err := os.WriteFile(src, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := imageStrategy().Run(context.Background(), src)
	if err != nil {
		t.Fatalf("image strategy error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("image strategy did not produce a PDF")
	}
}
