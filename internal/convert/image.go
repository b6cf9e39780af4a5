package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/bmp" // register BMP decoder
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// NormalizeImage returns image data pdfcpu can embed. JPEG and PNG pass
// through unchanged; other formats are decoded, flattened onto white and
// re-encoded as PNG.
func NormalizeImage(data []byte, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, flatten(img)); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten draws img over a white background, dropping transparency.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// ImagePDF embeds image data on a single page sized to the image.
func ImagePDF(data []byte) ([]byte, error) {
	imp := pdfcpu.DefaultImportConfig()
	conf := model.NewDefaultConfiguration()

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(data)}, imp, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

func imageStrategy() Strategy {
	return Strategy{
		Name: "image",
		Run: func(_ context.Context, src string) ([]byte, error) {
			data, err := os.ReadFile(src) // #nosec G304 -- user-provided input path
			if err != nil {
				return nil, err
			}
			norm, err := NormalizeImage(data, filepath.Ext(src))
			if err != nil {
				return nil, err
			}
			return ImagePDF(norm)
		},
	}
}
