package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Text page layout: A4 portrait, Arial 12, 10 mm per line.
const (
	textFont       = "Arial"
	textFontSize   = 12
	textLineHeight = 10
)

// DecodeText converts file content to UTF-8. A UTF-8 or UTF-16 byte order
// mark is honored and stripped; content that is not valid UTF-8 is read as
// Windows-1252.
func DecodeText(data []byte) (string, error) {
	var fallback transform.Transformer = unicode.UTF8.NewDecoder()
	if !utf8.Valid(data) && !hasUTF16BOM(data) {
		fallback = charmap.Windows1252.NewDecoder()
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}
	return string(out), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// TextPDF renders plain text as an A4 PDF, one paragraph per line with
// automatic wrapping and page breaks.
func TextPDF(text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont(textFont, "", textFontSize)
	pdf.AddPage()

	// Core fonts are cp1252; the translator maps what it can and
	// substitutes the rest.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		pdf.MultiCell(0, textLineHeight, tr(strings.ReplaceAll(line, "\t", "    ")), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// textStrategy converts a plain text file.
func textStrategy() Strategy {
	return Strategy{
		Name: "text",
		Run: func(_ context.Context, src string) ([]byte, error) {
			data, err := os.ReadFile(src) // #nosec G304 -- user-provided input path
			if err != nil {
				return nil, err
			}
			text, err := DecodeText(data)
			if err != nil {
				return nil, err
			}
			return TextPDF(text)
		},
	}
}

// asciiFallback replaces every non-ASCII rune with '?'.
func asciiFallback(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 127 {
			return '?'
		}
		return r
	}, s)
}

// asciiTextStrategy is the last resort for text: strip everything the
// core fonts might choke on.
func asciiTextStrategy() Strategy {
	return Strategy{
		Name: "text-ascii",
		Run: func(_ context.Context, src string) ([]byte, error) {
			data, err := os.ReadFile(src) // #nosec G304 -- user-provided input path
			if err != nil {
				return nil, err
			}
			return TextPDF(asciiFallback(string(data)))
		},
	}
}
