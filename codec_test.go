package pdfit

// Notes:
// - Fixtures are generated with gofpdf at test time so no binary PDFs are
//   checked in. Each page carries the text "Page N".
// - These tests exercise pdfcpu for real; they need no external tools.

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func makePDF(t *testing.T, pages int) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 14)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, fmt.Sprintf("Page %d", i))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generating fixture: %v", err)
	}
	return buf.Bytes()
}

func decodeFixture(t *testing.T, c *PDFCodec, name string, pages int) *Document {
	t.Helper()

	doc, err := c.Decode(name, makePDF(t, pages))
	if err != nil {
		t.Fatalf("Decode(%s) error = %v", name, err)
	}
	return doc
}

// reencode encodes doc and decodes the result.
func reencode(t *testing.T, c *PDFCodec, doc *Document) *Document {
	t.Helper()

	data, err := c.Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out, err := c.Decode("out.pdf", data)
	if err != nil {
		t.Fatalf("Decode(encoded) error = %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestPDFCodec_Decode
// ---------------------------------------------------------------------------

func TestPDFCodec_Decode(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	doc := decodeFixture(t, c, "three.pdf", 3)

	if doc.PageCount() != 3 {
		t.Errorf("PageCount() = %d, want 3", doc.PageCount())
	}
	if doc.Encrypted() {
		t.Error("plain fixture reported encrypted")
	}
}

func TestPDFCodec_Decode_Garbage(t *testing.T) {
	t.Parallel()

	_, err := NewPDFCodec().Decode("junk.pdf", []byte("not a pdf"))
	if !errors.Is(err, ErrCodec) {
		t.Errorf("Decode() error = %v, want ErrCodec", err)
	}
}

// ---------------------------------------------------------------------------
// TestPDFCodec_Encode
// ---------------------------------------------------------------------------

func TestPDFCodec_Encode_UnchangedFastPath(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	data := makePDF(t, 2)
	doc, err := c.Decode("two.pdf", data)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("unchanged document should encode to its original bytes")
	}
}

func TestPDFCodec_Encode_Reorder(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	doc := decodeFixture(t, c, "three.pdf", 3)

	reordered, err := Reorder(doc, []int{2, 0, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	out := reencode(t, c, reordered)
	if out.PageCount() != 4 {
		t.Errorf("PageCount() = %d, want 4", out.PageCount())
	}
}

func TestPDFCodec_Encode_Merge(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	merged, err := Merge(decodeFixture(t, c, "a.pdf", 2), decodeFixture(t, c, "b.pdf", 3))
	if err != nil {
		t.Fatal(err)
	}

	out := reencode(t, c, merged)
	if out.PageCount() != 5 {
		t.Errorf("PageCount() = %d, want 5", out.PageCount())
	}
}

func TestPDFCodec_Encode_Rotate(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	doc := decodeFixture(t, c, "two.pdf", 2)

	rotated, err := Rotate(doc, PageIndexSet{1}, 90)
	if err != nil {
		t.Fatal(err)
	}
	out := reencode(t, c, rotated)

	want := []int{0, 90}
	for i, w := range want {
		p, _ := out.Page(i)
		if p.Rotation() != w {
			t.Errorf("page %d rotation = %d, want %d", i+1, p.Rotation(), w)
		}
	}

	// Rotating again composes with the rotation now stored in the file.
	again, err := Rotate(out, PageIndexSet{1}, 180)
	if err != nil {
		t.Fatal(err)
	}
	final := reencode(t, c, again)
	p, _ := final.Page(1)
	if p.Rotation() != 270 {
		t.Errorf("page 2 rotation = %d, want 270", p.Rotation())
	}
}

func TestPDFCodec_Encode_Split(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	parts, err := Split(decodeFixture(t, c, "three.pdf", 3))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range parts {
		out := reencode(t, c, p)
		if out.PageCount() != 1 {
			t.Errorf("part %d PageCount() = %d, want 1", i+1, out.PageCount())
		}
	}
}

// ---------------------------------------------------------------------------
// TestPDFCodec_EncryptDecrypt
// ---------------------------------------------------------------------------

func TestPDFCodec_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	e := NewEngine(WithCodec(c), WithBackend(nil))
	doc := decodeFixture(t, c, "two.pdf", 2)

	owner := "owner-secret"
	protected, err := e.Protect(doc, "user-secret", &owner)
	if err != nil {
		t.Fatalf("Protect() error = %v", err)
	}

	locked := reencode(t, c, protected)
	if !locked.Locked() || !locked.Encrypted() {
		t.Fatal("encrypted output should decode as locked")
	}

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		if _, err := e.Unprotect(locked, "guess"); !errors.Is(err, ErrWrongPassword) {
			t.Errorf("Unprotect() error = %v, want ErrWrongPassword", err)
		}
	})

	for _, pw := range []string{"user-secret", "owner-secret"} {
		t.Run("password "+pw, func(t *testing.T) {
			t.Parallel()

			plain, err := e.Unprotect(locked, pw)
			if err != nil {
				t.Fatalf("Unprotect() error = %v", err)
			}
			if plain.Encrypted() {
				t.Error("decrypted document still encrypted")
			}
			if plain.PageCount() != 2 {
				t.Errorf("PageCount() = %d, want 2", plain.PageCount())
			}
		})
	}
}

func TestPDFCodec_Decrypt_PendingProtection(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	doc := decodeFixture(t, c, "one.pdf", 1)
	protected, err := c.Encrypt(doc, "pw", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Decrypt(protected, "nope"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Decrypt() error = %v, want ErrWrongPassword", err)
	}
	plain, err := c.Decrypt(protected, "pw")
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if plain.Encrypted() {
		t.Error("document still encrypted")
	}
}

// ---------------------------------------------------------------------------
// TestPDFCodec_Optimize / TestExtractText
// ---------------------------------------------------------------------------

func TestPDFCodec_Optimize(t *testing.T) {
	t.Parallel()

	c := NewPDFCodec()
	doc := decodeFixture(t, c, "two.pdf", 2)

	data, err := c.Optimize(doc)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	out, err := c.Decode("opt.pdf", data)
	if err != nil {
		t.Fatalf("Decode(optimized) error = %v", err)
	}
	if out.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", out.PageCount())
	}
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	text, err := ExtractText(makePDF(t, 2))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	for _, want := range []string{"Page 1", "Page 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("ExtractText() = %q, missing %q", text, want)
		}
	}
}

func TestExtractText_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := ExtractText([]byte("nope")); !errors.Is(err, ErrReadPDF) {
		t.Errorf("ExtractText() error = %v, want ErrReadPDF", err)
	}
}
