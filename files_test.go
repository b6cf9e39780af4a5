package pdfit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir, name string, pages int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, makePDF(t, pages), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEngine() *Engine {
	return NewEngine(WithBackend(nil))
}

func TestEngine_Load_Missing(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine().Load(filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, ErrReadInput) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrReadInput wrapping ErrNotExist", err)
	}
}

func TestEngine_MergeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFixture(t, dir, "a.pdf", 1)
	b := writeFixture(t, dir, "b.pdf", 2)
	out := filepath.Join(dir, "merged.pdf")

	e := newTestEngine()
	if _, err := e.MergeFiles(context.Background(), []string{a, b}, out, ""); err != nil {
		t.Fatalf("MergeFiles() error = %v", err)
	}

	got, err := e.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.PageCount() != 3 {
		t.Errorf("merged PageCount() = %d, want 3", got.PageCount())
	}
}

func TestEngine_MergeFiles_MissingInputWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFixture(t, dir, "a.pdf", 1)
	out := filepath.Join(dir, "merged.pdf")

	_, err := newTestEngine().MergeFiles(context.Background(), []string{a, filepath.Join(dir, "nope.pdf")}, out, "")
	if err == nil {
		t.Fatal("MergeFiles() error = nil")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output written despite error")
	}
}

func TestEngine_SplitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFixture(t, dir, "scan.pdf", 3)
	outDir := filepath.Join(dir, "pages")

	paths, err := newTestEngine().SplitFile(in, outDir, "")
	if err != nil {
		t.Fatalf("SplitFile() error = %v", err)
	}

	want := []string{"scan_page_1.pdf", "scan_page_2.pdf", "scan_page_3.pdf"}
	if len(paths) != len(want) {
		t.Fatalf("SplitFile() wrote %d files, want %d", len(paths), len(want))
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Errorf("path %d = %s, want %s", i, filepath.Base(p), want[i])
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output %s: %v", p, err)
		}
	}
}

func TestEngine_RotateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFixture(t, dir, "in.pdf", 5)
	out := filepath.Join(dir, "in_rotated.pdf")

	e := newTestEngine()
	if _, err := e.RotateFile(in, out, "2-4,5", 180, ""); err != nil {
		t.Fatalf("RotateFile() error = %v", err)
	}

	got, err := e.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < got.PageCount(); i++ {
		p, _ := got.Page(i)
		want := 180
		if i == 0 {
			want = 0
		}
		if p.Rotation() != want {
			t.Errorf("page %d rotation = %d, want %d", i+1, p.Rotation(), want)
		}
	}
}

func TestEngine_RotateFile_InvalidRangeWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFixture(t, dir, "in.pdf", 2)
	out := filepath.Join(dir, "out.pdf")

	_, err := newTestEngine().RotateFile(in, out, "3", 90, "")
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("RotateFile() error = %v, want ErrOutOfRange", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output written despite validation failure")
	}
}

func TestEngine_ReorderFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFixture(t, dir, "in.pdf", 3)

	tests := []struct {
		name      string
		order     string
		strict    bool
		wantPages int
		wantErr   error
	}{
		{name: "permutation", order: "3,1,2", strict: true, wantPages: 3},
		{name: "strict rejects short order", order: "1,2", strict: true, wantErr: ErrOrderLength},
		{name: "permissive accepts short order", order: "2", strict: false, wantPages: 1},
		{name: "out of range", order: "1,2,4", strict: true, wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".pdf")
			e := newTestEngine()
			_, err := e.ReorderFile(in, out, tt.order, tt.strict, "")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReorderFile() error = %v, want %v", err, tt.wantErr)
				}
				if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
					t.Error("output written despite error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReorderFile() error = %v", err)
			}
			got, err := e.Load(out)
			if err != nil {
				t.Fatal(err)
			}
			if got.PageCount() != tt.wantPages {
				t.Errorf("PageCount() = %d, want %d", got.PageCount(), tt.wantPages)
			}
		})
	}
}

func TestEngine_ProtectUnprotectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFixture(t, dir, "in.pdf", 2)
	protected := filepath.Join(dir, "in_protected.pdf")
	decrypted := filepath.Join(dir, "in_decrypted.pdf")

	e := newTestEngine()
	if err := e.ProtectFile(in, protected, "", nil); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("ProtectFile(empty) error = %v, want ErrEmptyPassword", err)
	}
	if err := e.ProtectFile(in, protected, "s3cret", nil); err != nil {
		t.Fatalf("ProtectFile() error = %v", err)
	}

	if err := e.UnprotectFile(in, decrypted, "x"); !errors.Is(err, ErrNotEncrypted) {
		t.Errorf("UnprotectFile(plain) error = %v, want ErrNotEncrypted", err)
	}
	if err := e.UnprotectFile(protected, decrypted, "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("UnprotectFile(wrong) error = %v, want ErrWrongPassword", err)
	}
	if err := e.UnprotectFile(protected, decrypted, "s3cret"); err != nil {
		t.Fatalf("UnprotectFile() error = %v", err)
	}

	got, err := e.Load(decrypted)
	if err != nil {
		t.Fatal(err)
	}
	if got.Encrypted() || got.PageCount() != 2 {
		t.Errorf("decrypted: encrypted=%v pages=%d", got.Encrypted(), got.PageCount())
	}

	// Page operations on the protected file work once the password is given.
	rotated := filepath.Join(dir, "rotated.pdf")
	if _, err := e.RotateFile(protected, rotated, "1", 90, ""); !errors.Is(err, ErrDocumentLocked) {
		t.Errorf("RotateFile(locked) error = %v, want ErrDocumentLocked", err)
	}
	if _, err := e.RotateFile(protected, rotated, "1", 90, "s3cret"); err != nil {
		t.Errorf("RotateFile(with password) error = %v", err)
	}
}

func TestEngine_CompressFile_Fallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFixture(t, dir, "in.pdf", 2)
	out := filepath.Join(dir, "in_compressed.pdf")

	res, err := newTestEngine().CompressFile(context.Background(), in, out, QualityMedium, "")
	if err != nil {
		t.Fatalf("CompressFile() error = %v", err)
	}
	if res.Status == StatusCompressed {
		t.Error("no backend configured, status should not be compressed")
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestEngine_ExtractTextFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFixture(t, dir, "in.pdf", 1)
	out := filepath.Join(dir, "in.txt")

	if _, err := newTestEngine().ExtractTextFile(in, out, ""); err != nil {
		t.Fatalf("ExtractTextFile() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Page 1") {
		t.Errorf("extracted text = %q, want it to contain Page 1", data)
	}
}
