package convert

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-pdfit/internal/fileutil"
	"github.com/alnah/go-pdfit/internal/process"
)

// OfficeCandidates lists LibreOffice executable names, per platform.
func OfficeCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{
			"soffice.exe",
			`C:\Program Files\LibreOffice\program\soffice.exe`,
		}
	}
	if runtime.GOOS == "darwin" {
		return []string{"soffice", "/Applications/LibreOffice.app/Contents/MacOS/soffice"}
	}
	return []string{"soffice", "libreoffice"}
}

// Office converts documents with a headless LibreOffice.
type Office struct {
	bin    string
	runner process.Runner
}

// NewOffice creates an Office converter. An empty bin means PATH lookup.
func NewOffice(bin string, runner process.Runner) *Office {
	if runner == nil {
		runner = process.ExecRunner{}
	}
	return &Office{bin: bin, runner: runner}
}

// Binary resolves the soffice executable.
func (o *Office) Binary() (string, error) {
	if o.bin != "" {
		return o.bin, nil
	}
	bin, err := process.LookPath(OfficeCandidates()...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOfficeUnavailable, err)
	}
	return bin, nil
}

// ToPDF runs soffice --convert-to pdf into a private directory and returns
// the produced file.
func (o *Office) ToPDF(ctx context.Context, src string) ([]byte, error) {
	bin, err := o.Binary()
	if err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp("", "pdfit-office-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	// A private profile lets conversions run while a desktop instance is open.
	profile := "-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(outDir, "profile"))
	err = o.runner.Run(ctx, bin, profile, "--headless", "--convert-to", "pdf", "--outdir", outDir, src)
	if err != nil {
		if errors.Is(err, process.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrOfficeUnavailable, err)
		}
		return nil, err
	}

	out := filepath.Join(outDir, fileutil.BaseName(src)+".pdf")
	data, err := os.ReadFile(out) // #nosec G304 -- path inside our temp dir
	if err != nil {
		return nil, fmt.Errorf("%w: soffice produced no output: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

func officeStrategy(o *Office) Strategy {
	return Strategy{Name: "libreoffice", Run: o.ToPDF}
}

// DocxText returns the paragraphs of a .docx file, one per line.
func DocxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			paragraphs, err := zipXMLParagraphs(f)
			if err != nil {
				return "", err
			}
			if len(paragraphs) == 0 {
				return "", ErrEmptyInput
			}
			return strings.Join(paragraphs, "\n"), nil
		}
	}
	return "", fmt.Errorf("%w: word/document.xml missing", ErrUnsupportedFormat)
}

// PptxText returns the text of each slide of a .pptx file, in slide order,
// under a "Slide N" heading.
func PptxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening presentation: %w", err)
	}
	defer zr.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, "ppt/slides/slide")
		if name == f.Name || !strings.HasSuffix(name, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: n, file: f})
	}
	if len(slides) == 0 {
		return "", ErrEmptyInput
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sb strings.Builder
	for i, s := range slides {
		paragraphs, err := zipXMLParagraphs(s.file)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Slide %d\n", i+1)
		for _, p := range paragraphs {
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// zipXMLParagraphs streams an OOXML part and collects the text runs of each
// paragraph. WordprocessingML uses w:p/w:t and DrawingML uses a:p/a:t; both
// share the local names p and t.
func zipXMLParagraphs(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		paragraphs []string
		cur        strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				cur.WriteString("\t")
			case "br":
				cur.WriteString(" ")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(cur.String()); s != "" {
					paragraphs = append(paragraphs, s)
				}
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paragraphs, nil
}

// ooxmlTextStrategy renders the text of a docx or pptx when LibreOffice
// is missing. Layout, images and styles are lost.
func ooxmlTextStrategy(name string, extract func(string) (string, error), ext string) Strategy {
	return Strategy{
		Name: name,
		Run: func(_ context.Context, src string) ([]byte, error) {
			if !strings.EqualFold(filepath.Ext(src), ext) {
				return nil, fmt.Errorf("%w: text fallback needs %s", ErrUnsupportedFormat, ext)
			}
			text, err := extract(src)
			if err != nil {
				return nil, err
			}
			return TextPDF(text)
		},
	}
}
