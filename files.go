package pdfit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-pdfit/internal/fileutil"
)

// Load reads and decodes the PDF at path.
func (e *Engine) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	doc, err := e.codec.Decode(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	e.logger.WithField("path", path).WithField("pages", doc.PageCount()).
		WithField("encrypted", doc.Encrypted()).Debug("loaded document")
	return doc, nil
}

// Open loads path and, when password is set and the file is encrypted,
// decrypts it. Without a password an encrypted file stays as loaded.
func (e *Engine) Open(path, password string) (*Document, error) {
	doc, err := e.Load(path)
	if err != nil {
		return nil, err
	}
	if password == "" || !doc.Encrypted() {
		return doc, nil
	}
	return e.Unprotect(doc, password)
}

// Save encodes doc and writes it atomically to path.
func (e *Engine) Save(doc *Document, path string) error {
	data, err := e.codec.Encode(doc)
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return nil
}

// MergeFiles concatenates inputs into output. Inputs are loaded concurrently.
func (e *Engine) MergeFiles(ctx context.Context, inputs []string, output, password string) (*Document, error) {
	docs := make([]*Document, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := e.Open(in, password)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			docs[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := Merge(docs...)
	if err != nil {
		return nil, err
	}
	if err := e.Save(merged, output); err != nil {
		return nil, err
	}
	return merged, nil
}

// SplitFile writes every page of input to outDir as <base>_page_<n>.pdf and
// returns the paths written. All pages are encoded before any file is written.
func (e *Engine) SplitFile(input, outDir, password string) ([]string, error) {
	doc, err := e.Open(input, password)
	if err != nil {
		return nil, err
	}
	parts, err := Split(doc)
	if err != nil {
		return nil, err
	}

	encoded := make([][]byte, len(parts))
	for i, p := range parts {
		if encoded[i], err = e.codec.Encode(p); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}

	paths := make([]string, len(parts))
	for i, data := range encoded {
		paths[i] = fileutil.SiblingPath(input, outDir, "_page_"+strconv.Itoa(i+1), ".pdf")
		if err := fileutil.WriteAtomic(paths[i], data); err != nil {
			return paths[:i], fmt.Errorf("%w: %w", ErrWritePDF, err)
		}
	}
	return paths, nil
}

// RotateFile rotates the pages selected by pageRange and writes output.
func (e *Engine) RotateFile(input, output, pageRange string, angle int, password string) (*Document, error) {
	doc, err := e.Open(input, password)
	if err != nil {
		return nil, err
	}
	indices, err := ParsePageRange(pageRange, doc.PageCount())
	if err != nil {
		return nil, err
	}
	rotated, err := Rotate(doc, indices, angle)
	if err != nil {
		return nil, err
	}
	if err := e.Save(rotated, output); err != nil {
		return nil, err
	}
	return rotated, nil
}

// ReorderFile rearranges pages following order and writes output. When strict
// is set the order must list exactly as many pages as the document has.
func (e *Engine) ReorderFile(input, output, order string, strict bool, password string) (*Document, error) {
	doc, err := e.Open(input, password)
	if err != nil {
		return nil, err
	}
	indices, err := ParsePageOrder(order, doc.PageCount())
	if err != nil {
		return nil, err
	}
	if strict {
		if err := RequirePermutationLength(indices, doc.PageCount()); err != nil {
			return nil, err
		}
	}
	reordered, err := Reorder(doc, indices)
	if err != nil {
		return nil, err
	}
	if err := e.Save(reordered, output); err != nil {
		return nil, err
	}
	return reordered, nil
}

// ProtectFile writes an encrypted copy of input.
func (e *Engine) ProtectFile(input, output, userPassword string, ownerPassword *string) error {
	if userPassword == "" {
		return ErrEmptyPassword
	}
	doc, err := e.Load(input)
	if err != nil {
		return err
	}
	protected, err := e.Protect(doc, userPassword, ownerPassword)
	if err != nil {
		return err
	}
	return e.Save(protected, output)
}

// UnprotectFile writes a decrypted copy of input.
func (e *Engine) UnprotectFile(input, output, password string) error {
	doc, err := e.Load(input)
	if err != nil {
		return err
	}
	plain, err := e.Unprotect(doc, password)
	if err != nil {
		return err
	}
	return e.Save(plain, output)
}

// CompressFile compresses input into output.
func (e *Engine) CompressFile(ctx context.Context, input, output string, quality Quality, password string) (*CompressResult, error) {
	if _, err := quality.Preset(); err != nil {
		return nil, err
	}
	doc, err := e.Open(input, password)
	if err != nil {
		return nil, err
	}
	res, err := e.Compress(ctx, doc, quality)
	if err != nil {
		return nil, err
	}
	if err := e.Save(res.Document, output); err != nil {
		return nil, err
	}
	return res, nil
}

// ExtractTextFile writes the plain text of input to output.
func (e *Engine) ExtractTextFile(input, output, password string) (string, error) {
	doc, err := e.Open(input, password)
	if err != nil {
		return "", err
	}
	if doc.Locked() {
		return "", ErrDocumentLocked
	}
	data, err := e.codec.Encode(doc)
	if err != nil {
		return "", err
	}
	text, err := ExtractText(data)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteAtomic(output, []byte(text)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return text, nil
}
