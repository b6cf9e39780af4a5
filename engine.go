package pdfit

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Codec performs byte-level PDF work on behalf of the Engine.
type Codec interface {
	// Decode parses PDF bytes. Encrypted input that cannot be opened without
	// a password yields a locked Document rather than an error.
	Decode(name string, data []byte) (*Document, error)
	// Encode serializes a Document, applying rotations and pending passwords.
	Encode(doc *Document) ([]byte, error)
	// Encrypt returns a copy of doc that will be written password protected.
	// A nil owner password leaves the choice of owner password to the codec.
	Encrypt(doc *Document, userPassword string, ownerPassword *string) (*Document, error)
	// Decrypt removes encryption using password, which may be the user or
	// owner password. Returns ErrWrongPassword when it is rejected.
	Decrypt(doc *Document, password string) (*Document, error)
	// Optimize re-serializes doc with stream and object deduplication.
	Optimize(doc *Document) ([]byte, error)
}

// Engine runs page-set operations that need a codec or compression backend.
// Pure page operations (Merge, Split, Rotate, Reorder) are package functions.
type Engine struct {
	codec   Codec
	backend CompressionBackend
	logger  logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCodec sets the PDF codec. Defaults to the pdfcpu codec.
func WithCodec(c Codec) Option {
	return func(e *Engine) {
		e.codec = c
	}
}

// WithBackend sets the compression backend. Defaults to Ghostscript.
// A nil backend makes Compress go straight to codec re-serialization.
func WithBackend(b CompressionBackend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// WithLogger sets the logger used for debug output. Defaults to a discarding logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		codec:   NewPDFCodec(),
		backend: NewGhostscript(),
		logger:  discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge concatenates the pages of docs in argument order. The result
// keeps the pending protection of the first input that has one, as Split
// keeps it on every part.
func Merge(docs ...*Document) (*Document, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	total := 0
	for i, d := range docs {
		if d.Locked() {
			return nil, fmt.Errorf("%w: input %d", ErrDocumentLocked, i+1)
		}
		total += d.PageCount()
	}

	merged := &Document{pages: make([]Page, 0, total)}
	for _, d := range docs {
		merged.pages = append(merged.pages, d.pages...)
		if merged.protect == nil {
			merged.protect = d.protect
		}
	}
	return merged, nil
}

// Split returns one single-page document per page, in order.
func Split(doc *Document) ([]*Document, error) {
	if doc.Locked() {
		return nil, ErrDocumentLocked
	}

	out := make([]*Document, len(doc.pages))
	for i, p := range doc.pages {
		out[i] = doc.withPages([]Page{p})
	}
	return out, nil
}

// Rotate turns the pages listed in indices clockwise by angle degrees.
// angle must be 90, 180 or 270. Each page is rotated once even if its
// index appears more than once.
func Rotate(doc *Document, indices PageIndexSet, angle int) (*Document, error) {
	if doc.Locked() {
		return nil, ErrDocumentLocked
	}
	switch angle {
	case 90, 180, 270:
	default:
		return nil, fmt.Errorf("%w: %d (must be 90, 180 or 270)", ErrInvalidAngle, angle)
	}
	if err := checkIndices(indices, doc.PageCount()); err != nil {
		return nil, err
	}

	pages := doc.Pages()
	for i := range pages {
		if indices.Contains(i) {
			pages[i] = pages[i].rotated(angle)
		}
	}
	return doc.withPages(pages), nil
}

// Reorder returns a document whose i-th page is doc's page order[i].
// order may omit or repeat pages. Nothing is produced if any index is invalid.
func Reorder(doc *Document, order []int) (*Document, error) {
	if doc.Locked() {
		return nil, ErrDocumentLocked
	}
	if err := checkIndices(order, doc.PageCount()); err != nil {
		return nil, err
	}

	pages := make([]Page, len(order))
	for i, idx := range order {
		pages[i] = doc.pages[idx]
	}
	return doc.withPages(pages), nil
}

func checkIndices(indices []int, pageCount int) error {
	for _, idx := range indices {
		if idx < 0 || idx >= pageCount {
			return fmt.Errorf("%w: %d (document has %d pages)", ErrIndexOutOfRange, idx, pageCount)
		}
	}
	return nil
}

// Protect returns a copy of doc that will be written encrypted.
// When ownerPassword is nil the codec picks the owner password.
func (e *Engine) Protect(doc *Document, userPassword string, ownerPassword *string) (*Document, error) {
	if userPassword == "" {
		return nil, ErrEmptyPassword
	}
	if doc.Locked() {
		return nil, ErrDocumentLocked
	}

	out, err := e.codec.Encrypt(doc, userPassword, ownerPassword)
	if err != nil {
		return nil, err
	}
	e.logger.WithField("owner_password", ownerPassword != nil).Debug("document protected")
	return out, nil
}

// Unprotect removes encryption from doc.
func (e *Engine) Unprotect(doc *Document, password string) (*Document, error) {
	if !doc.Encrypted() {
		return nil, ErrNotEncrypted
	}

	out, err := e.codec.Decrypt(doc, password)
	if err != nil {
		return nil, err
	}
	e.logger.WithField("pages", out.PageCount()).Debug("document decrypted")
	return out, nil
}
