package pdfit

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PDFCodec implements Codec with pdfcpu.
type PDFCodec struct {
	aes       bool
	keyLength int
}

// Compile-time interface check.
var _ Codec = (*PDFCodec)(nil)

// PDFCodecOption configures a PDFCodec.
type PDFCodecOption func(*PDFCodec)

// WithEncryption selects the cipher used by Encrypt. keyLength is 40 or 128
// for RC4, and 128 or 256 for AES.
func WithEncryption(aes bool, keyLength int) PDFCodecOption {
	return func(c *PDFCodec) {
		c.aes = aes
		if keyLength > 0 {
			c.keyLength = keyLength
		}
	}
}

// NewPDFCodec returns a pdfcpu-backed codec using AES-256 encryption.
func NewPDFCodec(opts ...PDFCodecOption) *PDFCodec {
	// pdfcpu would otherwise create a config directory in the user's home.
	disableConfigDir.Do(api.DisableConfigDir)

	c := &PDFCodec{aes: true, keyLength: 256}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PDFCodec) config(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	conf.EncryptUsingAES = c.aes
	conf.EncryptKeyLength = c.keyLength
	return conf
}

// Decode reads data into a Document. Files that need a password to open
// produce a locked Document.
func (c *PDFCodec) Decode(name string, data []byte) (*Document, error) {
	return c.decode(name, data, "")
}

func (c *PDFCodec) decode(name string, data []byte, password string) (*Document, error) {
	ctx, err := api.ReadAndValidate(bytes.NewReader(data), c.config(password))
	if err != nil {
		if isPasswordError(err) {
			return newLockedDocument(newSource(name, data, password, nil)), nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCodec, name, err)
	}

	rotations := make([]int, ctx.PageCount)
	for i := range rotations {
		_, _, inherited, err := ctx.PageDict(i+1, false)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d of %s: %v", ErrCodec, i+1, name, err)
		}
		if inherited != nil {
			rotations[i] = normalizeAngle(inherited.Rotate)
		}
	}

	src := newSource(name, data, password, rotations)
	return newDocument(src, ctx.Encrypt != nil), nil
}

// Encode serializes doc. An unmodified document returns its source bytes.
func (c *PDFCodec) Encode(doc *Document) ([]byte, error) {
	if src, ok := doc.unchanged(); ok {
		return src.data, nil
	}
	if doc.PageCount() == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrCodec)
	}

	data, err := c.collect(doc.pages)
	if err != nil {
		return nil, err
	}

	data, err = c.applyRotations(data, doc.pages)
	if err != nil {
		return nil, err
	}

	if doc.protect != nil {
		conf := c.config("")
		conf.UserPW = doc.protect.user
		conf.OwnerPW = doc.protect.owner
		var buf bytes.Buffer
		if err := api.Encrypt(bytes.NewReader(data), &buf, conf); err != nil {
			return nil, fmt.Errorf("%w: encrypting: %v", ErrCodec, err)
		}
		data = buf.Bytes()
	}
	return data, nil
}

// collect builds a file holding pages in order. Consecutive pages from the
// same source are extracted together, then the parts are merged.
func (c *PDFCodec) collect(pages []Page) ([]byte, error) {
	type run struct {
		src   *Source
		pages []string
	}

	var runs []run
	for _, p := range pages {
		n := strconv.Itoa(p.number)
		if len(runs) > 0 && runs[len(runs)-1].src == p.source {
			runs[len(runs)-1].pages = append(runs[len(runs)-1].pages, n)
			continue
		}
		runs = append(runs, run{src: p.source, pages: []string{n}})
	}

	parts := make([]io.ReadSeeker, 0, len(runs))
	for _, r := range runs {
		var buf bytes.Buffer
		if err := api.Collect(bytes.NewReader(r.src.data), &buf, r.pages, c.config(r.src.password)); err != nil {
			return nil, fmt.Errorf("%w: collecting pages from %s: %v", ErrCodec, r.src.name, err)
		}
		parts = append(parts, bytes.NewReader(buf.Bytes()))
	}

	if len(parts) == 1 {
		return io.ReadAll(parts[0])
	}

	var merged bytes.Buffer
	if err := api.MergeRaw(parts, &merged, false, c.config("")); err != nil {
		return nil, fmt.Errorf("%w: merging: %v", ErrCodec, err)
	}
	return merged.Bytes(), nil
}

// applyRotations turns each output page by the difference between its
// requested rotation and the rotation stored in its source.
func (c *PDFCodec) applyRotations(data []byte, pages []Page) ([]byte, error) {
	byDelta := make(map[int][]string)
	for i, p := range pages {
		delta := normalizeAngle(p.rotation - p.source.baseRotation(p.number))
		if delta != 0 {
			byDelta[delta] = append(byDelta[delta], strconv.Itoa(i+1))
		}
	}

	deltas := make([]int, 0, len(byDelta))
	for d := range byDelta {
		deltas = append(deltas, d)
	}
	sort.Ints(deltas)

	for _, d := range deltas {
		var buf bytes.Buffer
		if err := api.Rotate(bytes.NewReader(data), &buf, d, byDelta[d], c.config("")); err != nil {
			return nil, fmt.Errorf("%w: rotating pages by %d: %v", ErrCodec, d, err)
		}
		data = buf.Bytes()
	}
	return data, nil
}

// Encrypt marks doc for encryption on Encode. Without an owner password the
// user password is used for both.
func (c *PDFCodec) Encrypt(doc *Document, userPassword string, ownerPassword *string) (*Document, error) {
	owner := userPassword
	if ownerPassword != nil && *ownerPassword != "" {
		owner = *ownerPassword
	}
	out := doc.withPages(doc.Pages())
	out.protect = &protection{user: userPassword, owner: owner}
	return out, nil
}

// Decrypt opens doc with password and returns an unencrypted Document.
func (c *PDFCodec) Decrypt(doc *Document, password string) (*Document, error) {
	if doc.protect != nil && doc.locked == nil && !doc.encrypted {
		if password != doc.protect.user && password != doc.protect.owner {
			return nil, ErrWrongPassword
		}
		out := doc.withPages(doc.Pages())
		out.protect = nil
		return out, nil
	}

	name := sourceName(doc)
	data, err := c.Encode(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &buf, c.config(password)); err != nil {
		if isPasswordError(err) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("%w: decrypting %s: %v", ErrCodec, name, err)
	}

	out, err := c.decode(name, buf.Bytes(), "")
	if err != nil {
		return nil, err
	}
	if out.Locked() {
		return nil, ErrWrongPassword
	}
	return out, nil
}

// Optimize re-serializes doc with pdfcpu's optimizer.
func (c *PDFCodec) Optimize(doc *Document) ([]byte, error) {
	data, err := c.Encode(doc)
	if err != nil {
		return nil, err
	}

	password := ""
	if src, ok := doc.unchanged(); ok {
		password = src.password
	}

	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, c.config(password)); err != nil {
		return nil, fmt.Errorf("%w: optimizing: %v", ErrCodec, err)
	}
	return buf.Bytes(), nil
}

// isPasswordError reports whether a pdfcpu error means the password was
// missing or wrong. pdfcpu does not export a stable sentinel for this.
func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password")
}
