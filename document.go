package pdfit

// Source holds the raw bytes a set of pages was decoded from.
// Sources are immutable and may be shared by any number of Documents.
type Source struct {
	name     string
	data     []byte
	password string
	// rotations holds the /Rotate value stored in the file for each page.
	rotations []int
}

// newSource creates a Source with one base rotation per page.
func newSource(name string, data []byte, password string, rotations []int) *Source {
	return &Source{
		name:      name,
		data:      data,
		password:  password,
		rotations: rotations,
	}
}

// Name returns the display name the source was loaded under.
func (s *Source) Name() string { return s.name }

// Size returns the encoded size of the source in bytes.
func (s *Source) Size() int { return len(s.data) }

// PageCount returns the number of pages in the source file.
func (s *Source) PageCount() int { return len(s.rotations) }

// baseRotation returns the rotation recorded in the file for a 1-based page.
func (s *Source) baseRotation(number int) int {
	if number < 1 || number > len(s.rotations) {
		return 0
	}
	return s.rotations[number-1]
}

// Page is a handle to one page of a Source plus its display rotation.
type Page struct {
	source   *Source
	number   int
	rotation int
}

// Source returns the source the page belongs to.
func (p Page) Source() *Source { return p.source }

// Number returns the 1-based page number within its source.
func (p Page) Number() int { return p.number }

// Rotation returns the page rotation in degrees: 0, 90, 180 or 270.
func (p Page) Rotation() int { return p.rotation }

// rotated returns a copy of p turned clockwise by delta degrees.
func (p Page) rotated(delta int) Page {
	p.rotation = normalizeAngle(p.rotation + delta)
	return p
}

// modified reports whether the page rotation differs from the file.
func (p Page) modified() bool {
	return p.rotation != normalizeAngle(p.source.baseRotation(p.number))
}

// protection holds passwords to apply when the document is encoded.
type protection struct {
	user  string
	owner string
}

// Document is an ordered collection of pages.
// Operations never mutate a Document; they return a new one.
type Document struct {
	pages     []Page
	encrypted bool
	// locked is set when the document was read without the password needed
	// to access its pages.
	locked  *Source
	protect *protection
}

// newDocument returns a Document over every page of src, in file order.
func newDocument(src *Source, encrypted bool) *Document {
	pages := make([]Page, src.PageCount())
	for i := range pages {
		pages[i] = Page{source: src, number: i + 1, rotation: normalizeAngle(src.baseRotation(i + 1))}
	}
	return &Document{pages: pages, encrypted: encrypted}
}

// newLockedDocument returns an encrypted Document whose pages are unreadable.
func newLockedDocument(src *Source) *Document {
	return &Document{encrypted: true, locked: src}
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.pages) }

// Encrypted reports whether the document is, or will be written, encrypted.
func (d *Document) Encrypted() bool { return d.encrypted || d.protect != nil }

// Locked reports whether the document needs a password before its pages
// can be used.
func (d *Document) Locked() bool { return d.locked != nil }

// Page returns the page at the 0-based index i.
func (d *Document) Page(i int) (Page, error) {
	if i < 0 || i >= len(d.pages) {
		return Page{}, ErrIndexOutOfRange
	}
	return d.pages[i], nil
}

// Pages returns a copy of the page list.
func (d *Document) Pages() []Page {
	out := make([]Page, len(d.pages))
	copy(out, d.pages)
	return out
}

// Sources returns the distinct sources referenced by the document, in first-use order.
func (d *Document) Sources() []*Source {
	if d.locked != nil {
		return []*Source{d.locked}
	}
	var out []*Source
	seen := make(map[*Source]bool)
	for _, p := range d.pages {
		if !seen[p.source] {
			seen[p.source] = true
			out = append(out, p.source)
		}
	}
	return out
}

// withPages returns a document sharing d's metadata with a new page list.
func (d *Document) withPages(pages []Page) *Document {
	return &Document{pages: pages, encrypted: d.encrypted, protect: d.protect}
}

// unchanged reports whether d is exactly the file it was read from:
// a single source, every page once in file order, no rotation or password changes.
func (d *Document) unchanged() (*Source, bool) {
	if d.locked != nil {
		return d.locked, true
	}
	if d.protect != nil || len(d.pages) == 0 {
		return nil, false
	}
	src := d.pages[0].source
	if len(d.pages) != src.PageCount() {
		return nil, false
	}
	for i, p := range d.pages {
		if p.source != src || p.number != i+1 || p.modified() {
			return nil, false
		}
	}
	return src, true
}

func normalizeAngle(a int) int {
	a %= 360
	if a < 0 {
		a += 360
	}
	return a
}
