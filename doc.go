// Package pdfit converts documents to PDF and edits existing PDF files.
//
// # Quick Start
//
// Convert a file with a Converter, and close it when done:
//
//	conv := pdfit.NewConverter(pdfit.WithTimeout(time.Minute))
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, "notes.md", "notes.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Strategy, result.Size)
//
// Edit PDF files with an Engine:
//
//	engine := pdfit.NewEngine()
//	doc, err := engine.RotateFile("in.pdf", "out.pdf", "1,3-5", 90, "")
//
// # Conversion
//
// The input kind is detected from the file extension (see
// SupportedExtensions) or forced with ConvertAs. Each kind has a chain of
// strategies tried in order until one produces a PDF:
//
//   - text: embedded Unicode font, then ASCII transliteration
//   - markdown and html: headless Chrome through go-rod, then chromedp,
//     then a text-only rendering
//   - image: one page sized to the picture
//   - document and presentation: LibreOffice, then a text-only rendering
//     of .docx and .pptx files
//
// When every strategy fails, the error wraps ErrAllStrategiesFailed and
// each strategy's cause.
//
// # Documents
//
// A Document is an ordered list of pages referring to their source files.
// Merge, Split, Rotate and Reorder are pure functions returning new
// documents; the bytes are only rewritten when a document is saved.
// Opening an encrypted file without its password yields a locked document:
// it can be counted but not edited, and page operations return
// ErrDocumentLocked.
//
// # Page Expressions
//
// Page numbers are 1-based on input and 0-based in the returned indices:
//
//	set, _ := pdfit.ParsePageRange("1,3-5", 10) // [0 2 3 4]
//	order, _ := pdfit.ParsePageOrder("3,1,2", 3) // [2 0 1]
//
// # Compression
//
// Compress prefers Ghostscript and falls back to an in-process
// optimization when it is missing or fails. CompressResult.Status tells
// which path produced the output.
//
// # Concurrency
//
// An Engine is safe for concurrent use. A Converter is not: use a
// ConverterPool to share browsers between goroutines.
//
//	pool := pdfit.NewConverterPool(pdfit.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
package pdfit
