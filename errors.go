package pdfit

import "errors"

// Sentinel errors for library operations.
var (
	// Expression parsing errors.
	ErrMalformed  = errors.New("malformed page expression")
	ErrOutOfRange = errors.New("page number out of range")

	// Page-set validation errors.
	ErrIndexOutOfRange = errors.New("page index out of range")
	ErrInvalidAngle    = errors.New("invalid rotation angle")
	ErrNoDocuments     = errors.New("no documents to merge")
	ErrOrderLength     = errors.New("page order length does not match page count")
	ErrDocumentLocked  = errors.New("document is encrypted and locked")

	// Password errors.
	ErrEmptyPassword = errors.New("user password cannot be empty")
	ErrNotEncrypted  = errors.New("document is not encrypted")
	ErrWrongPassword = errors.New("incorrect password")

	// Compression errors.
	ErrInvalidQuality     = errors.New("invalid compression quality")
	ErrBackendUnavailable = errors.New("compression backend unavailable")

	// Codec and I/O errors.
	ErrCodec     = errors.New("PDF codec failure")
	ErrReadPDF   = errors.New("failed to read PDF file")
	ErrWritePDF  = errors.New("failed to write output file")
	ErrReadInput = errors.New("failed to read input file")
)
