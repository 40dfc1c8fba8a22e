package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownProvider indicates a generation provider that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidWindow indicates a chunk window whose overlap is not smaller than its size.
	ErrInvalidWindow = errors.New("chunk overlap must be smaller than chunk size")

	// Catalog Errors. These abort ingestion.

	// ErrMissingCatalog indicates the catalog file does not exist.
	ErrMissingCatalog = errors.New("catalog not found")

	// ErrSchema indicates the catalog is missing a required column.
	ErrSchema = errors.New("catalog schema error")

	// Per-document Errors. These are reported and never abort a run.

	// ErrUnresolvedDocument indicates no raw file matched a catalog record.
	ErrUnresolvedDocument = errors.New("document file not found")

	// ErrUnreadablePage indicates a single page failed to extract and was treated as empty.
	ErrUnreadablePage = errors.New("page could not be extracted")

	// ErrOCRRequired indicates no strategy produced machine-readable text.
	ErrOCRRequired = errors.New("document requires OCR")

	// ErrUnsupportedExtension indicates a raw file type without an extractor.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// Run-level Errors.

	// ErrEmptyResultSet indicates an ingestion run produced no usable chunks.
	ErrEmptyResultSet = errors.New("ingestion produced no chunks")

	// Query Errors.

	// ErrInitialization indicates the retriever could not open the chunk table.
	ErrInitialization = errors.New("retriever initialisation failed")

	// ErrGeneration indicates the generation backend failed.
	// It is surfaced to callers and never retried by the core.
	ErrGeneration = errors.New("generation failed")
)
