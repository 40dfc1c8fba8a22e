package domain

// MinReadableChars is the minimum length a page must reach after
// normalisation before it is persisted as chunk text.
const MinReadableChars = 30

// ExtractedPage is the raw text of one page or section of a document.
type ExtractedPage struct {
	// Index is the 1-based page number.
	Index int

	// Text is the raw extracted text, before normalisation.
	Text string
}

// Extraction is the result of running an extractor over one physical file.
type Extraction struct {
	// Pages holds the pages in document order. Empty when NeedsOCR is set.
	Pages []ExtractedPage

	// NeedsOCR reports that no strategy produced machine-readable text.
	NeedsOCR bool

	// Backend names the strategy whose output was accepted.
	Backend string

	// UnreadablePages lists 1-based pages whose extraction failed
	// and were replaced by empty text.
	UnreadablePages []int
}

// Chunk is a bounded window of document text plus provenance.
// Chunks are immutable once written; the table is rebuilt wholesale.
type Chunk struct {
	// DocID links the chunk to its catalog record.
	DocID string

	// Title is the catalog title of the document.
	Title string

	// Page is the 1-based source page. Nil only for OCR placeholders.
	Page *int

	// URL is the catalog URL of the document.
	URL string

	// Validity is the catalog validity tag (vigencia).
	Validity string

	// Text is the window of normalised text. Empty only for OCR placeholders.
	Text string

	// SourcePath is the physical file the text was extracted from.
	SourcePath string

	// NeedsOCR marks a placeholder for a document with no readable text.
	NeedsOCR bool
}

// IsSearchable reports whether the chunk carries text that can be retrieved.
func (c Chunk) IsSearchable() bool {
	return !c.NeedsOCR && c.Text != ""
}

// OCRPlaceholder builds the single record persisted for a document
// that requires optical character recognition.
func OCRPlaceholder(rec SourceRecord, sourcePath string) Chunk {
	return Chunk{
		DocID:      rec.DocID,
		Title:      rec.Title,
		URL:        rec.URL,
		Validity:   rec.Validity,
		SourcePath: sourcePath,
		NeedsOCR:   true,
	}
}

// PageRef returns a pointer to a copy of the page number.
func PageRef(page int) *int {
	return &page
}

// ExtractedDocument ties an extraction to the catalog record and file it came from.
// It is the input of the post-processing pipeline.
type ExtractedDocument struct {
	Record     SourceRecord
	SourcePath string
	Extraction Extraction
}
