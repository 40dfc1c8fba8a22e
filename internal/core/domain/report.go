package domain

import "time"

// IssueKind classifies a non-fatal ingestion problem.
type IssueKind string

// Issue kinds reported at the end of an ingestion run.
const (
	IssueUnresolved   IssueKind = "unresolved"
	IssueOCRRequired  IssueKind = "ocr_required"
	IssueUnsupported  IssueKind = "unsupported_extension"
	IssueUnreadable   IssueKind = "unreadable_page"
	IssueExtraction   IssueKind = "extraction_failed"
	IssueDuplicateDoc IssueKind = "duplicate_doc_id"
)

// Err returns the sentinel error matching the issue kind.
func (k IssueKind) Err() error {
	switch k {
	case IssueUnresolved:
		return ErrUnresolvedDocument
	case IssueOCRRequired:
		return ErrOCRRequired
	case IssueUnsupported:
		return ErrUnsupportedExtension
	case IssueUnreadable:
		return ErrUnreadablePage
	case IssueDuplicateDoc:
		return ErrInvalidInput
	default:
		return nil
	}
}

// Issue is a per-document problem that operators may need to fix by hand.
type Issue struct {
	Kind   IssueKind
	DocID  string
	Title  string
	Path   string
	Detail string
}

// IngestRun identifies one completed build of the chunk table.
type IngestRun struct {
	ID          string
	CreatedAt   time.Time
	CatalogPath string
	ChunkCount  int
	OCRCount    int
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	Run       IngestRun
	Documents int
	Processed int
	Chunks    int
	Issues    []Issue
	TablePath string
}

// IssuesOf returns the issues of the given kind, in report order.
func (r *IngestReport) IssuesOf(kind IssueKind) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

// Missing returns the document IDs that could not be resolved to a file.
func (r *IngestReport) Missing() []string {
	var ids []string
	for _, issue := range r.IssuesOf(IssueUnresolved) {
		ids = append(ids, issue.DocID)
	}
	return ids
}
