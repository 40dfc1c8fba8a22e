package domain

// Required catalog columns, in the order they are documented.
const (
	ColumnDocID         = "doc_id"
	ColumnTitle         = "title"
	ColumnURL           = "url"
	ColumnRetrievalDate = "fecha_descarga"
	ColumnValidity      = "vigencia"
	ColumnType          = "tipo"
)

// RequiredCatalogColumns lists every column a catalog must declare.
var RequiredCatalogColumns = []string{
	ColumnDocID,
	ColumnTitle,
	ColumnURL,
	ColumnRetrievalDate,
	ColumnValidity,
	ColumnType,
}

// SourceRecord describes one document that must be ingested.
// Records come from the catalog and are independent of physical storage layout.
type SourceRecord struct {
	// DocID is the stable identifier of the document (e.g. "R001").
	DocID string

	// Title is the human-readable document title.
	Title string

	// URL is where the document was originally published.
	URL string

	// RetrievalDate is when the document was downloaded (fecha_descarga).
	RetrievalDate string

	// Validity is the validity tag of the document (vigencia).
	Validity string

	// Type is the declared document type (tipo).
	Type string
}

// DisplayTitle returns the title, falling back to the document ID.
func (r SourceRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.DocID
}
