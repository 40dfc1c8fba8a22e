package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/normativa/internal/core/domain"
)

func sampleReport() *domain.IngestReport {
	return &domain.IngestReport{
		Run: domain.IngestRun{
			ID:         "run-1",
			CreatedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			ChunkCount: 7,
			OCRCount:   1,
		},
		Documents: 4,
		Processed: 3,
		Chunks:    7,
		TablePath: "data/processed/chunks.db",
		Issues: []domain.Issue{
			{Kind: domain.IssueUnresolved, DocID: "R003", Title: "Reglamento de Becas", Detail: "no file matches the record"},
			{Kind: domain.IssueOCRRequired, DocID: "R004", Title: "Decreto escaneado", Path: "data/raw/r004.pdf"},
			{Kind: domain.IssueUnreadable, DocID: "R001", Path: "data/raw/r001.pdf", Detail: "pages 3, 4"},
		},
	}
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest", ingestCmd.Use)
	assert.Equal(t, "Build the chunk table from the catalog", ingestCmd.Short)
}

func TestIngestCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "", "ingest", "extra")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestIngestCmd_PrintsReport(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.report = sampleReport()

	out, err := executeCommand(t, "", "ingest")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.ingest.calls)
	assert.Contains(t, out, "Ingestion report")
	assert.Contains(t, out, "4 in catalog, 3 processed")
	assert.Contains(t, out, "7 -> data/processed/chunks.db (1 OCR placeholders)")
	assert.Contains(t, out, "Missing documents (1)")
	assert.Contains(t, out, "R003 Reglamento de Becas")
	assert.Contains(t, out, "Require OCR (1)")
	assert.Contains(t, out, "R004 Decreto escaneado [data/raw/r004.pdf]")
	assert.Contains(t, out, "Unreadable pages (1)")
	assert.Contains(t, out, "pages 3, 4")
	assert.NotContains(t, out, "Unsupported files")
}

func TestIngestCmd_FatalErrorStillPrintsReport(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.report = &domain.IngestReport{Documents: 2, TablePath: "chunks.db"}
	ts.ingest.err = fmt.Errorf("%w: 2 documents, 0 resolved", domain.ErrEmptyResultSet)

	out, err := executeCommand(t, "", "ingest")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyResultSet)
	assert.Contains(t, err.Error(), "ingest failed")
	assert.Contains(t, out, "2 in catalog, 0 processed")
}

func TestIngestCmd_CatalogErrorWithoutReport(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.err = fmt.Errorf("load catalog: %w", domain.ErrMissingCatalog)

	out, err := executeCommand(t, "", "ingest")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCatalog)
	assert.NotContains(t, out, "Ingestion report")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	ingestService = nil

	_, err := executeCommand(t, "", "ingest")

	assert.EqualError(t, err, "ingest service not configured")
}

func TestIngestCmd_WiringError(t *testing.T) {
	ts := setupTestServices(t)
	wireServices = func(context.Context) error { return errors.New("bad config") }

	_, err := executeCommand(t, "", "ingest")

	assert.EqualError(t, err, "bad config")
	assert.Zero(t, ts.ingest.calls)
}

func TestRenderIngestReport_Clean(t *testing.T) {
	var buf bytes.Buffer
	renderIngestReport(&buf, &domain.IngestReport{Documents: 1, Processed: 1, Chunks: 2, TablePath: "t.db"}, styles.DefaultStyles())

	assert.Contains(t, buf.String(), "All documents ingested.")
	assert.NotContains(t, buf.String(), "Run:")
}

func TestIssueLabel(t *testing.T) {
	tests := []struct {
		name  string
		issue domain.Issue
		want  string
	}{
		{"doc only", domain.Issue{DocID: "R1"}, "R1"},
		{"with title", domain.Issue{DocID: "R1", Title: "Estatuto"}, "R1 Estatuto"},
		{"with path", domain.Issue{DocID: "R1", Path: "raw/r1.pdf"}, "R1 [raw/r1.pdf]"},
		{"no doc id", domain.Issue{Title: "Sin id"}, "(no doc_id) Sin id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, issueLabel(tt.issue))
		})
	}
}
