package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/normativa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
	"github.com/custodia-labs/normativa/internal/extractors"
	"github.com/custodia-labs/normativa/internal/extractors/pdf"
	"github.com/custodia-labs/normativa/internal/extractors/plaintext"
	"github.com/custodia-labs/normativa/internal/postprocessors"
)

// ingestFixture wires an IngestService over a temp raw directory.
type ingestFixture struct {
	rawDir  string
	catalog *mockCatalog
	tier1   *mockBackend
	tier2   *mockBackend
	table   *memory.ChunkTable
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	return &ingestFixture{
		rawDir:  t.TempDir(),
		catalog: &mockCatalog{},
		tier1:   &mockBackend{name: "structured", result: &driven.BackendResult{}},
		tier2:   &mockBackend{name: "pdftotext", result: &driven.BackendResult{}},
		table:   memory.NewChunkTable(),
	}
}

func (f *ingestFixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.rawDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (f *ingestFixture) service(t *testing.T, opts ...IngestOption) *IngestService {
	t.Helper()
	registry := extractors.NewRegistry()
	registry.Register(pdf.NewWithTiers(
		pdf.Tier{Backend: f.tier1, Accept: pdf.MinimumReadable(pdf.DefaultReadableRatio)},
		pdf.Tier{Backend: f.tier2, Accept: pdf.AnyReadable},
	))
	registry.Register(plaintext.New())

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	pipeline, err := processors.BuildPipeline(postprocessors.DefaultOrder, nil)
	require.NoError(t, err)

	return NewIngestService(f.catalog, extractors.NewDirSource(f.rawDir, ""), registry, pipeline, f.table, opts...)
}

func articlePage(i int) string {
	return fmt.Sprintf("Artículo %d. El estudiante podrá solicitar la revisión de su evaluación.", i)
}

func TestIngestService_ImplementsInterface(t *testing.T) {
	var _ driving.IngestService = (*IngestService)(nil)
}

func TestIngestService_Run_PartiallyReadablePDF(t *testing.T) {
	f := newIngestFixture(t)
	path := f.write(t, "r001_reglamento.pdf", "%PDF-1.4")
	f.catalog.records = []domain.SourceRecord{
		{DocID: "R001", Title: "Reglamento de Régimen de Estudios", URL: "https://example.org/r001", Validity: "vigente"},
	}
	pages := make([]string, 10)
	for i := range pages {
		if i == 2 || i == 6 {
			pages[i] = "  "
			continue
		}
		pages[i] = articlePage(i + 1)
	}
	f.tier1.result = &driven.BackendResult{Pages: pages}

	report, err := f.service(t).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 8, report.Chunks)
	assert.Empty(t, report.Issues)

	chunks, run, err := f.table.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 8)
	var got []int
	for _, c := range chunks {
		assert.False(t, c.NeedsOCR)
		assert.Equal(t, "R001", c.DocID)
		assert.Equal(t, path, c.SourcePath)
		assert.Equal(t, "vigente", c.Validity)
		require.NotNil(t, c.Page)
		got = append(got, *c.Page)
	}
	assert.Equal(t, []int{1, 2, 4, 5, 6, 8, 9, 10}, got)
	assert.Equal(t, report.Run.ID, run.ID)
	assert.Equal(t, 8, run.ChunkCount)
	assert.Zero(t, run.OCRCount)
}

func TestIngestService_Run_MixedCatalogReportsIssues(t *testing.T) {
	f := newIngestFixture(t)
	scanned := f.write(t, "r001_escaneado.pdf", "%PDF-1.4")
	f.write(t, "r002_calendario.txt", articlePage(1))
	docx := f.write(t, "r004_acta.docx", "PK")
	f.catalog.records = []domain.SourceRecord{
		{DocID: "R001", Title: "Reglamento escaneado"},
		{DocID: "R002", Title: "Calendario"},
		{DocID: "R003", Title: "Documento sin archivo"},
		{DocID: "R004", Title: "Acta"},
		{DocID: "R002", Title: "Calendario duplicado"},
	}
	f.tier1.result = &driven.BackendResult{Pages: []string{"", ""}}
	f.tier2.err = errors.New("pdftotext not installed")

	report, err := f.service(t).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, report.Documents)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, []string{"R003"}, report.Missing())

	ocr := report.IssuesOf(domain.IssueOCRRequired)
	require.Len(t, ocr, 1)
	assert.Equal(t, scanned, ocr[0].Path)

	unsupported := report.IssuesOf(domain.IssueUnsupported)
	require.Len(t, unsupported, 1)
	assert.Equal(t, docx, unsupported[0].Path)
	assert.Contains(t, unsupported[0].Detail, ".docx")

	dup := report.IssuesOf(domain.IssueDuplicateDoc)
	require.Len(t, dup, 1)
	assert.Equal(t, "Calendario duplicado", dup[0].Title)

	chunks, run, err := f.table.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, domain.OCRPlaceholder(f.catalog.records[0], scanned), chunks[0])
	assert.Equal(t, "R002", chunks[1].DocID)
	assert.Equal(t, 1, run.OCRCount)
}

func TestIngestService_Run_ReportsUnreadablePages(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "r001.pdf", "%PDF-1.4")
	f.catalog.records = []domain.SourceRecord{{DocID: "R001", Title: "Reglamento"}}
	f.tier1.result = &driven.BackendResult{
		Pages:  []string{articlePage(1), "", articlePage(3), ""},
		Failed: []int{2, 4},
	}

	report, err := f.service(t).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Chunks)
	unreadable := report.IssuesOf(domain.IssueUnreadable)
	require.Len(t, unreadable, 1)
	assert.Equal(t, "pages 2, 4", unreadable[0].Detail)
	assert.Equal(t, "R001", unreadable[0].DocID)
}

func TestIngestService_Run_LongTextIsWindowed(t *testing.T) {
	f := newIngestFixture(t)
	text := strings.Repeat("a", 4500)
	f.write(t, "r010.txt", text)
	f.catalog.records = []domain.SourceRecord{{DocID: "R010", Title: "Texto largo"}}

	_, err := f.service(t).Run(context.Background())
	require.NoError(t, err)

	chunks, _, err := f.table.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, text[:3800], chunks[0].Text)
	assert.Equal(t, text[3300:], chunks[1].Text)
	assert.Equal(t, 1, *chunks[0].Page)
	assert.Equal(t, 1, *chunks[1].Page)
}

func TestIngestService_Run_OnlyOCRPlaceholders(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "r001.pdf", "%PDF-1.4")
	f.catalog.records = []domain.SourceRecord{
		{DocID: "R001", Title: "Escaneado", URL: "https://normativa.ufro.cl/r001"},
		{DocID: "R002", Title: "Ausente"},
	}

	report, err := f.service(t).Run(context.Background())

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Chunks)
	assert.Equal(t, 1, report.Run.OCRCount)
	assert.Len(t, report.IssuesOf(domain.IssueOCRRequired), 1)
	assert.Equal(t, []string{"R002"}, report.Missing())

	chunks, run, err := f.table.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "R001", chunks[0].DocID)
	assert.True(t, chunks[0].NeedsOCR)
	assert.Nil(t, chunks[0].Page)
	assert.Empty(t, chunks[0].Text)
	require.NotNil(t, run)
	assert.Equal(t, report.Run.ID, run.ID)
}

func TestIngestService_Run_NoChunksKeepsTable(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "r001.html", "<p>x</p>")
	f.catalog.records = []domain.SourceRecord{
		{DocID: "R001", Title: "Sin extractor"},
		{DocID: "R002", Title: "Ausente"},
	}

	report, err := f.service(t).Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyResultSet)
	require.NotNil(t, report)
	assert.Zero(t, report.Chunks)
	assert.Len(t, report.IssuesOf(domain.IssueUnsupported), 1)
	assert.Equal(t, []string{"R002"}, report.Missing())

	_, _, err = f.table.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrInitialization, "table must not be replaced")
}

func TestIngestService_Run_EmptyRawDirectory(t *testing.T) {
	f := newIngestFixture(t)
	f.catalog.records = []domain.SourceRecord{{DocID: "R001", Title: "Reglamento"}}

	report, err := f.service(t).Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmptyResultSet)
	assert.Equal(t, []string{"R001"}, report.Missing())
}

func TestIngestService_Run_CatalogErrorIsFatal(t *testing.T) {
	f := newIngestFixture(t)
	f.catalog.err = fmt.Errorf("%w: data/sources.csv", domain.ErrMissingCatalog)

	report, err := f.service(t).Run(context.Background())

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrMissingCatalog)
}

func TestIngestService_Run_MissingRawDirectory(t *testing.T) {
	f := newIngestFixture(t)
	f.rawDir = filepath.Join(f.rawDir, "absent")
	f.catalog.records = []domain.SourceRecord{{DocID: "R001"}}

	report, err := f.service(t).Run(context.Background())

	assert.Nil(t, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list raw files")
}

func TestIngestService_Run_WorkersKeepCatalogOrder(t *testing.T) {
	build := func(workers int) []domain.Chunk {
		f := newIngestFixture(t)
		for i := 1; i <= 12; i++ {
			f.write(t, fmt.Sprintf("doc%02d.txt", i), articlePage(i))
			f.catalog.records = append(f.catalog.records, domain.SourceRecord{DocID: fmt.Sprintf("DOC%02d", i)})
		}
		_, err := f.service(t, WithWorkers(workers)).Run(context.Background())
		require.NoError(t, err)
		chunks, _, err := f.table.Load(context.Background())
		require.NoError(t, err)
		return chunks
	}

	sequential := build(1)
	parallel := build(4)

	require.Len(t, sequential, 12)
	for i := range sequential {
		sequential[i].SourcePath = filepath.Base(sequential[i].SourcePath)
		parallel[i].SourcePath = filepath.Base(parallel[i].SourcePath)
	}
	assert.Equal(t, sequential, parallel)
	assert.Equal(t, "DOC01", sequential[0].DocID)
	assert.Equal(t, "DOC12", sequential[11].DocID)
}

func TestIngestService_Run_StampsRun(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "r001.txt", articlePage(1))
	f.catalog.records = []domain.SourceRecord{{DocID: "R001"}}
	stamp := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	report, err := f.service(t, WithClock(func() time.Time { return stamp })).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, stamp, report.Run.CreatedAt)
	assert.Equal(t, "data/sources.csv", report.Run.CatalogPath)
	assert.NotEmpty(t, report.Run.ID)
	assert.Equal(t, ":memory:", report.TablePath)
}

func TestIngestService_Run_Cancelled(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "r001.txt", articlePage(1))
	f.catalog.records = []domain.SourceRecord{{DocID: "R001"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service(t).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithWorkers_ClampsToOne(t *testing.T) {
	s := NewIngestService(nil, nil, nil, nil, nil, WithWorkers(0))
	assert.Equal(t, 1, s.workers)
}
