package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService is the Chunk Store Builder. It turns the catalog and the raw
// directory into a fresh chunk table.
type IngestService struct {
	catalog    driven.CatalogLoader
	files      driven.RawFileSource
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	table      driven.ChunkTableWriter
	workers    int
	now        func() time.Time
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithWorkers sets how many documents are extracted concurrently.
// Values below one mean one.
func WithWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// WithClock sets the clock used to stamp ingestion runs.
func WithClock(now func() time.Time) IngestOption {
	return func(s *IngestService) {
		s.now = now
	}
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	catalog driven.CatalogLoader,
	files driven.RawFileSource,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	table driven.ChunkTableWriter,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		catalog:    catalog,
		files:      files,
		extractors: extractors,
		pipeline:   pipeline,
		table:      table,
		workers:    1,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ingestJob is one resolved catalog record.
type ingestJob struct {
	record domain.SourceRecord
	path   string
}

// ingestResult is the outcome of one job. Results are merged in job order.
type ingestResult struct {
	chunks    []domain.Chunk
	issues    []domain.Issue
	processed bool
}

// Run performs a full ingestion.
//
// Only catalog errors, an unreadable raw directory, cancellation, a failed
// write and a run without any chunk are fatal. OCR placeholders count as
// chunks, so a run of scanned documents still replaces the table. Every other
// problem is recorded in the report and the run continues.
func (s *IngestService) Run(ctx context.Context) (*domain.IngestReport, error) {
	logger.Section("Ingestion")
	defer logger.Timed("Ingestion")()

	records, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("Loaded %d catalog records from %s", len(records), s.catalog.Path())

	files, err := s.files.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list raw files: %w", err)
	}
	logger.Info("Found %d raw files in %s", len(files), s.files.Dir())

	report := &domain.IngestReport{
		Documents: len(records),
		TablePath: s.table.Path(),
	}

	jobs := s.plan(records, files, report)

	results := make([]ingestResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := s.processDocument(gctx, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	ocr := 0
	for _, res := range results {
		chunks = append(chunks, res.chunks...)
		report.Issues = append(report.Issues, res.issues...)
		if res.processed {
			report.Processed++
		}
		for _, c := range res.chunks {
			if c.NeedsOCR {
				ocr++
			}
		}
	}

	report.Chunks = len(chunks)
	report.Run = domain.IngestRun{
		ID:          uuid.NewString(),
		CreatedAt:   s.now().UTC(),
		CatalogPath: s.catalog.Path(),
		ChunkCount:  len(chunks),
		OCRCount:    ocr,
	}

	if len(chunks) == 0 {
		return report, fmt.Errorf("%w: %d documents, %d resolved",
			domain.ErrEmptyResultSet, len(records), len(jobs))
	}
	if ocr == len(chunks) {
		logger.Warn("Every processed document requires OCR; the table holds only placeholders")
	}

	if err := s.table.Replace(ctx, chunks, report.Run); err != nil {
		return report, fmt.Errorf("write chunk table: %w", err)
	}

	logger.Info("Wrote %d chunks (%d OCR placeholders) to %s", len(chunks), ocr, report.TablePath)
	return report, nil
}

// plan resolves records to files in catalog order. Duplicate and unresolved
// records are reported and skipped.
func (s *IngestService) plan(records []domain.SourceRecord, files []string, report *domain.IngestReport) []ingestJob {
	resolver := NewResolver(files)
	seen := make(map[string]bool, len(records))
	jobs := make([]ingestJob, 0, len(records))

	for _, rec := range records {
		if rec.DocID != "" {
			if seen[rec.DocID] {
				logger.Warn("Duplicate doc_id %s in catalog, skipping", rec.DocID)
				report.Issues = append(report.Issues, domain.Issue{
					Kind:   domain.IssueDuplicateDoc,
					DocID:  rec.DocID,
					Title:  rec.Title,
					Detail: "doc_id already used by an earlier record",
				})
				continue
			}
			seen[rec.DocID] = true
		}

		path, ok := resolver.Resolve(rec)
		if !ok {
			logger.Warn("No file found for doc_id=%s; rename the file in %s so it contains the doc_id",
				rec.DocID, s.files.Dir())
			report.Issues = append(report.Issues, domain.Issue{
				Kind:   domain.IssueUnresolved,
				DocID:  rec.DocID,
				Title:  rec.Title,
				Detail: domain.ErrUnresolvedDocument.Error(),
			})
			continue
		}
		jobs = append(jobs, ingestJob{record: rec, path: path})
	}
	return jobs
}

// processDocument extracts and chunks one document.
// Only cancellation is returned as an error.
func (s *IngestService) processDocument(ctx context.Context, job ingestJob) (ingestResult, error) {
	var res ingestResult
	if err := ctx.Err(); err != nil {
		return res, err
	}

	issue := func(kind domain.IssueKind, detail string) {
		res.issues = append(res.issues, domain.Issue{
			Kind:   kind,
			DocID:  job.record.DocID,
			Title:  job.record.Title,
			Path:   job.path,
			Detail: detail,
		})
	}

	logger.Info("Procesando %s -> %s", job.record.DocID, job.path)

	extractor, err := s.extractors.For(job.path)
	if err != nil {
		logger.Warn("Unsupported file %s: %v", job.path, err)
		issue(domain.IssueUnsupported, err.Error())
		return res, nil
	}

	extraction, err := extractor.Extract(ctx, job.path)
	if err != nil {
		if isCancellation(err) {
			return res, err
		}
		logger.Warn("Extraction failed for %s: %v", job.path, err)
		issue(domain.IssueExtraction, err.Error())
		return res, nil
	}

	if len(extraction.UnreadablePages) > 0 {
		issue(domain.IssueUnreadable, "pages "+joinInts(extraction.UnreadablePages))
	}
	if extraction.NeedsOCR {
		logger.Warn("%s has no machine-readable text, OCR required", job.record.DocID)
		issue(domain.IssueOCRRequired, domain.ErrOCRRequired.Error())
	}

	chunks, err := s.pipeline.Process(ctx, &domain.ExtractedDocument{
		Record:     job.record,
		SourcePath: job.path,
		Extraction: *extraction,
	})
	if err != nil {
		if isCancellation(err) {
			return res, err
		}
		logger.Warn("Post-processing failed for %s: %v", job.path, err)
		issue(domain.IssueExtraction, err.Error())
		return res, nil
	}

	logger.Debug("%s: backend=%s pages=%d chunks=%d",
		job.record.DocID, extraction.Backend, len(extraction.Pages), len(chunks))

	res.chunks = chunks
	res.processed = true
	return res, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
