package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/normativa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure ChunkTable implements the interfaces.
var (
	_ driven.ChunkTableWriter = (*ChunkTable)(nil)
	_ driven.ChunkTableReader = (*ChunkTable)(nil)
)

// ChunkTable is a chunk table persisted as a single SQLite file.
type ChunkTable struct {
	path string
}

// NewChunkTable creates a chunk table at the given file path.
// Nothing is opened until Replace or Load is called.
func NewChunkTable(path string) *ChunkTable {
	return &ChunkTable{path: path}
}

// Path returns the database file path.
func (t *ChunkTable) Path() string {
	return t.path
}

// Replace writes all chunks to a fresh database and swaps it in atomically.
func (t *ChunkTable) Replace(ctx context.Context, chunks []domain.Chunk, run domain.IngestRun) (err error) {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating table directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(t.path)+"."+uuid.NewString()+".tmp")
	defer func() {
		if err != nil {
			os.Remove(tmp) //nolint:errcheck
		}
	}()

	// Rollback journal keeps every committed page in the main file,
	// so the file is complete once the connection is closed.
	db, err := sql.Open("sqlite", tmp+"?_pragma=journal_mode(DELETE)&_pragma=synchronous(FULL)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := insertAll(ctx, db, chunks, run); err != nil {
		db.Close()
		return err
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replacing chunk table: %w", err)
	}

	logger.Debug("chunk table %s replaced (%d chunks, run %s)", t.path, len(chunks), run.ID)
	return nil
}

// insertAll writes the chunks and the run in one transaction.
func insertAll(ctx context.Context, db *sql.DB, chunks []domain.Chunk, run domain.IngestRun) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (doc_id, title, page, url, vigencia, text, source_path, needs_ocr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.DocID, chunk.Title, nullPage(chunk.Page),
			chunk.URL, chunk.Validity, chunk.Text, chunk.SourcePath, chunk.NeedsOCR); err != nil {
			return fmt.Errorf("saving chunk for %s: %w", chunk.DocID, err)
		}
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, created_at, catalog_path, chunk_count, ocr_count)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, createdAt.UTC().Format(time.RFC3339Nano), run.CatalogPath, run.ChunkCount, run.OCRCount); err != nil {
		return fmt.Errorf("saving ingest run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load reads every chunk in insertion order plus the run that wrote them.
// Any failure to open or read the file wraps domain.ErrInitialization.
func (t *ChunkTable) Load(ctx context.Context) ([]domain.Chunk, *domain.IngestRun, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: chunk table %s: %w", domain.ErrInitialization, t.path, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: chunk table %s is a directory", domain.ErrInitialization, t.path)
	}

	db, err := sql.Open("sqlite", t.path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening %s: %w", domain.ErrInitialization, t.path, err)
	}
	defer db.Close()

	chunks, err := loadChunks(ctx, db)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInitialization, err)
	}

	run, err := loadRun(ctx, db)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInitialization, err)
	}

	return chunks, run, nil
}

// loadChunks scans all chunks ordered by insertion.
func loadChunks(ctx context.Context, db *sql.DB) ([]domain.Chunk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT doc_id, title, page, url, vigencia, text, source_path, needs_ocr
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// loadRun returns the most recent ingestion run, or nil when none is recorded.
func loadRun(ctx context.Context, db *sql.DB) (*domain.IngestRun, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, created_at, catalog_path, chunk_count, ocr_count
		FROM ingest_runs ORDER BY created_at DESC LIMIT 1
	`)

	var run domain.IngestRun
	var createdAt string
	if err := row.Scan(&run.ID, &createdAt, &run.CatalogPath, &run.ChunkCount, &run.OCRCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning ingest run: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		run.CreatedAt = ts
	}
	return &run, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var page sql.NullInt64

	if err := rows.Scan(&chunk.DocID, &chunk.Title, &page, &chunk.URL, &chunk.Validity,
		&chunk.Text, &chunk.SourcePath, &chunk.NeedsOCR); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	if page.Valid {
		chunk.Page = domain.PageRef(int(page.Int64))
	}
	return &chunk, nil
}

// nullPage converts an optional page number to a SQL value.
func nullPage(page *int) sql.NullInt64 {
	if page == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*page), Valid: true}
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
