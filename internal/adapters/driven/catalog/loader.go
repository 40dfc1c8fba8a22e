package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/extractors/textdecode"
)

// Ensure CSVLoader implements the interface.
var _ driven.CatalogLoader = (*CSVLoader)(nil)

// CSVLoader loads source records from a CSV file.
type CSVLoader struct {
	path string
}

// NewCSVLoader creates a loader for the catalog at path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// Path returns the catalog location.
func (l *CSVLoader) Path() string {
	return l.path
}

// Load reads every record of the catalog in file order.
func (l *CSVLoader) Load(ctx context.Context) ([]domain.SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingCatalog, l.path)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return Parse(strings.NewReader(textdecode.Decode(data, "text/csv")))
}

// Parse reads catalog records from r.
// A missing required column fails with domain.ErrSchema.
func Parse(r io.Reader) ([]domain.SourceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog", domain.ErrSchema)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSchema, err)
	}

	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.SourceRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		if isBlank(row) {
			continue
		}

		field := func(name string) string {
			i := columns[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, domain.SourceRecord{
			DocID:         field(domain.ColumnDocID),
			Title:         field(domain.ColumnTitle),
			URL:           field(domain.ColumnURL),
			RetrievalDate: field(domain.ColumnRetrievalDate),
			Validity:      field(domain.ColumnValidity),
			Type:          field(domain.ColumnType),
		})
	}

	return records, nil
}

// indexColumns maps each required column to its position in the header.
func indexColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	columns := make(map[string]int, len(domain.RequiredCatalogColumns))
	for _, name := range domain.RequiredCatalogColumns {
		i, ok := positions[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrSchema, name)
		}
		columns[name] = i
	}
	return columns, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
