package extractors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/logger"
)

// DefaultPattern matches every file directly inside the raw directory.
const DefaultPattern = "*"

// Discover lists the regular files under rawDir matching pattern,
// sorted lexicographically. The order is the canonical order used
// when resolving catalog records to files.
func Discover(rawDir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	info, err := os.Stat(rawDir)
	if err != nil {
		return nil, fmt.Errorf("raw directory %s: %w", rawDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("raw directory %s: not a directory", rawDir)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid raw file pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(rawDir), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q failed: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		match := filepath.Join(rawDir, filepath.FromSlash(rel))
		fi, err := os.Stat(match)
		if err != nil {
			logger.Warn("skipping %s: %v", match, err)
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)

	logger.Debug("discovered %d raw files in %s", len(files), rawDir)
	return files, nil
}

// Ensure DirSource implements the interface.
var _ driven.RawFileSource = (*DirSource)(nil)

// DirSource lists raw files from a directory with a glob pattern.
type DirSource struct {
	dir     string
	pattern string
}

// NewDirSource creates a raw file source for dir. An empty pattern matches
// every file directly inside dir.
func NewDirSource(dir, pattern string) *DirSource {
	return &DirSource{dir: dir, pattern: pattern}
}

// List discovers the files on every call, so each ingestion run sees the
// directory as it is.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Discover(s.dir, s.pattern)
}

// Dir returns the raw directory.
func (s *DirSource) Dir() string {
	return s.dir
}
