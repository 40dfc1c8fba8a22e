package pdf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// DefaultReadableRatio is the share of pages that must carry readable
// text before the structured backend's output is accepted.
const DefaultReadableRatio = 0.3

// AcceptFunc decides whether a backend's pages are good enough.
type AcceptFunc func(pages []string) bool

// Tier pairs a text backend with its acceptance policy.
type Tier struct {
	Backend driven.TextBackend
	Accept  AcceptFunc
}

// Extractor runs tiers in order and keeps the first accepted output.
type Extractor struct {
	tiers []Tier
}

// New creates the standard two-tier PDF extractor.
// pdftotext names the poppler executable used by the fallback tier.
func New(pdftotext string) *Extractor {
	return NewWithTiers(
		Tier{Backend: NewStructuredBackend(), Accept: MinimumReadable(DefaultReadableRatio)},
		Tier{Backend: NewPDFToTextBackend(pdftotext), Accept: AnyReadable},
	)
}

// NewWithTiers creates an extractor over custom tiers.
func NewWithTiers(tiers ...Tier) *Extractor {
	return &Extractor{tiers: tiers}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the pages of the first tier whose output is accepted.
// When no tier is accepted the extraction is flagged NeedsOCR with no pages.
// Backend failures move on to the next tier; only an unreadable file is an error.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.Extraction, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	for _, tier := range e.tiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := tier.Backend.Name()

		result, err := tier.Backend.Pages(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Warn("pdf %s: %s backend failed: %v", path, name, err)
			continue
		}

		if !tier.Accept(result.Pages) {
			logger.Debug("pdf %s: %s backend rejected (%d/%d readable pages)",
				path, name, ReadablePages(result.Pages), len(result.Pages))
			continue
		}

		logger.Debug("pdf %s: accepted %s backend (%d pages)", path, name, len(result.Pages))
		extraction := &domain.Extraction{
			Pages:           make([]domain.ExtractedPage, len(result.Pages)),
			Backend:         name,
			UnreadablePages: result.Failed,
		}
		for i, text := range result.Pages {
			extraction.Pages[i] = domain.ExtractedPage{Index: i + 1, Text: text}
		}
		return extraction, nil
	}

	logger.Info("pdf %s: no readable text, OCR required", path)
	return &domain.Extraction{NeedsOCR: true}, nil
}

// IsReadable reports whether a page's trimmed text is longer than the readability threshold.
func IsReadable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) > domain.MinReadableChars
}

// ReadablePages counts the pages that pass IsReadable.
func ReadablePages(pages []string) int {
	n := 0
	for _, p := range pages {
		if IsReadable(p) {
			n++
		}
	}
	return n
}

// MinimumReadable accepts output when at least max(1, ratio*pages) pages are readable.
func MinimumReadable(ratio float64) AcceptFunc {
	return func(pages []string) bool {
		if len(pages) == 0 {
			return false
		}
		need := math.Max(1, ratio*float64(len(pages)))
		return float64(ReadablePages(pages)) >= need
	}
}

// AnyReadable accepts output with at least one readable page.
func AnyReadable(pages []string) bool {
	return ReadablePages(pages) > 0
}
