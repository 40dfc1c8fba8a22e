// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 3800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 500

// Split cuts text into windows of size characters, each starting
// size-overlap characters after the previous one. The last window is
// clipped to the end of the text. Text no longer than size is returned
// whole; empty text yields no windows. Lengths count runes.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", domain.ErrInvalidWindow, size, overlap)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= size {
		return []string{text}, nil
	}

	step := size - overlap
	windows := make([]string, 0, (n-overlap+step-1)/step)
	for start := 0; ; start += step {
		end := start + size
		if end > n {
			end = n
		}
		windows = append(windows, string(runes[start:end]))
		if end == n {
			break
		}
	}
	return windows, nil
}

// Processor splits page chunks into fixed-size windows.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
// Call Validate before use when the options come from user configuration.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Validate rejects windows whose overlap is not smaller than their size.
func (p *Processor) Validate() error {
	if p.overlap >= p.chunkSize {
		return fmt.Errorf("%w: size=%d overlap=%d", domain.ErrInvalidWindow, p.chunkSize, p.overlap)
	}
	return nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits each input chunk into windows that keep its provenance.
// OCR placeholders pass through unchanged.
func (p *Processor) Process(ctx context.Context, _ *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if chunk.NeedsOCR {
			out = append(out, chunk)
			continue
		}
		windows, err := Split(chunk.Text, p.chunkSize, p.overlap)
		if err != nil {
			return nil, err
		}
		for _, window := range windows {
			// A tail shorter than the readability threshold can only
			// appear when overlap is below it.
			if utf8.RuneCountInString(strings.TrimSpace(window)) < domain.MinReadableChars {
				continue
			}
			c := chunk
			c.Text = window
			out = append(out, c)
		}
	}
	return out, nil
}
