package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// Ensure PDFToTextBackend implements the interface.
var _ driven.TextBackend = (*PDFToTextBackend)(nil)

// PDFToTextBackendName identifies the poppler backend.
const PDFToTextBackendName = "pdftotext"

// DefaultPDFToText is the default poppler executable.
const DefaultPDFToText = "pdftotext"

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// ErrPDFToolNotFound indicates the pdftotext executable is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPDFToolNotFound, name)
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

// PDFToTextBackend extracts the whole document with poppler's pdftotext.
type PDFToTextBackend struct {
	binary string
	runner CommandRunner
}

// NewPDFToTextBackend creates a backend that runs the given executable.
func NewPDFToTextBackend(binary string) *PDFToTextBackend {
	return NewPDFToTextBackendWithRunner(binary, execRunner{})
}

// NewPDFToTextBackendWithRunner creates a backend with a custom command runner.
func NewPDFToTextBackendWithRunner(binary string, runner CommandRunner) *PDFToTextBackend {
	if binary == "" {
		binary = DefaultPDFToText
	}
	return &PDFToTextBackend{binary: binary, runner: runner}
}

// Name returns the backend name.
func (b *PDFToTextBackend) Name() string {
	return PDFToTextBackendName
}

// Pages runs pdftotext and splits its output on page breaks.
// Output without page breaks is returned as a single page.
func (b *PDFToTextBackend) Pages(ctx context.Context, path string) (*driven.BackendResult, error) {
	out, err := b.runner.Run(ctx, b.binary, "-enc", "UTF-8", "-q", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}
	return &driven.BackendResult{Pages: splitPages(string(out))}, nil
}

// splitPages splits text on form feeds. The empty segment that
// follows a trailing form feed is not a page.
func splitPages(text string) []string {
	if !strings.Contains(text, pageBreak) {
		return []string{text}
	}
	pages := strings.Split(text, pageBreak)
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// CheckAvailable reports whether the pdftotext executable can be found.
func CheckAvailable(binary string) error {
	if binary == "" {
		binary = DefaultPDFToText
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%w: %s", ErrPDFToolNotFound, binary)
	}
	return nil
}

// InstallInstructions returns guidance for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is provided by poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Windows:       choco install poppler`
}
