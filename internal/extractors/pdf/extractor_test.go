package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// fakeBackend is a test double for driven.TextBackend.
type fakeBackend struct {
	name   string
	result *driven.BackendResult
	err    error
	calls  int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Pages(_ context.Context, _ string) (*driven.BackendResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

var readable = strings.Repeat("texto legible ", 5)

func pdfPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "r001_reglamento.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600))
	return path
}

func pages(readableCount, total int) []string {
	out := make([]string, total)
	for i := range out {
		if i < readableCount {
			out[i] = readable
		} else {
			out[i] = "  12 "
		}
	}
	return out
}

func TestNew(t *testing.T) {
	extractor := New("")
	require.NotNil(t, extractor)
	require.Len(t, extractor.tiers, 2)
	assert.Equal(t, StructuredBackendName, extractor.tiers[0].Backend.Name())
	assert.Equal(t, PDFToTextBackendName, extractor.tiers[1].Backend.Name())
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New("").Extensions())
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
	var _ driven.TextBackend = (*StructuredBackend)(nil)
	var _ driven.TextBackend = (*PDFToTextBackend)(nil)
}

func TestMinimumReadable(t *testing.T) {
	accept := MinimumReadable(DefaultReadableRatio)

	tests := []struct {
		name     string
		pages    []string
		expected bool
	}{
		{"no pages", nil, false},
		{"one of one", pages(1, 1), true},
		{"zero of one", pages(0, 1), false},
		{"one of three", pages(1, 3), true},
		{"two of ten", pages(2, 10), false},
		{"three of ten", pages(3, 10), true},
		{"eight of ten", pages(8, 10), true},
		{"three of eleven", pages(3, 11), false},
		{"four of eleven", pages(4, 11), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, accept(tc.pages))
		})
	}
}

func TestIsReadable(t *testing.T) {
	assert.False(t, IsReadable(""))
	assert.False(t, IsReadable(strings.Repeat("a", 30)))
	assert.True(t, IsReadable(strings.Repeat("a", 31)))
	assert.False(t, IsReadable("   "+strings.Repeat("a", 30)+"\n\n"))
	assert.True(t, IsReadable(strings.Repeat("á", 31)))
}

func TestAnyReadable(t *testing.T) {
	assert.False(t, AnyReadable(nil))
	assert.False(t, AnyReadable([]string{"", "short"}))
	assert.True(t, AnyReadable([]string{"", readable}))
}

func TestExtract_StructuredAccepted(t *testing.T) {
	tier1 := &fakeBackend{name: "structured", result: &driven.BackendResult{Pages: pages(8, 10), Failed: []int{10}}}
	tier2 := &fakeBackend{name: "pdftotext"}
	extractor := NewWithTiers(
		Tier{Backend: tier1, Accept: MinimumReadable(DefaultReadableRatio)},
		Tier{Backend: tier2, Accept: AnyReadable},
	)

	result, err := extractor.Extract(context.Background(), pdfPath(t))
	require.NoError(t, err)

	assert.False(t, result.NeedsOCR)
	assert.Equal(t, "structured", result.Backend)
	require.Len(t, result.Pages, 10)
	for i, page := range result.Pages {
		assert.Equal(t, i+1, page.Index)
	}
	assert.Equal(t, []int{10}, result.UnreadablePages)
	assert.Equal(t, 0, tier2.calls)
}

func TestExtract_FallsBackToSecondTier(t *testing.T) {
	tier1 := &fakeBackend{name: "structured", result: &driven.BackendResult{Pages: pages(1, 10)}}
	tier2 := &fakeBackend{name: "pdftotext", result: &driven.BackendResult{Pages: []string{readable, ""}}}
	extractor := NewWithTiers(
		Tier{Backend: tier1, Accept: MinimumReadable(DefaultReadableRatio)},
		Tier{Backend: tier2, Accept: AnyReadable},
	)

	result, err := extractor.Extract(context.Background(), pdfPath(t))
	require.NoError(t, err)

	assert.False(t, result.NeedsOCR)
	assert.Equal(t, "pdftotext", result.Backend)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, readable, result.Pages[0].Text)
	assert.Equal(t, 1, tier2.calls)
}

func TestExtract_BackendErrorFallsThrough(t *testing.T) {
	tier1 := &fakeBackend{name: "structured", err: errors.New("malformed xref")}
	tier2 := &fakeBackend{name: "pdftotext", result: &driven.BackendResult{Pages: []string{readable}}}
	extractor := NewWithTiers(
		Tier{Backend: tier1, Accept: MinimumReadable(DefaultReadableRatio)},
		Tier{Backend: tier2, Accept: AnyReadable},
	)

	result, err := extractor.Extract(context.Background(), pdfPath(t))
	require.NoError(t, err)
	assert.Equal(t, "pdftotext", result.Backend)
}

func TestExtract_NeedsOCR(t *testing.T) {
	tier1 := &fakeBackend{name: "structured", result: &driven.BackendResult{Pages: pages(0, 5)}}
	tier2 := &fakeBackend{name: "pdftotext", result: &driven.BackendResult{Pages: []string{"\n\n", "  "}}}
	extractor := NewWithTiers(
		Tier{Backend: tier1, Accept: MinimumReadable(DefaultReadableRatio)},
		Tier{Backend: tier2, Accept: AnyReadable},
	)

	result, err := extractor.Extract(context.Background(), pdfPath(t))
	require.NoError(t, err)

	assert.True(t, result.NeedsOCR)
	assert.Empty(t, result.Pages)
	assert.Empty(t, result.Backend)
}

func TestExtract_NeedsOCRWhenAllBackendsFail(t *testing.T) {
	extractor := NewWithTiers(
		Tier{Backend: &fakeBackend{name: "structured", err: errors.New("boom")}, Accept: AnyReadable},
		Tier{Backend: &fakeBackend{name: "pdftotext", err: ErrPDFToolNotFound}, Accept: AnyReadable},
	)

	result, err := extractor.Extract(context.Background(), pdfPath(t))
	require.NoError(t, err)
	assert.True(t, result.NeedsOCR)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New("").Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tier := &fakeBackend{name: "structured", result: &driven.BackendResult{Pages: pages(1, 1)}}
	_, err := NewWithTiers(Tier{Backend: tier, Accept: AnyReadable}).Extract(ctx, pdfPath(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tier.calls)
}

func TestStructuredBackend_NotAPDF(t *testing.T) {
	_, err := NewStructuredBackend().Pages(context.Background(), pdfPath(t))
	assert.Error(t, err)
}

// missingTool names a pdftotext executable that does not exist.
func missingTool(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pdftotext")
}

func TestStructuredBackend_PagesInOrder(t *testing.T) {
	result, err := NewStructuredBackend().Pages(context.Background(), filepath.Join("testdata", "reglamento.pdf"))
	require.NoError(t, err)

	require.Len(t, result.Pages, 2)
	assert.Empty(t, result.Failed)
	assert.Contains(t, result.Pages[0], "Articulo 1. El estudiante podra solicitar")
	assert.NotContains(t, result.Pages[0], "Articulo 2.")
	assert.Contains(t, result.Pages[1], "Articulo 2. La solicitud se presenta")
	assert.True(t, IsReadable(result.Pages[0]))
	assert.True(t, IsReadable(result.Pages[1]))
}

func TestStructuredBackend_ImageOnlyPage(t *testing.T) {
	result, err := NewStructuredBackend().Pages(context.Background(), filepath.Join("testdata", "escaneado.pdf"))
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	assert.Empty(t, strings.TrimSpace(result.Pages[0]))
}

func TestExtract_RealPDFAcceptedByStructuredTier(t *testing.T) {
	result, err := New(missingTool(t)).Extract(context.Background(), filepath.Join("testdata", "reglamento.pdf"))
	require.NoError(t, err)

	assert.False(t, result.NeedsOCR)
	assert.Equal(t, StructuredBackendName, result.Backend)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].Index)
	assert.Equal(t, 2, result.Pages[1].Index)
	assert.Contains(t, result.Pages[0].Text, "Articulo 1.")
	assert.Contains(t, result.Pages[1].Text, "Articulo 2.")
}

func TestExtract_ImageOnlyPDFNeedsOCRWithoutFallbackTool(t *testing.T) {
	result, err := New(missingTool(t)).Extract(context.Background(), filepath.Join("testdata", "escaneado.pdf"))
	require.NoError(t, err)

	assert.True(t, result.NeedsOCR)
	assert.Empty(t, result.Pages)
	assert.Empty(t, result.Backend)
}

func TestPDFToTextBackend_SplitsPages(t *testing.T) {
	runner := &mockRunner{output: []byte("página uno\fpágina dos\f")}
	backend := NewPDFToTextBackendWithRunner("", runner)

	result, err := backend.Pages(context.Background(), "/raw/doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, []string{"página uno", "página dos"}, result.Pages)
	assert.Equal(t, DefaultPDFToText, runner.name)
	assert.Equal(t, []string{"-enc", "UTF-8", "-q", "/raw/doc.pdf", "-"}, runner.args)
}

func TestPDFToTextBackend_SinglePageWithoutBreaks(t *testing.T) {
	runner := &mockRunner{output: []byte("todo el documento")}
	result, err := NewPDFToTextBackendWithRunner("/opt/bin/pdftotext", runner).Pages(context.Background(), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, []string{"todo el documento"}, result.Pages)
	assert.Equal(t, "/opt/bin/pdftotext", runner.name)
}

func TestPDFToTextBackend_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext crashed")}
	_, err := NewPDFToTextBackendWithRunner("", runner).Pages(context.Background(), "doc.pdf")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"no breaks", "abc", []string{"abc"}},
		{"empty", "", []string{""}},
		{"trailing break", "a\fb\f", []string{"a", "b"}},
		{"trailing whitespace page", "a\fb\f\n", []string{"a", "b"}},
		{"empty middle page", "a\f\fc", []string{"a", "", "c"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, splitPages(tc.input))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Error(t, ErrPDFToolNotFound)
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestCheckAvailable_Missing(t *testing.T) {
	err := CheckAvailable("definitely-not-a-real-pdftotext-binary")
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}
