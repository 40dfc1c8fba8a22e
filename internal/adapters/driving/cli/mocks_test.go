package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/normativa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/services"
)

type mockIngestService struct {
	report *domain.IngestReport
	err    error
	calls  int
}

func (m *mockIngestService) Run(_ context.Context) (*domain.IngestReport, error) {
	m.calls++
	return m.report, m.err
}

type mockAskService struct {
	resp    *domain.AskResponse
	err     error
	lastReq domain.AskRequest
	calls   int
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockEvalService struct {
	summary  *domain.EvalSummary
	err      error
	lastOpts domain.EvalOptions
	gold     string
}

func (m *mockEvalService) Run(_ context.Context, r io.Reader, w io.Writer, opts domain.EvalOptions) (*domain.EvalSummary, error) {
	m.lastOpts = opts
	data, _ := io.ReadAll(r)
	m.gold = string(data)
	_, _ = io.WriteString(w, strings.Join(services.EvalColumns, ",")+"\n")
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

type mockRetriever struct {
	reloadErr error
	reloads   int
	size      int
}

func (m *mockRetriever) Query(_ context.Context, _ string, _ int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (m *mockRetriever) Reload(_ context.Context) error {
	m.reloads++
	return m.reloadErr
}

func (m *mockRetriever) Size() int { return m.size }

// testServices holds the doubles installed by setupTestServices.
type testServices struct {
	store     *memory.ConfigStore
	ingest    *mockIngestService
	ask       *mockAskService
	eval      *mockEvalService
	retriever *mockRetriever
}

// setupTestServices installs doubles for every service and disables wiring.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	for _, p := range domain.AllAIProviders {
		if env := p.APIKeyEnv(); env != "" {
			t.Setenv(env, "")
		}
	}

	ts := &testServices{
		store:  memory.NewConfigStore(),
		ingest: &mockIngestService{},
		ask: &mockAskService{resp: &domain.AskResponse{
			Answer:   "Respuesta de prueba",
			Provider: "openrouter",
			RAG:      true,
		}},
		eval:      &mockEvalService{summary: &domain.EvalSummary{Total: 4, Matches: 3}},
		retriever: &mockRetriever{size: 12},
	}

	oldSettings, oldIngest, oldAsk, oldEval, oldRetriever := settingsService, ingestService, askService, evalService, retriever
	oldAppSettings := appSettings
	oldWireSettings, oldWireServices := wireSettings, wireServices
	oldTerminal, oldReadQuestion := stdinIsTerminal, readQuestion

	settingsService = services.NewSettingsService(ts.store)
	ingestService = ts.ingest
	askService = ts.ask
	evalService = ts.eval
	retriever = ts.retriever
	appSettings = nil
	wireSettings = func() error { return nil }
	wireServices = func(context.Context) error { return nil }
	stdinIsTerminal = func() bool { return false }

	t.Cleanup(func() {
		settingsService, ingestService, askService, evalService, retriever = oldSettings, oldIngest, oldAsk, oldEval, oldRetriever
		appSettings = oldAppSettings
		wireSettings, wireServices = oldWireSettings, oldWireServices
		stdinIsTerminal, readQuestion = oldTerminal, oldReadQuestion
	})
	return ts
}

// executeCommand runs rootCmd with args and fresh flag values.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
