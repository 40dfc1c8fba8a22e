package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// mockAskService records the last request.
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

func newTestServer(t *testing.T, ask *mockAskService) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := NewServer(ask)
	require.NoError(t, err)
	return s
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServer_RequiresAskService(t *testing.T) {
	_, err := NewServer(nil)
	assert.ErrorIs(t, err, ErrMissingAskService)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &mockAskService{})

	w := do(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAsk_Defaults(t *testing.T) {
	ask := &mockAskService{resp: &domain.AskResponse{Answer: "Respuesta", Provider: "openrouter", RAG: true}}
	s := newTestServer(t, ask)

	w := do(s, http.MethodPost, "/ask", `{"question":"¿Cómo apelo una nota?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Respuesta","provider":"openrouter","rag":true}`, w.Body.String())
	assert.Equal(t, domain.AskRequest{
		Question: "¿Cómo apelo una nota?",
		K:        4,
		UseRAG:   true,
	}, ask.lastReq)
}

func TestAsk_ExplicitFields(t *testing.T) {
	page := 12
	ask := &mockAskService{resp: &domain.AskResponse{
		Answer:   "Sí",
		Provider: "deepseek",
		Model:    "deepseek-chat",
		RAG:      false,
		Sources:  []domain.SourceQuote{{Title: "Reglamento", Page: &page, URL: "u", Snippet: "s"}},
	}}
	s := newTestServer(t, ask)

	w := do(s, http.MethodPost, "/ask",
		`{"question":"q","provider":"deepseek","model":"deepseek-chat","k":2,"rag":false,"show_sources":true}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sources":[{"title":"Reglamento","page":12,"url":"u","snippet":"s"}]`)
	assert.Equal(t, 2, ask.lastReq.K)
	assert.False(t, ask.lastReq.UseRAG)
	assert.True(t, ask.lastReq.ShowSources)
	assert.Equal(t, "deepseek", ask.lastReq.Provider)
	assert.Equal(t, "deepseek-chat", ask.lastReq.Model)
}

func TestAsk_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `question=hola`},
		{"missing question", `{"k":4}`},
		{"wrong type", `{"question":"q","k":"cuatro"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ask := &mockAskService{}
			s := newTestServer(t, ask)

			w := do(s, http.MethodPost, "/ask", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid payload")
			assert.Zero(t, ask.calls)
		})
	}
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: question is empty", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: \"gemini\"", domain.ErrUnknownProvider), http.StatusBadRequest},
		{fmt.Errorf("%w: no chunk table", domain.ErrInitialization), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: openrouter: timeout", domain.ErrGeneration), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s := newTestServer(t, &mockAskService{err: tt.err})

			w := do(s, http.MethodPost, "/ask", `{"question":"q"}`)

			assert.Equal(t, tt.want, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.err.Error()), w.Body.String())
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, &mockAskService{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
