package mcp

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	results []domain.ScoredChunk
	err     error
	size    int
	lastK   int
	lastQ   string
}

func (m *mockRetriever) Query(_ context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	m.lastQ = question
	m.lastK = k
	return m.results, m.err
}

func (m *mockRetriever) Reload(_ context.Context) error { return nil }

func (m *mockRetriever) Size() int { return m.size }

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	resp    *domain.AskResponse
	err     error
	lastReq domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}
