package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/services"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up in the regulations"`
	K     int    `json:"k,omitempty" jsonschema:"number of fragments to return (default 4)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Fragments []FragmentOutput `json:"fragments"`
	Count     int              `json:"count"`
	Context   string           `json:"context"`
}

// FragmentOutput is one retrieved chunk.
type FragmentOutput struct {
	DocID    string  `json:"doc_id"`
	Title    string  `json:"title"`
	Page     *int    `json:"page"`
	URL      string  `json:"url"`
	Validity string  `json:"vigencia"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question about the regulations"`
	K        int    `json:"k,omitempty" jsonschema:"number of fragments used as context (default 4)"`
	RAG      *bool  `json:"rag,omitempty" jsonschema:"ground the answer in retrieved fragments (default true)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the regulation fragments most relevant to a query, with their source tags",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question citing the regulations, or abstain when they do not cover it",
	}, s.handleAsk)
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = domain.DefaultTopK
	}

	results, err := s.ports.Retriever.Query(ctx, strings.TrimSpace(input.Query), k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Fragments: make([]FragmentOutput, len(results)),
		Count:     len(results),
		Context:   services.FormatContext(results),
	}
	for i, r := range results {
		output.Fragments[i] = FragmentOutput{
			DocID:    r.Chunk.DocID,
			Title:    r.Chunk.Title,
			Page:     r.Chunk.Page,
			URL:      r.Chunk.URL,
			Validity: r.Chunk.Validity,
			Score:    r.Score,
			Text:     r.Chunk.Text,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.AskResponse, error) {
	useRAG := true
	if input.RAG != nil {
		useRAG = *input.RAG
	}

	resp, err := s.ports.Ask.Ask(ctx, domain.AskRequest{
		Question:    input.Question,
		K:           input.K,
		UseRAG:      useRAG,
		ShowSources: useRAG,
	})
	if err != nil {
		return nil, domain.AskResponse{}, err
	}

	return nil, *resp, nil
}
