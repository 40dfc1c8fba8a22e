package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for normativa resources.
	uriScheme = "normativa://"

	// indexURI names the index status resource.
	indexURI = uriScheme + "index"
)

// IndexStatus describes the loaded chunk index.
type IndexStatus struct {
	Chunks int  `json:"chunks"`
	Ready  bool `json:"ready"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         indexURI,
		Name:        "index",
		Description: "Number of searchable regulation fragments currently indexed",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleIndexResource reports the size of the retriever index.
func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	n := s.ports.Retriever.Size()
	data, err := json.MarshalIndent(IndexStatus{Chunks: n, Ready: n > 0}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index status: %w", err)
	}

	uri := indexURI
	if req != nil && req.Params != nil && req.Params.URI != "" {
		uri = req.Params.URI
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
