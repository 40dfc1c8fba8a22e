// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants retrieve regulation fragments and ask grounded
// questions over the indexed corpus.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever is required")

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
