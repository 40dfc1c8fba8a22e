package mcp

import (
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Retriever ranks chunks for the retrieve tool.
	Retriever driving.Retriever

	// Ask answers questions for the ask tool.
	Ask driving.AskService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
