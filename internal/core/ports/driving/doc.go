// Package driving holds the ports the CLI, the HTTP API and the MCP server
// call into: ingestion, retrieval, asking, evaluation and settings.
//
// The services package implements every port.
package driving
