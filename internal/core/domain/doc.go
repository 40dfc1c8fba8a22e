// Package domain defines the core business entities for Normativa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceRecord: A catalog entry describing a document to ingest
//   - Extraction: Per-page text pulled out of a physical file
//   - Chunk: A bounded window of document text plus provenance
//   - ScoredChunk: A chunk ranked for a query
//   - Message: A role-tagged message handed to generation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
