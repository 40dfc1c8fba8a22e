// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CatalogLoader: Reads the document catalog
//   - Extractor / ExtractorRegistry: Turns physical files into page text
//   - TextBackend: One text extraction strategy used by a tiered extractor
//   - PostProcessorPipeline: Normalises pages and cuts them into chunks
//   - ChunkTableWriter / ChunkTableReader: Chunk table persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Generator: Language model backend. Without it only retrieval is available.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or post-processor package
package driven
