// Package extractors provides implementations of the Extractor interface
// for the document formats found in the raw directory. Each extractor
// turns one physical file into ordered page text.
//
// Extractors are registered with the Registry at startup and dispatched
// by file extension. Discover lists the raw files in canonical order.
package extractors
