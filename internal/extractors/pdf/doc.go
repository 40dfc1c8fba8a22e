// Package pdf provides a tiered Extractor for PDF documents.
//
// Extraction is a small state machine over an ordered list of tiers.
// Each tier pairs a text backend with an acceptance policy:
//
//	structured -> accept
//	structured -> pdftotext -> accept
//	structured -> pdftotext -> needs OCR
//
// The structured backend reads the PDF page by page in process. The
// pdftotext backend shells out to poppler and splits its output on form
// feeds. A document that no tier accepts is classified as needing OCR.
// Additional backends slot in as extra tiers.
package pdf
