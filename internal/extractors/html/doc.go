// Package html provides an Extractor for HTML documents.
// It extracts readable text with a conservative regular-expression pass,
// stripping tags, scripts and styles and decoding entities.
// It does not build a DOM; malformed markup may leak fragments into the text.
package html
