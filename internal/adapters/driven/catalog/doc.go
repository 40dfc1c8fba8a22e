// Package catalog reads the source catalog, the CSV table listing every
// document that an ingestion run must turn into chunks.
//
// The catalog must declare the columns doc_id, title, url, fecha_descarga,
// vigencia and tipo. Extra columns are ignored and column order is free.
// Values are trimmed but not otherwise validated.
package catalog
