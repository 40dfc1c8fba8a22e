// Package migrations holds the schema of a chunk table file: the chunks
// table and the ingest_runs metadata table, applied in file name order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
