// Package memory provides in-memory implementations of driven ports.
// They back tests and the retrieval path when no table file is wanted.
package memory
