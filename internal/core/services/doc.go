// Package services implements the driving port interfaces.
// Services hold the ingestion, retrieval, answering and evaluation logic
// and reach files, the chunk table and generation providers only through
// driven ports.
package services
