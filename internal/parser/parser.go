// Package parser defines what every message parser offers the export
// pipeline.
package parser

import (
	"time"

	"jobalert-exporter/internal/domain"
	"jobalert-exporter/internal/record"
)

// SuffixLayout renders dates as ddMMyy for output filenames.
const SuffixLayout = "020106"

// MessageParser turns mailbox messages into CSV records.
type MessageParser interface {
	// Parse returns the records found in msg, in source order.
	Parse(msg domain.Message) ([]record.CSVRecord, error)
	// CSVOutputFilename names the CSV file the records belong in.
	CSVOutputFilename() string
	// Close releases anything the parser holds open. Safe to call twice.
	Close() error
}

// DateSuffix renders t in its own zone as ddMMyy.
func DateSuffix(t time.Time) string {
	return t.Format(SuffixLayout)
}
