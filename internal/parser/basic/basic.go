// Package basic lists mailbox messages by their headers.
package basic

import (
	"strings"

	"jobalert-exporter/internal/domain"
	"jobalert-exporter/internal/parser"
	"jobalert-exporter/internal/record"
)

const (
	// CSVFilename is where listings are written.
	CSVFilename = "email-listing.csv"

	notFound = "Not Found"
)

// Email is one listed message.
type Email struct {
	EmailDate int64
	From      string
	To        string
	Subject   string
}

var _ record.CSVRecord = Email{}

func (e Email) LongDate() int64 { return e.EmailDate }

// CSV renders date, from, to, subject.
func (e Email) CSV() string {
	return record.Join(e, e.From, e.To, e.Subject)
}

// Parser emits one Email per message.
type Parser struct{}

var _ parser.MessageParser = Parser{}

func (Parser) Parse(msg domain.Message) ([]record.CSVRecord, error) {
	return []record.CSVRecord{Email{
		EmailDate: msg.EpochMillis(),
		From:      orNotFound(msg.From),
		To:        orNotFound(msg.To),
		Subject:   orNotFound(msg.Subject),
	}}, nil
}

func (Parser) CSVOutputFilename() string { return CSVFilename }

func (Parser) Close() error { return nil }

func orNotFound(s string) string {
	if strings.TrimSpace(s) == "" {
		return notFound
	}
	return s
}
