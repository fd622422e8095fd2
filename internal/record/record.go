// Package record holds the CSV contract shared by every record kind the
// exporter writes.
package record

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// Delimiter separates fields in a rendered CSV line.
const Delimiter = ", "

// DateLayout renders dates as dd/MMM/yyyy.
const DateLayout = "02/Jan/2006"

// Dates are always rendered in this zone, whatever the host's local zone is.
var london = mustLoadLocation("Europe/London")

// CSVRecord is implemented by every record kind written to a CSV file.
type CSVRecord interface {
	// LongDate returns the record's timestamp in epoch milliseconds.
	LongDate() int64
	// CSV renders the record as a single line without a trailing newline.
	CSV() string
}

// FormatDate renders the record's date in Europe/London as dd/MMM/yyyy.
func FormatDate(r CSVRecord) string {
	return FormatEpochMillis(r.LongDate())
}

// FormatEpochMillis is FormatDate for a bare timestamp.
func FormatEpochMillis(ms int64) string {
	return time.UnixMilli(ms).In(london).Format(DateLayout)
}

// Join renders the record date followed by fields, separated by Delimiter.
func Join(r CSVRecord, fields ...string) string {
	var sb strings.Builder
	sb.WriteString(FormatDate(r))
	for _, f := range fields {
		sb.WriteString(Delimiter)
		sb.WriteString(f)
	}
	return sb.String()
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("record: load location " + name + ": " + err.Error())
	}
	return loc
}
