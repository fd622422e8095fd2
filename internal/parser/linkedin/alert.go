package linkedin

import "jobalert-exporter/internal/record"

// Alert is one job posting taken from a job alert digest.
type Alert struct {
	EmailDate  int64 // epoch millis of the enclosing message
	Title      string
	Company    string
	Location   string
	Additional string // extra lines joined with ". "
	Link       string
}

var _ record.CSVRecord = Alert{}

func (a Alert) LongDate() int64 { return a.EmailDate }

// CSV renders date, title, company, location, additional, link.
func (a Alert) CSV() string {
	return record.Join(a, a.Title, a.Company, a.Location, a.Additional, a.Link)
}
