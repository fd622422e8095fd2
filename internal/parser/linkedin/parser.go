// Package linkedin parses the plain-text body of LinkedIn job alert digests
// into Alerts.
//
// A digest opens with a summary ("Your job alert for ...", "9 new jobs match
// your preferences."), lists one block per job (title, company, location,
// optional extra lines, "View job: <url>", a blank line, a line of hyphens)
// and ends at "See all jobs on LinkedIn: ...".
package linkedin

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobalert-exporter/internal/domain"
	"jobalert-exporter/internal/parser"
	"jobalert-exporter/internal/record"
)

// Options configures a Parser.
type Options struct {
	// DumpMessages writes every parsed body to messages-<ddMMyy>.txt.
	DumpMessages bool
	// Dir holds the dump file. Empty means the working directory.
	Dir string

	Logger *zap.Logger
	// Now is the clock used for output filenames; defaults to time.Now.
	Now func() time.Time
}

// Parser turns digest bodies into Alerts. It is not safe for concurrent use;
// give each goroutine its own.
type Parser struct {
	log     *zap.Logger
	created time.Time
	dump    *dumpSink
}

var _ parser.MessageParser = (*Parser)(nil)

// New returns a Parser. When opts.DumpMessages is set the dump file is opened
// here and held until Close.
func New(opts Options) (*Parser, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	p := &Parser{
		log:     log.Named("linkedin"),
		created: now(),
	}
	if opts.DumpMessages {
		d, err := openDumpSink(filepath.Join(opts.Dir, DumpFilename(p.created)))
		if err != nil {
			return nil, err
		}
		p.dump = d
	}
	return p, nil
}

// DumpFilename is messages-<ddMMyy>.txt for the local date of t.
func DumpFilename(t time.Time) string {
	return "messages-" + parser.DateSuffix(t) + ".txt"
}

// CSVFilename is linkedInAlerts-<ddMMyy>.csv for the local date of t.
func CSVFilename(t time.Time) string {
	return fmt.Sprintf("linkedInAlerts-%s.csv", parser.DateSuffix(t))
}

// CSVOutputFilename names the CSV for this Parser, dated when it was built.
func (p *Parser) CSVOutputFilename() string {
	return CSVFilename(p.created)
}

// Parse dumps msg's body if enabled and parses it.
func (p *Parser) Parse(msg domain.Message) ([]record.CSVRecord, error) {
	if err := p.dump.write(msg.Body); err != nil {
		return nil, err
	}
	alerts := p.ParseText(msg.EpochMillis(), msg.Body)
	out := make([]record.CSVRecord, len(alerts))
	for i, a := range alerts {
		out[i] = a
	}
	return out, nil
}

// ParseText parses a whole digest body.
func (p *Parser) ParseText(emailDate int64, text string) []Alert {
	return p.ParseReader(emailDate, strings.NewReader(text))
}

// ParseReader parses a digest body read line by line from r. Malformed
// blocks are logged, never returned as errors.
func (p *Parser) ParseReader(emailDate int64, r io.Reader) []Alert {
	p.log.Debug("parsing email message start")

	cur := newLineCursor(r)
	var alerts []Alert
	st := stateSummary
	for st != stateCompleted {
		line, ok := cur.Next()
		if !ok {
			break
		}
		p.log.Debug("parsing", zap.String("line", line), zap.Stringer("state", st))

		var act action
		st, act = transition(st, line)
		switch act {
		case actionExtract:
			if a, ok := p.extractRecord(emailDate, line, cur); ok {
				alerts = append(alerts, a)
			}
		case actionStop:
			p.log.Debug("all email alerts in message parsed")
		}
	}
	if err := cur.Err(); err != nil {
		p.log.Warn("message read stopped early", zap.Error(err))
	}

	p.log.Debug("parsing email message completed", zap.Int("alerts", len(alerts)))
	return alerts
}

// Close releases the dump file, if any.
func (p *Parser) Close() error {
	return p.dump.close()
}
