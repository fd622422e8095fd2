package linkedin

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// Blocks of this many lines (title through link) have a title that
	// wrapped onto a second line.
	wrappedTitleLines = 7

	// "£" decoded as Latin-1 instead of UTF-8. A company line starting with
	// it is really the tail of a title that broke at a salary figure.
	mojibakePound = "Â£"

	additionalSeparator = ". "
)

// sanitizeLine swaps commas for hyphens so the line cannot split a CSV field.
func sanitizeLine(line string) string {
	return strings.ReplaceAll(line, ",", "-")
}

// extractRecord consumes one job block whose first line, title, has already
// been read by the driver. It reads on from cur up to the block's trailing
// separator and returns the alert, or false if no link line turned up
// before the input ran out.
func (p *Parser) extractRecord(emailDate int64, title string, cur *lineCursor) (Alert, bool) {
	p.log.Debug("parsing alert record start")

	title = sanitizeLine(title)
	jobLines := []string{title}

	var link string
	linkFound := false
	for !linkFound {
		line, ok := cur.Next()
		if !ok {
			break
		}
		jobLines = append(jobLines, sanitizeLine(line))
		link, linkFound = linkFromLine(line)
	}
	if !linkFound {
		p.log.Error("failed to parse link line for job: "+title, zap.String("title", title))
		return Alert{}, false
	}

	if line, ok := cur.Next(); !ok || !IsEmptyLine(line) {
		p.log.Warn("failed to find empty line after job", zap.String("title", title))
	}
	if line, ok := cur.Next(); !ok || !IsHyphenSeparatorLine(line) {
		p.log.Warn("failed to find hyphen line after job", zap.String("title", title))
	}

	at := func(i int) string {
		if i < len(jobLines) {
			return jobLines[i]
		}
		p.log.Warn("job block shorter than expected",
			zap.String("title", title),
			zap.Int("lines", len(jobLines)),
			zap.Int("wanted", i+1))
		return ""
	}

	offset := 0
	company := at(1)
	if len(jobLines) == wrappedTitleLines {
		title = title + " - " + company
		offset++
		company = at(1 + offset)
	}
	if strings.HasPrefix(company, mojibakePound) {
		title = title + company
		offset++
		company = at(1 + offset)
	}
	location := at(2 + offset)

	// Everything between the location and the link line.
	var additional []string
	for i := 3 + offset; i < len(jobLines)-1; i++ {
		additional = append(additional, jobLines[i])
	}

	alert := Alert{
		EmailDate:  emailDate,
		Title:      title,
		Company:    company,
		Location:   location,
		Additional: strings.Join(additional, additionalSeparator),
		Link:       ChompLink(link),
	}
	p.log.Debug("parsing alert record end", zap.String("title", alert.Title))
	return alert, true
}
