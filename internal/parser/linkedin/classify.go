package linkedin

import "regexp"

var (
	reEmptyLine   = regexp.MustCompile(`^\s*$`)
	reHyphenLine  = regexp.MustCompile(`^\s*-+$`)
	reAlertLine   = regexp.MustCompile(`^Your job alert for .*`)
	reSummaryLine = regexp.MustCompile(`^[0-9]+[+]* new jobs match your preferences.*`)
	reFooterLine  = regexp.MustCompile(`^See all jobs on LinkedIn: .*`)
	reLinkLine    = regexp.MustCompile(`^View job:\s+(.*)`)
)

// IsEmptyLine reports whether line is empty or whitespace only.
func IsEmptyLine(line string) bool {
	return reEmptyLine.MatchString(line)
}

// IsHyphenSeparatorLine reports whether line is nothing but hyphens,
// optionally indented.
func IsHyphenSeparatorLine(line string) bool {
	return reHyphenLine.MatchString(line)
}

func isFooterLine(line string) bool  { return reFooterLine.MatchString(line) }
func isAlertLine(line string) bool   { return reAlertLine.MatchString(line) }
func isSummaryLine(line string) bool { return reSummaryLine.MatchString(line) }

// linkFromLine returns the URL on a "View job:" line.
func linkFromLine(line string) (string, bool) {
	m := reLinkLine.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
