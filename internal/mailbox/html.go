package mailbox

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelectors = "p, div, tr, li, table, h1, h2, h3, h4, h5, h6"

// TextFromHTML renders an HTML body as plain text lines: one line per block
// element or <br>, whitespace collapsed, runs of blank lines reduced to one.
func TextFromHTML(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, head, title").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	raw := strings.ReplaceAll(doc.Text(), "\u00a0", " ")

	var out []string
	blank := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n"), nil
}
