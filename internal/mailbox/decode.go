package mailbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

const maxPartBytes = 2 << 20

// Decoded is the part of an RFC 5322 message the exporter cares about.
type Decoded struct {
	MessageID string
	Subject   string
	From      string
	To        string
	Date      time.Time

	Text string // longest text/plain part
	HTML string // longest text/html part
}

// Body prefers the plain text part and falls back to the HTML part
// rendered as text.
func (d Decoded) Body() string {
	if strings.TrimSpace(d.Text) != "" {
		return d.Text
	}
	if d.HTML == "" {
		return ""
	}
	text, err := TextFromHTML(d.HTML)
	if err != nil {
		return ""
	}
	return text
}

// Decode parses a raw message. Transfer encodings and charsets are undone by
// go-message; unknown charsets are tolerated and the raw bytes kept. Partial
// results are returned alongside an error.
func Decode(raw []byte) (Decoded, error) {
	var d Decoded

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return d, fmt.Errorf("read message: %w", err)
	}
	defer func() { _ = mr.Close() }()

	readHeader(&d, mr.Header)

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (p == nil || !message.IsUnknownCharset(err)) {
			return d, fmt.Errorf("read part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()

		body, err := io.ReadAll(io.LimitReader(p.Body, maxPartBytes))
		if err != nil {
			return d, fmt.Errorf("read %s part: %w", ct, err)
		}

		switch strings.ToLower(ct) {
		case "text/plain", "":
			if len(body) > len(d.Text) {
				d.Text = normalizeNewlines(string(body))
			}
		case "text/html":
			if len(body) > len(d.HTML) {
				d.HTML = string(body)
			}
		}
	}

	return d, nil
}

func readHeader(d *Decoded, h mail.Header) {
	d.MessageID, _ = h.MessageID()
	if s, err := h.Subject(); err == nil {
		d.Subject = s
	} else {
		d.Subject = h.Get("Subject")
	}
	d.From = addressHeader(h, "From")
	d.To = addressHeader(h, "To")
	if t, err := h.Date(); err == nil {
		d.Date = t
	}
}

func addressHeader(h mail.Header, key string) string {
	list, err := h.AddressList(key)
	if err != nil || len(list) == 0 {
		return strings.TrimSpace(h.Get(key))
	}
	parts := make([]string, 0, len(list))
	for _, a := range list {
		if a.Name != "" {
			parts = append(parts, a.Name+" <"+a.Address+">")
		} else {
			parts = append(parts, a.Address)
		}
	}
	return strings.Join(parts, ", ")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
