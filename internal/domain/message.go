package domain

import "time"

// Message is a mailbox message reduced to what the parsers consume.
type Message struct {
	UID       uint32
	MessageID string
	From      string
	To        string
	Subject   string

	// Date is the Date header; InternalDate is when the server received it.
	Date         time.Time
	InternalDate time.Time

	// Body is the decoded plain-text body.
	Body string
}

// EpochMillis is the message timestamp handed to parsers. The server's
// internal date wins over the Date header, which senders control.
func (m Message) EpochMillis() int64 {
	if !m.InternalDate.IsZero() {
		return m.InternalDate.UnixMilli()
	}
	return m.Date.UnixMilli()
}
