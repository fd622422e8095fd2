package linkedin

import (
	"bufio"
	"io"
)

// Job links carry long tracking queries; give the scanner room for them.
const maxLineBytes = 1 << 20

// lineCursor is the single forward-only reader shared by the driver and the
// extractor. It is never copied or rewound.
type lineCursor struct {
	sc   *bufio.Scanner
	done bool
}

func newLineCursor(r io.Reader) *lineCursor {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineCursor{sc: sc}
}

// Next returns the next line without its terminator. ok is false once the
// input is exhausted; read errors count as exhaustion.
func (c *lineCursor) Next() (line string, ok bool) {
	if c.done {
		return "", false
	}
	if !c.sc.Scan() {
		c.done = true
		return "", false
	}
	return c.sc.Text(), true
}

// Err reports a read error that ended the input early, if any.
func (c *lineCursor) Err() error {
	return c.sc.Err()
}
