package linkedin

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

const dumpSeparator = "----------------------------------------"

// dumpSink appends raw message bodies to a text file for debugging layout
// changes. It is opened once per Parser and closed by Parser.Close.
type dumpSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

func openDumpSink(path string) (*dumpSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open message dump: %w", err)
	}
	return &dumpSink{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

func (d *dumpSink) write(text string) error {
	if d == nil || d.w == nil {
		return nil
	}
	if _, err := fmt.Fprintf(d.w, "%s\n%s\n\n", text, dumpSeparator); err != nil {
		return fmt.Errorf("write message dump: %w", err)
	}
	return nil
}

func (d *dumpSink) close() error {
	if d == nil || d.f == nil {
		return nil
	}
	flushErr := d.w.Flush()
	closeErr := d.f.Close()
	d.f, d.w = nil, nil
	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("close message dump: %w", err)
	}
	return nil
}
