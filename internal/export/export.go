// Package export writes exporter output files. Every write takes an
// advisory lock so overlapping runs (a cron tick and a manual run) never
// interleave, and lands via temp file + rename.
//
// The lock for out/a.csv is the hidden file out/.a.csv.lock. Lock files are
// left in place after a run; deleting one while another run holds it would
// let a third run lock a fresh inode, so they are only safe to remove when
// no export is running.
package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"jobalert-exporter/internal/parser/linkedin"
	"jobalert-exporter/internal/record"
)

// ErrLocked is returned when another process holds the output lock past the
// wait deadline.
var ErrLocked = errors.New("output file is locked by another run")

// LockWait bounds how long a writer waits for the lock.
var LockWait = 5 * time.Second

const lockRetry = 100 * time.Millisecond

// WriteCSV writes one line per record, no header.
func WriteCSV(ctx context.Context, path string, recs []record.CSVRecord) error {
	return WriteLines(ctx, path, csvLines(recs))
}

// AppendCSV adds one line per record after the lines already in path,
// creating it if needed.
func AppendCSV(ctx context.Context, path string, recs []record.CSVRecord) error {
	unlock, err := lock(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()

	existing, err := readLinesIfExists(path)
	if err != nil {
		return err
	}
	return writeAtomic(path, append(existing, csvLines(recs)...))
}

// MergeLines adds the lines not already present in path, keeping the file's
// order and then first-seen order for the new ones.
func MergeLines(ctx context.Context, path string, lines []string) error {
	unlock, err := lock(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()

	merged, err := readLinesIfExists(path)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(merged)+len(lines))
	for _, l := range merged {
		seen[l] = struct{}{}
	}
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		merged = append(merged, l)
	}
	return writeAtomic(path, merged)
}

func csvLines(recs []record.CSVRecord) []string {
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = r.CSV()
	}
	return lines
}

// WriteLines replaces path with lines, each newline terminated.
func WriteLines(ctx context.Context, path string, lines []string) error {
	unlock, err := lock(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()

	return writeAtomic(path, lines)
}

func lockPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".lock")
}

func lock(ctx context.Context, path string) (func(), error) {
	fl := flock.New(lockPath(path))

	lctx, cancel := context.WithTimeout(ctx, LockWait)
	defer cancel()

	ok, err := fl.TryLockContext(lctx, lockRetry)
	if !ok {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	return func() { _ = fl.Unlock() }, nil
}

// readLines returns the non-blank lines of path with any trailing \r removed.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

func readLinesIfExists(path string) ([]string, error) {
	lines, err := readLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return lines, err
}

func writeAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := bufio.NewWriter(tmp)
	for _, l := range lines {
		if _, err := w.WriteString(l); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// UniqueLinks returns the distinct non-empty links in first-seen order.
func UniqueLinks(alerts []linkedin.Alert) []string {
	seen := make(map[string]struct{}, len(alerts))
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if a.Link == "" {
			continue
		}
		if _, ok := seen[a.Link]; ok {
			continue
		}
		seen[a.Link] = struct{}{}
		out = append(out, a.Link)
	}
	return out
}

// AddFileSuffix derives a sibling filename:
// AddFileSuffix("out/a.csv", "urls", "txt") == "out/a-urls.txt".
// An empty ext keeps the original extension.
func AddFileSuffix(path, suffix, ext string) string {
	orig := filepath.Ext(path)
	stem := strings.TrimSuffix(path, orig)
	if ext == "" {
		return stem + "-" + suffix + orig
	}
	return stem + "-" + suffix + "." + strings.TrimPrefix(ext, ".")
}
