package export

import (
	"context"
	"strings"

	"jobalert-exporter/internal/record"
)

// DedupeResult reports what DedupeCSV kept.
type DedupeResult struct {
	Path   string // the filtered file
	Before int    // data lines read
	After  int    // data lines written
}

// DedupeCSV drops lines whose link column (the last field) repeats an
// earlier line's, keeping the first, and writes the result to
// <stem>-filtered<ext> next to path. Blank lines are dropped; lines without
// a delimiter are compared whole.
func DedupeCSV(ctx context.Context, path string) (DedupeResult, error) {
	lines, err := readLines(path)
	if err != nil {
		return DedupeResult{}, err
	}

	res := DedupeResult{
		Path:   AddFileSuffix(path, "filtered", ""),
		Before: len(lines),
	}

	seen := make(map[string]struct{}, len(lines))
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		key := linkColumn(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}

	res.After = len(kept)
	if err := WriteLines(ctx, res.Path, kept); err != nil {
		return DedupeResult{}, err
	}
	return res, nil
}

func linkColumn(line string) string {
	i := strings.LastIndex(line, record.Delimiter)
	if i < 0 {
		return line
	}
	return strings.TrimSpace(line[i+len(record.Delimiter):])
}
