package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert-exporter/internal/parser/linkedin"
	"jobalert-exporter/internal/record"
)

const julyTwelfth = 1720812522000 // 12/Jul/2024 in London

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkedInAlerts-120724.csv")

	recs := []record.CSVRecord{
		linkedin.Alert{EmailDate: julyTwelfth, Title: "Go Engineer", Company: "Acme", Location: "London", Link: "https://x/1"},
		linkedin.Alert{EmailDate: julyTwelfth, Title: "SRE", Company: "Initech", Location: "Remote", Additional: "Actively hiring", Link: "https://x/2"},
	}
	require.NoError(t, WriteCSV(context.Background(), path, recs))

	assert.Equal(t,
		"12/Jul/2024, Go Engineer, Acme, London, , https://x/1\n"+
			"12/Jul/2024, SRE, Initech, Remote, Actively hiring, https://x/2\n",
		readFile(t, path))

	// A second write replaces the file.
	require.NoError(t, WriteCSV(context.Background(), path, recs[:1]))
	assert.Equal(t, "12/Jul/2024, Go Engineer, Acme, London, , https://x/1\n", readFile(t, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp file left behind")
	}
}

func TestWriteLines_HiddenLockFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteLines(context.Background(), path, []string{"a"}))

	assert.Equal(t, filepath.Join(dir, ".out.csv.lock"), lockPath(path))
	assert.FileExists(t, filepath.Join(dir, ".out.csv.lock"))
	assert.NoFileExists(t, filepath.Join(dir, "out.csv.lock"))
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkedInAlerts-120724.csv")
	ctx := context.Background()

	first := []record.CSVRecord{
		linkedin.Alert{EmailDate: julyTwelfth, Title: "Go Engineer", Company: "Acme", Location: "London", Link: "https://x/1"},
		linkedin.Alert{EmailDate: julyTwelfth, Title: "SRE", Company: "Initech", Location: "Remote", Link: "https://x/2"},
	}
	require.NoError(t, AppendCSV(ctx, path, first))

	second := []record.CSVRecord{
		linkedin.Alert{EmailDate: julyTwelfth, Title: "New Job", Company: "NewCo", Location: "Leeds", Link: "https://x/3"},
	}
	require.NoError(t, AppendCSV(ctx, path, second))

	assert.Equal(t,
		"12/Jul/2024, Go Engineer, Acme, London, , https://x/1\n"+
			"12/Jul/2024, SRE, Initech, Remote, , https://x/2\n"+
			"12/Jul/2024, New Job, NewCo, Leeds, , https://x/3\n",
		readFile(t, path))
}

func TestMergeLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	ctx := context.Background()

	require.NoError(t, MergeLines(ctx, path, []string{"https://x/1", "https://x/2"}))
	require.NoError(t, MergeLines(ctx, path, []string{"https://x/2", "https://x/3", "https://x/3"}))

	assert.Equal(t, "https://x/1\nhttps://x/2\nhttps://x/3\n", readFile(t, path))
}

func TestWriteLines_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, WriteLines(context.Background(), path, nil))
	assert.Equal(t, "", readFile(t, path))
}

func TestWriteLines_Locked(t *testing.T) {
	old := LockWait
	LockWait = 200 * time.Millisecond
	t.Cleanup(func() { LockWait = old })

	path := filepath.Join(t.TempDir(), "out.csv")

	other := flock.New(lockPath(path))
	ok, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = other.Unlock() })

	err = WriteLines(context.Background(), path, []string{"a"})
	require.ErrorIs(t, err, ErrLocked)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteLines_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	other := flock.New(lockPath(path))
	ok, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = other.Unlock() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = WriteLines(ctx, path, []string{"a"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestUniqueLinks(t *testing.T) {
	alerts := []linkedin.Alert{
		{Link: "https://x/2"},
		{Link: "https://x/1"},
		{Link: ""},
		{Link: "https://x/2"},
		{Link: "https://x/3"},
	}
	assert.Equal(t, []string{"https://x/2", "https://x/1", "https://x/3"}, UniqueLinks(alerts))
	assert.Empty(t, UniqueLinks(nil))
}

func TestAddFileSuffix(t *testing.T) {
	tests := []struct {
		path, suffix, ext string
		want              string
	}{
		{"a.csv", "urls", "txt", "a-urls.txt"},
		{"out/linkedInAlerts-120724.csv", "urls", ".txt", "out/linkedInAlerts-120724-urls.txt"},
		{"out/a.csv", "filtered", "", "out/a-filtered.csv"},
		{"noext", "urls", "txt", "noext-urls.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddFileSuffix(tt.path, tt.suffix, tt.ext), tt.path)
	}
}

func TestDedupeCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alerts.csv")
	in := "12/Jul/2024, Go Engineer, Acme, London, , https://x/1\n" +
		"12/Jul/2024, SRE, Initech, Remote, , https://x/2\n" +
		"\n" +
		"13/Jul/2024, Go Engineer (again), Acme, London, , https://x/1\n" +
		"13/Jul/2024, Platform, Hooli, Leeds, , https://x/3\r\n"
	require.NoError(t, os.WriteFile(path, []byte(in), 0o644))

	res, err := DedupeCSV(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "alerts-filtered.csv"), res.Path)
	assert.Equal(t, 4, res.Before)
	assert.Equal(t, 3, res.After)
	assert.Equal(t,
		"12/Jul/2024, Go Engineer, Acme, London, , https://x/1\n"+
			"12/Jul/2024, SRE, Initech, Remote, , https://x/2\n"+
			"13/Jul/2024, Platform, Hooli, Leeds, , https://x/3\n",
		readFile(t, res.Path))

	// Source untouched.
	assert.Equal(t, in, readFile(t, path))
}

func TestDedupeCSV_MissingFile(t *testing.T) {
	_, err := DedupeCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
