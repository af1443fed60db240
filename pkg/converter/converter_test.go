package converter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dendrascience/tabarchive/archive"
	"github.com/dendrascience/tabarchive/table"
	"github.com/dendrascience/tabarchive/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCSV writes a file with header "file,row" and n rows.
func writeCSV(t *testing.T, dir, name string, n int) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("file,row\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s,%d\n", name, i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sb.String()), 0o644))
}

// recordingSink forwards to the archive writer and remembers every call.
type recordingSink struct {
	rows  []int
	opts  []archive.WriteOptions
	fail  int
	calls int
}

func (s *recordingSink) Write(b *table.Batch, path string, opts archive.WriteOptions) (archive.WriteResult, error) {
	s.calls++
	if s.fail > 0 && s.calls == s.fail {
		return archive.WriteResult{}, errors.New("disk full")
	}
	s.rows = append(s.rows, b.NumRows())
	s.opts = append(s.opts, opts)
	return archive.Write(b, path, opts)
}

type countingConfirmer struct {
	answer bool
	calls  int
	args   [][3]string
}

func (c *countingConfirmer) Confirm(msg, yes, no string) (bool, error) {
	c.calls++
	c.args = append(c.args, [3]string{msg, yes, no})
	return c.answer, nil
}

// failingReader fails on one file name and reads the rest as CSV.
type failingReader struct {
	name string
}

func (r failingReader) ReadFile(path string, opts table.ReadOptions) (*table.Batch, error) {
	if filepath.Base(path) == r.name {
		return nil, errors.New("unreadable")
	}
	return table.CSVReader{}.ReadFile(path, opts)
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions(out string) Options {
	opts := DefaultOptions()
	opts.OutPath = out
	opts.ReclaimMemory = false
	return opts
}

func storedRows(t *testing.T, path string) []string {
	t.Helper()
	r, err := archive.Open(path)
	require.NoError(t, err)
	defer r.Close()
	b, err := r.Read(archive.DefaultKey)
	require.NoError(t, err)
	files, ok := b.Column("file")
	require.True(t, ok)
	return files
}

func TestConvert_Streaming(t *testing.T) {
	src := t.TempDir()
	writeCSV(t, src, "b.csv", 5)
	writeCSV(t, src, "a.csv", 10)
	writeCSV(t, src, "c.csv", 20)
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0o644))

	out := filepath.Join(t.TempDir(), "all.tbla")
	sink := &recordingSink{}
	c := New(WithSink(sink), WithConfirmer(AutoConfirm(false)), WithLogger(quiet()))

	report, err := c.Convert(src, testOptions(out))
	require.NoError(t, err)
	assert.Equal(t, ModeStreaming, report.Mode)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 3, report.Partitions)
	assert.Equal(t, 35, report.Rows)
	assert.Equal(t, 20, report.PeakBatchRows)
	assert.Equal(t, []int{10, 5, 20}, sink.rows)

	files := storedRows(t, out)
	require.Len(t, files, 35)
	assert.Equal(t, "a.csv", files[0])
	assert.Equal(t, "b.csv", files[10])
	assert.Equal(t, "c.csv", files[15])
}

func TestConvert_Bulk(t *testing.T) {
	src := t.TempDir()
	writeCSV(t, src, "a.csv", 3)
	writeCSV(t, src, "b.csv", 4)

	out := filepath.Join(t.TempDir(), "all.tbla")
	sink := &recordingSink{}
	c := New(WithSink(sink), WithConfirmer(AutoConfirm(false)), WithLogger(quiet()))

	opts := testOptions(out)
	opts.Small = true
	report, err := c.Convert(src, opts)
	require.NoError(t, err)
	assert.Equal(t, ModeBulk, report.Mode)
	assert.Equal(t, 1, report.Partitions)
	assert.Equal(t, 7, report.Rows)
	assert.Equal(t, 7, report.PeakBatchRows)
	assert.Equal(t, []int{7}, sink.rows)
	assert.Len(t, storedRows(t, out), 7)
}

func TestConvert_Partitioned(t *testing.T) {
	src := t.TempDir()
	for i := 0; i < 10; i++ {
		writeCSV(t, src, fmt.Sprintf("f%02d.csv", i), 1)
	}

	out := filepath.Join(t.TempDir(), "all.tbla")
	sink := &recordingSink{}
	c := New(WithSink(sink), WithConfirmer(AutoConfirm(false)), WithLogger(quiet()))

	opts := testOptions(out)
	opts.Chunks = 3
	report, err := c.Convert(src, opts)
	require.NoError(t, err)
	assert.Equal(t, ModePartitioned, report.Mode)
	assert.Equal(t, 10, report.Files)
	assert.Equal(t, 3, report.Partitions)
	assert.Equal(t, []int{3, 3, 4}, sink.rows)
	assert.Equal(t, 4, report.PeakBatchRows)

	files := storedRows(t, out)
	require.Len(t, files, 10)
	for i, f := range files {
		assert.Equal(t, fmt.Sprintf("f%02d.csv", i), f)
	}
}

func TestConvert_MoreChunksThanFiles(t *testing.T) {
	src := t.TempDir()
	writeCSV(t, src, "a.csv", 1)
	writeCSV(t, src, "b.csv", 1)

	out := filepath.Join(t.TempDir(), "all.tbla")
	sink := &recordingSink{}
	c := New(WithSink(sink), WithConfirmer(AutoConfirm(false)), WithLogger(quiet()))

	opts := testOptions(out)
	opts.Chunks = 4
	report, err := c.Convert(src, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Partitions)
	assert.Equal(t, []int{2}, sink.rows)
}

func TestConvert_LaterFlushesAppend(t *testing.T) {
	src := t.TempDir()
	writeCSV(t, src, "a.csv", 2)
	writeCSV(t, src, "b.csv", 2)

	out := filepath.Join(t.TempDir(), "all.tbla")
	sink := &recordingSink{}
	c := New(WithSink(sink), WithConfirmer(AutoConfirm(false)), WithLogger(quiet()))

	opts := testOptions(out)
	opts.Write.Mode = archive.ModeWrite
	opts.Write.Append = false
	_, err := c.Convert(src, opts)
	require.NoError(t, err)

	require.Len(t, sink.opts, 2)
	assert.Equal(t, archive.ModeWrite, sink.opts[0].Mode)
	assert.False(t, sink.opts[0].Append)
	assert.Equal(t, archive.ModeAppend, sink.opts[1].Mode)
	assert.True(t, sink.opts[1].Append)
	assert.Len(t, storedRows(t, out), 4)
}

func TestConvert_DeclinedConfirmation(t *testing.T) {
	src := t.TempDir()
	writeCSV(t, src, "a.csv", 2)

	out := filepath.Join(t.TempDir(), "all.tbla")
	_, err := New(WithConfirmer(AutoConfirm(false)), WithLogger(quiet())).Convert(src, testOptions(out))
	require.NoError(t, err)
	before, err := os.ReadFile(out)
	require.NoError(t, err)

	confirm := &countingConfirmer{answer: false}
	sink := &recordingSink{}
	_, err = New(WithSink(sink), WithConfirmer(confirm), WithLogger(quiet())).Convert(src, testOptions(out))
	assert.ErrorIs(t, err, ErrDestinationExists)
	assert.Equal(t, 1, confirm.calls)
	assert.Equal(t, "y", confirm.args[0][1])
	assert.Equal(t, "n", confirm.args[0][2])
	assert.Contains(t, confirm.args[0][0], out)
	assert.Zero(t, sink.calls)

	after, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConvert_ConfirmedOnceAcrossPartitions(t *testing.T) {
	src := t.TempDir()
	for i := 0; i < 4; i++ {
		writeCSV(t, src, fmt.Sprintf("%d.csv", i), 1)
	}
	out := filepath.Join(t.TempDir(), "all.tbla")
	_, err := New(WithConfirmer(AutoConfirm(false)), WithLogger(quiet())).Convert(src, testOptions(out))
	require.NoError(t, err)

	confirm := &countingConfirmer{answer: true}
	opts := testOptions(out)
	opts.Chunks = 2
	report, err := New(WithConfirmer(confirm), WithLogger(quiet())).Convert(src, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, confirm.calls)
	assert.Equal(t, 2, report.Partitions)
	assert.Len(t, storedRows(t, out), 8)
}

func TestConvert_NoConfirmationForNewDestination(t *testing.T) {
	src := t.TempDir()
	writeCSV(t, src, "a.csv", 1)

	confirm := &countingConfirmer{answer: false}
	out := filepath.Join(t.TempDir(), "all.tbla")
	_, err := New(WithConfirmer(confirm), WithLogger(quiet())).Convert(src, testOptions(out))
	require.NoError(t, err)
	assert.Zero(t, confirm.calls)
}

func TestConvert_ReadErrorKeepsEarlierPartitions(t *testing.T) {
	src := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv", "c.csv", "d.csv"} {
		writeCSV(t, src, name, 1)
	}

	out := filepath.Join(t.TempDir(), "all.tbla")
	c := New(WithReader(failingReader{name: "c.csv"}), WithConfirmer(AutoConfirm(false)), WithLogger(quiet()))
	opts := testOptions(out)
	opts.Chunks = 2
	report, err := c.Convert(src, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.csv")
	assert.Equal(t, 1, report.Partitions)
	assert.Equal(t, []string{"a.csv", "b.csv"}, storedRows(t, out))
}

func TestConvert_WriteErrorAborts(t *testing.T) {
	src := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		writeCSV(t, src, name, 1)
	}

	out := filepath.Join(t.TempDir(), "all.tbla")
	sink := &recordingSink{fail: 2}
	report, err := New(WithSink(sink), WithConfirmer(AutoConfirm(false)), WithLogger(quiet())).Convert(src, testOptions(out))
	require.Error(t, err)
	assert.Equal(t, 2, sink.calls)
	assert.Equal(t, 1, report.Partitions)
	assert.Equal(t, []string{"a.csv"}, storedRows(t, out))
}

func TestConvert_SchemaMismatchKeepsEarlierFiles(t *testing.T) {
	src := t.TempDir()
	writeCSV(t, src, "a.csv", 2)
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.csv"), []byte("row,file\n0,b.csv\n"), 0o644))
	writeCSV(t, src, "c.csv", 1)

	out := filepath.Join(t.TempDir(), "all.tbla")
	report, err := New(WithConfirmer(AutoConfirm(false)), WithLogger(quiet())).Convert(src, testOptions(out))
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), out)
	assert.Equal(t, 1, report.Partitions)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, []string{"a.csv", "a.csv"}, storedRows(t, out))
}

func TestConvert_NoMatchingFiles(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("x\n1\n"), 0o644))

	out := filepath.Join(t.TempDir(), "all.tbla")
	for _, small := range []bool{false, true} {
		opts := testOptions(out)
		opts.Small = small
		report, err := New(WithConfirmer(AutoConfirm(false)), WithLogger(quiet())).Convert(src, opts)
		require.NoError(t, err)
		assert.Zero(t, report.Rows)
		assert.Zero(t, report.Partitions)
	}
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestConvert_InvalidInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "all.tbla")
	c := New(WithConfirmer(AutoConfirm(true)), WithLogger(quiet()))

	opts := testOptions(out)
	opts.Chunks = -1
	_, err := c.Convert(t.TempDir(), opts)
	assert.ErrorIs(t, err, util.ErrInvalidChunks)

	file := filepath.Join(t.TempDir(), "file.csv")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0o644))
	_, err = c.Convert(file, testOptions(out))
	assert.ErrorIs(t, err, util.ErrExpectedDirectory)
}

func TestOptionsMode(t *testing.T) {
	tests := []struct {
		chunks int
		small  bool
		want   Mode
	}{
		{0, true, ModeBulk},
		{0, false, ModeStreaming},
		{3, true, ModePartitioned},
		{1, false, ModePartitioned},
	}
	for _, tt := range tests {
		opts := Options{Chunks: tt.chunks, Small: tt.small}
		if got := opts.Mode(); got != tt.want {
			t.Errorf("Options{Chunks: %d, Small: %v}.Mode() = %s, want %s", tt.chunks, tt.small, got, tt.want)
		}
	}
}
