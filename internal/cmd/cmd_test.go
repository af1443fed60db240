package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dendrascience/tabarchive/archive"
	"github.com/dendrascience/tabarchive/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, n := range []string{"TABARCHIVE_OUT", "TABARCHIVE_CHUNKS", "TABARCHIVE_KEY", "TABARCHIVE_SUFFIX", "TABARCHIVE_FORMAT", "TABARCHIVE_DELIMITER", "TABARCHIVE_LOG_LEVEL", "TABARCHIVE_LOG_FORMAT"} {
		t.Setenv(n, "")
	}

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommands(t *testing.T) {
	out, err := run(t, "", "token", "encode", "2024-03-05T14:07:59Z", "2024-03-05 14:07")
	require.NoError(t, err)
	assert.Equal(t, "2024_03_05_14_07_00\n2024_03_05_14_07_00\n", out)

	out, err = run(t, "", "token", "encode", "--ns", "1709647679000000000")
	require.NoError(t, err)
	assert.Equal(t, "2024_03_05_14_07_00\n", out)

	out, err = run(t, "", "token", "decode", "2024_03_05_14_07_00", "2024_03_05_14_07_00.csv")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T14:07:00\n2024-03-05T14:07:00\n", out)

	_, err = run(t, "", "token", "decode", "2024_03_05")
	assert.ErrorIs(t, err, util.ErrMalformedToken)

	_, err = run(t, "", "token", "encode", "yesterday")
	assert.ErrorIs(t, err, util.ErrUnsupportedType)
}

func TestSeedConvertInspectExport(t *testing.T) {
	src := filepath.Join(t.TempDir(), "seed")
	out, err := run(t, "", "seed", "--output", src, "--count", "5", "--rows", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 5 files")

	names, err := util.ListMatching(src, ".csv")
	require.NoError(t, err)
	require.Len(t, names, 5)
	assert.Equal(t, "2024_01_01_00_00_00.csv", names[0])
	assert.Equal(t, "2024_01_01_00_04_00.csv", names[4])

	out, err = run(t, "", "count", src, "--chunks", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Total files: 5")
	assert.Contains(t, out, "Group sizes: [2 3]")

	arch := filepath.Join(t.TempDir(), "all.tbla")
	out, err = run(t, "", "convert", src, "--out", arch, "--chunks", "2", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN - 5 files, partitioned mode")
	_, statErr := os.Stat(arch)
	require.True(t, os.IsNotExist(statErr))

	out, err = run(t, "", "convert", src, "--out", arch, "--chunks", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 20 rows from 5 files")

	out, err = run(t, "", "inspect", arch, "--verify", "--parts")
	require.NoError(t, err)
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "time*,station*,value*,id*")
	assert.Contains(t, out, "Verified 1 tables, 20 rows: OK")

	out, err = run(t, "", "export", arch, "--where", "index < 2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "time,station,value,id", lines[0])

	r, err := archive.Open(arch)
	require.NoError(t, err)
	b, err := r.Read(archive.DefaultKey)
	require.NoError(t, err)
	stations, _ := b.Column("station")
	require.NoError(t, r.Close())

	out, err = run(t, "", "export", arch, "--column", "station", "--value", stations[0])
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[1:] {
		assert.Contains(t, line, stations[0])
	}
}

func TestConvertAsksBeforeWritingExistingArchive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "seed")
	_, err := run(t, "", "seed", "--output", src, "--count", "2", "--rows", "1")
	require.NoError(t, err)

	arch := filepath.Join(t.TempDir(), "all.tbla")
	_, err = run(t, "", "convert", src, "--out", arch)
	require.NoError(t, err)
	before, err := os.ReadFile(arch)
	require.NoError(t, err)

	_, err = run(t, "maybe\nn\n", "convert", src, "--out", arch)
	require.Error(t, err)
	after, err := os.ReadFile(arch)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	out, err := run(t, "y\n", "convert", src, "--out", arch)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 rows")

	out, err = run(t, "", "inspect", arch)
	require.NoError(t, err)
	assert.Regexp(t, `main\s+table\s+4\s+4`, out)
}

func TestConvertRejectsBadFlags(t *testing.T) {
	src := t.TempDir()
	arch := filepath.Join(t.TempDir(), "all.tbla")

	_, err := run(t, "", "convert", src, "--out", arch, "--mode", "x")
	assert.ErrorIs(t, err, archive.ErrInvalidMode)

	_, err = run(t, "", "convert", src, "--out", arch, "--delimiter", "ab")
	assert.Error(t, err)

	_, err = run(t, "", "convert", src, "--out", arch, "--chunks=-1")
	assert.ErrorIs(t, err, util.ErrInvalidChunks)
}

func TestConvertUsesEnvironmentDefaults(t *testing.T) {
	src := filepath.Join(t.TempDir(), "seed")
	_, err := run(t, "", "seed", "--output", src, "--count", "3", "--rows", "2")
	require.NoError(t, err)

	arch := filepath.Join(t.TempDir(), "env.tbla")
	root := NewRootCmd()
	t.Setenv("TABARCHIVE_OUT", arch)
	t.Setenv("TABARCHIVE_KEY", "readings")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"convert", src})
	require.NoError(t, root.Execute())

	r, err := archive.Open(arch)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, []string{"readings"}, r.Keys())
}

func TestExportToFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "seed")
	_, err := run(t, "", "seed", "--output", src, "--count", "2", "--rows", "3")
	require.NoError(t, err)
	arch := filepath.Join(t.TempDir(), "all.tbla")
	_, err = run(t, "", "convert", src, "--out", arch)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "rows.tsv")
	out, err := run(t, "", "export", arch, "--output", dest, "--delimiter", "\t")
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "time\tstation\tvalue\tid", lines[0])

	_, err = run(t, "", "export", arch, "--output", filepath.Join(t.TempDir(), "missing", "rows.csv"))
	assert.Error(t, err)
}

func TestSeedRejectsUnencodableStart(t *testing.T) {
	_, err := run(t, "", "seed", "--output", t.TempDir(), "--count", "2", "--rows", "1", "--start", "9999-12-31T23:59:00Z")
	assert.ErrorIs(t, err, util.ErrUnsupportedType)
}
