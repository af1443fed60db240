package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestLoadAll_SortedConcatenation(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"2024_01_02_00_00_00.csv": "id,v\n3,c\n4,d\n",
		"2024_01_01_00_00_00.csv": "id,v\n1,a\n2,b\n",
		"notes.txt":               "ignored\n",
	})

	b, err := LoadAll(dir, ".csv", CSVReader{}, DefaultReadOptions())
	require.NoError(t, err)
	ids, _ := b.Column("id")
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
}

func TestLoadAll_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x\n1\n"})

	b, err := LoadAll(dir, ".csv", nil, DefaultReadOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, b.NumColumns())
	assert.Equal(t, 0, b.NumRows())
}

func TestLoadFiles_SkipsOtherSuffixes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.csv": "n\n1\n",
		"b.tsv": "n\n2\n",
		"c.csv": "n\n3\n",
	})

	b, err := LoadFiles(dir, []string{"c.csv", "b.tsv", "a.csv"}, ".csv", CSVReader{}, DefaultReadOptions())
	require.NoError(t, err)
	n, _ := b.Column("n")
	assert.Equal(t, []string{"3", "1"}, n)
}

func TestLoadFiles_ReadErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.csv": "a,b\n1\n"})

	_, err := LoadFiles(dir, []string{"bad.csv"}, ".csv", CSVReader{}, DefaultReadOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRaggedRow)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestConcat_ColumnUnion(t *testing.T) {
	a, _ := FromColumns([]string{"x", "y"}, [][]string{{"1"}, {"2"}})
	b, _ := FromColumns([]string{"y", "z"}, [][]string{{"3", "4"}, {"5", "6"}})

	out := Concat(a, nil, b)
	assert.Equal(t, []string{"x", "y", "z"}, out.Columns())
	require.Equal(t, 3, out.NumRows())
	assert.Equal(t, []string{"1", "2", ""}, out.Row(0))
	assert.Equal(t, []string{"", "3", "5"}, out.Row(1))
	assert.Equal(t, []string{"", "4", "6"}, out.Row(2))
}

func TestConcat_Empty(t *testing.T) {
	out := Concat()
	assert.Equal(t, 0, out.NumColumns())
	assert.Equal(t, 0, out.NumRows())
}
