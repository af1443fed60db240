package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dendrascience/tabarchive/util"
)

// LoadAll reads every file in folder ending with suffix, in ascending
// filename order, and concatenates them into one batch. A folder without
// matching files yields an empty batch and no error.
func LoadAll(folder, suffix string, r Reader, opts ReadOptions) (*Batch, error) {
	names, err := util.ListMatching(folder, suffix)
	if err != nil {
		return nil, err
	}
	return LoadFiles(folder, names, suffix, r, opts)
}

// LoadFiles reads the named files from folder in the order given and
// concatenates them. Names not ending with suffix are ignored.
func LoadFiles(folder string, names []string, suffix string, r Reader, opts ReadOptions) (*Batch, error) {
	if r == nil {
		r = CSVReader{}
	}
	batches := make([]*Batch, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		path := filepath.Join(folder, name)
		b, err := r.ReadFile(path, opts)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		batches = append(batches, b)
	}
	out := Concat(batches...)
	for _, b := range batches {
		b.Release()
	}
	return out, nil
}

// Concat stacks batches vertically in argument order. The result has the
// union of all column names in order of first appearance; a batch lacking a
// column contributes empty cells for it.
func Concat(batches ...*Batch) *Batch {
	var columns []string
	pos := make(map[string]int)
	total := 0
	for _, b := range batches {
		if b == nil {
			continue
		}
		for _, c := range b.columns {
			if _, ok := pos[c]; !ok {
				pos[c] = len(columns)
				columns = append(columns, c)
			}
		}
		total += b.NumRows()
	}

	out := NewBatch(columns)
	for c := range out.cells {
		out.cells[c] = make([]string, 0, total)
	}
	for _, b := range batches {
		if b == nil {
			continue
		}
		n := b.NumRows()
		for c, name := range out.columns {
			if src, ok := b.Column(name); ok {
				out.cells[c] = append(out.cells[c], src...)
				continue
			}
			out.cells[c] = append(out.cells[c], make([]string, n)...)
		}
	}
	return out
}
