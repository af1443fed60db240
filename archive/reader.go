package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"

	"github.com/dendrascience/tabarchive/table"
)

// Reader gives read access to an archive file.
type Reader struct {
	path     string
	zr       *zip.ReadCloser
	manifest *Manifest
	files    map[string]*zip.File
}

// Open opens the archive at path for reading.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, path, err)
	}
	registerDecoders(&zr.Reader)
	m, err := readManifest(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, err
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return &Reader{path: path, zr: zr, manifest: m, files: files}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// Path returns the archive file path.
func (r *Reader) Path() string {
	return r.path
}

// Manifest returns the archive manifest. It must not be modified.
func (r *Reader) Manifest() *Manifest {
	return r.manifest
}

// Keys lists the stored tables in sorted order.
func (r *Reader) Keys() []string {
	return r.manifest.Keys()
}

// Info describes the table stored under key.
func (r *Reader) Info(key string) (TableInfo, error) {
	t, ok := r.manifest.Tables[key]
	if !ok {
		return TableInfo{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return t.clone(), nil
}

// Parts calls fn with each part of the table in write order. Only one part
// is held in memory at a time; fn must not retain the batch past the call
// if memory matters.
func (r *Reader) Parts(key string, fn func(PartInfo, *table.Batch) error) error {
	t, ok := r.manifest.Tables[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	for _, p := range t.Parts {
		b, err := r.readPart(t, p)
		if err != nil {
			return err
		}
		if err := fn(p, b); err != nil {
			return err
		}
	}
	return nil
}

// Read loads the whole table stored under key.
func (r *Reader) Read(key string) (*table.Batch, error) {
	t, ok := r.manifest.Tables[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	parts := make([]*table.Batch, 0, len(t.Parts))
	err := r.Parts(key, func(_ PartInfo, b *table.Batch) error {
		parts = append(parts, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return table.NewBatch(t.Columns), nil
	}
	return table.Concat(parts...), nil
}

// Lookup returns the rows whose column equals value. The column must be a
// data column; parts whose index lacks value are skipped without decoding
// their cells.
func (r *Reader) Lookup(key, column, value string) (*table.Batch, error) {
	t, ok := r.manifest.Tables[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	col := t.columnIndex(column)
	if col < 0 || !t.IsDataColumn(column) {
		return nil, fmt.Errorf("%w: %q in table %q", ErrNotIndexed, column, key)
	}
	matches := make([]*table.Batch, 0)
	for _, p := range t.Parts {
		hit, err := r.partHas(t, p, col, value)
		if err != nil {
			return nil, err
		}
		if !hit {
			continue
		}
		b, err := r.readPart(t, p)
		if err != nil {
			return nil, err
		}
		cells, _ := b.ColumnAt(col)
		matches = append(matches, b.Filter(func(row int) bool { return cells[row] == value }))
	}
	if len(matches) == 0 {
		return table.NewBatch(t.Columns), nil
	}
	return table.Concat(matches...), nil
}

// PartsScanned reports how many parts a Lookup for value would decode.
func (r *Reader) PartsScanned(key, column, value string) (int, error) {
	t, ok := r.manifest.Tables[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	col := t.columnIndex(column)
	if col < 0 || !t.IsDataColumn(column) {
		return 0, fmt.Errorf("%w: %q in table %q", ErrNotIndexed, column, key)
	}
	n := 0
	for _, p := range t.Parts {
		hit, err := r.partHas(t, p, col, value)
		if err != nil {
			return 0, err
		}
		if hit {
			n++
		}
	}
	return n, nil
}

func (r *Reader) partHas(t *TableInfo, p PartInfo, col int, value string) (bool, error) {
	name := indexEntry(t.Key, p.ID, col)
	f, ok := r.files[name]
	if !ok {
		return false, fmt.Errorf("%w: missing %s", ErrCorruptArchive, name)
	}
	values, err := readCells(f)
	if err != nil {
		return false, err
	}
	return containsSorted(values, value), nil
}

func (r *Reader) readPart(t *TableInfo, p PartInfo) (*table.Batch, error) {
	cells := make([][]string, len(t.Columns))
	for i := range t.Columns {
		name := columnEntry(t.Key, p.ID, i)
		f, ok := r.files[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrCorruptArchive, name)
		}
		c, err := readCells(f)
		if err != nil {
			return nil, err
		}
		if len(c) != p.Rows {
			return nil, fmt.Errorf("%w: %s holds %d rows, manifest says %d", ErrCorruptArchive, name, len(c), p.Rows)
		}
		cells[i] = c
	}
	return table.FromColumns(t.Columns, cells)
}

// Verify decodes every part of every table and checks it against the
// manifest. It returns one error per problem found.
func (r *Reader) Verify() []error {
	var problems []error
	for _, key := range r.Keys() {
		t := r.manifest.Tables[key]
		total := 0
		for _, p := range t.Parts {
			total += p.Rows
			if _, err := r.readPart(t, p); err != nil {
				problems = append(problems, fmt.Errorf("table %q part %s: %w", key, p.ID, err))
				continue
			}
			for _, dc := range t.DataColumns {
				col := t.columnIndex(dc)
				if col < 0 {
					problems = append(problems, fmt.Errorf("%w: table %q data column %q is not a column", ErrCorruptArchive, key, dc))
					continue
				}
				if _, ok := r.files[indexEntry(key, p.ID, col)]; !ok {
					problems = append(problems, fmt.Errorf("%w: table %q part %s lacks index for %q", ErrCorruptArchive, key, p.ID, dc))
				}
			}
		}
		if total != t.Rows {
			problems = append(problems, fmt.Errorf("%w: table %q parts hold %d rows, manifest says %d", ErrCorruptArchive, key, total, t.Rows))
		}
	}
	return problems
}
