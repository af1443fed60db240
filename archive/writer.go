package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dendrascience/tabarchive/table"
	"github.com/google/uuid"
)

// WriteResult describes what a Write added to the archive.
type WriteResult struct {
	// Path is the archive file written.
	Path string
	// Key is the table written to.
	Key string
	// PartID identifies the new part; empty when no rows were written.
	PartID string
	// Rows is the number of rows added by this write.
	Rows int
	// TotalRows is the table's row count after the write.
	TotalRows int
}

// Writer is the default sink used by the converter.
type Writer struct{}

// Write implements the converter's sink by delegating to the package-level Write.
func (Writer) Write(b *table.Batch, path string, opts WriteOptions) (WriteResult, error) {
	return Write(b, path, opts)
}

// Exists reports whether something is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Write stores b under opts.Key in the archive at path.
//
// With Append set, rows are added after the rows already stored under the
// key; the batch columns must then match the stored columns exactly. Without
// Append the key's previous contents are replaced. Other keys are untouched
// unless the mode is ModeWrite, which starts from an empty archive.
func Write(b *table.Batch, path string, opts WriteOptions) (WriteResult, error) {
	opts, err := opts.normalize()
	if err != nil {
		return WriteResult{}, err
	}
	if b == nil || b.NumColumns() == 0 {
		return WriteResult{}, ErrEmptyBatch
	}
	result := WriteResult{Path: path, Key: opts.Key}

	exists, err := Exists(path)
	if err != nil {
		return result, err
	}
	if opts.Mode == ModeReadWrite && !exists {
		return result, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
	}

	now := time.Now().UTC()
	manifest := newManifest(now)
	var src *zip.ReadCloser
	if exists && opts.Mode != ModeWrite {
		src, err = zip.OpenReader(path)
		if err != nil {
			return result, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, path, err)
		}
		defer src.Close()
		manifest, err = readManifest(&src.Reader)
		if err != nil {
			return result, err
		}
	}

	columns := b.Columns()
	existing := manifest.Tables[opts.Key]
	replace := existing != nil && !opts.Append
	if existing != nil && opts.Append {
		if existing.Format == FormatFixed {
			return result, fmt.Errorf("%w: key %q is stored as %s", ErrFixedNotAppendable, opts.Key, existing.Format)
		}
		if !table.SameColumns(existing.Columns, columns) {
			return result, fmt.Errorf("%w: key %q has columns %v, batch has %v", ErrSchemaMismatch, opts.Key, existing.Columns, columns)
		}
		if b.NumRows() == 0 {
			result.TotalRows = existing.Rows
			return result, nil
		}
	}

	info := existing
	if info == nil || replace {
		info = &TableInfo{
			Key:         opts.Key,
			Format:      opts.Format,
			Columns:     columns,
			DataColumns: opts.indexed(columns),
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return result, err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	registerCodecs(zw)

	if src != nil {
		prefix := tablePrefix(opts.Key)
		for _, f := range src.File {
			if f.Name == manifestName {
				continue
			}
			if replace && strings.HasPrefix(f.Name, prefix) {
				continue
			}
			if err := zw.Copy(f); err != nil {
				return result, fmt.Errorf("copying %s: %w", f.Name, err)
			}
		}
	}

	if n := b.NumRows(); n > 0 {
		part := PartInfo{ID: uuid.New().String(), Rows: n, Written: now}
		if err := writePart(zw, info, part.ID, b); err != nil {
			return result, err
		}
		info.Parts = append(info.Parts, part)
		info.Rows += n
		result.PartID = part.ID
		result.Rows = n
	}
	manifest.Tables[opts.Key] = info
	manifest.Updated = now
	result.TotalRows = info.Rows

	if err := writeManifest(zw, manifest); err != nil {
		return result, err
	}
	if err := zw.Close(); err != nil {
		return result, err
	}
	if err := tmp.Close(); err != nil {
		return result, err
	}
	perm := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return result, err
	}
	if src != nil {
		src.Close()
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return result, err
	}
	committed = true
	return result, nil
}

func writePart(zw *zip.Writer, info *TableInfo, partID string, b *table.Batch) error {
	for i := 0; i < b.NumColumns(); i++ {
		cells, err := b.ColumnAt(i)
		if err != nil {
			return err
		}
		if err := writeCells(zw, columnEntry(info.Key, partID, i), cells); err != nil {
			return fmt.Errorf("writing column %q: %w", info.Columns[i], err)
		}
		if !info.IsDataColumn(info.Columns[i]) {
			continue
		}
		if err := writeCells(zw, indexEntry(info.Key, partID, i), distinct(cells)); err != nil {
			return fmt.Errorf("writing index for %q: %w", info.Columns[i], err)
		}
	}
	return nil
}
