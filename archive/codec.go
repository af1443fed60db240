package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// columnMethod is the zip compression method used for column and index entries.
const columnMethod = zstd.ZipMethodWinZip

func registerCodecs(zw *zip.Writer) {
	zw.RegisterCompressor(columnMethod, zstd.ZipCompressor())
}

func registerDecoders(zr *zip.Reader) {
	zr.RegisterDecompressor(columnMethod, zstd.ZipDecompressor())
}

// writeCells stores a slice of cells as one compressed CBOR entry.
func writeCells(zw *zip.Writer, name string, cells []string) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: columnMethod})
	if err != nil {
		return err
	}
	return cbor.NewEncoder(w).Encode(cells)
}

func readCells(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var cells []string
	if err := cbor.NewDecoder(rc).Decode(&cells); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, f.Name, err)
	}
	return cells, nil
}

// distinct returns the sorted distinct values of cells.
func distinct(cells []string) []string {
	seen := make(map[string]struct{}, len(cells))
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// containsSorted reports whether value is present in the sorted slice.
func containsSorted(sorted []string, value string) bool {
	i := sort.SearchStrings(sorted, value)
	return i < len(sorted) && sorted[i] == value
}
