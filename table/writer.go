package table

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes b to w as delimited text with a header record.
// A zero delimiter means ','.
func WriteCSV(w io.Writer, b *Batch, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if err := cw.Write(b.Columns()); err != nil {
		return err
	}
	for i := 0; i < b.NumRows(); i++ {
		if err := cw.Write(b.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
