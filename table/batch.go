package table

import (
	"fmt"
	"strconv"
)

// Batch is a column-major table of string cells.
type Batch struct {
	columns []string
	cells   [][]string
	index   map[string]int
}

// NewBatch creates an empty batch with the given column names.
// Duplicate names are disambiguated as name.1, name.2 and so on.
func NewBatch(columns []string) *Batch {
	b := &Batch{
		columns: dedupeColumns(columns),
		cells:   make([][]string, len(columns)),
	}
	b.reindex()
	return b
}

// FromColumns builds a batch that takes ownership of the given column slices.
// Every column must have the same length.
func FromColumns(columns []string, cells [][]string) (*Batch, error) {
	if len(columns) != len(cells) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrRaggedRow, len(columns), len(cells))
	}
	for i := 1; i < len(cells); i++ {
		if len(cells[i]) != len(cells[0]) {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", ErrRaggedRow, columns[i], len(cells[i]), len(cells[0]))
		}
	}
	b := &Batch{columns: dedupeColumns(columns), cells: cells}
	b.reindex()
	return b, nil
}

func (b *Batch) reindex() {
	b.index = make(map[string]int, len(b.columns))
	for i, c := range b.columns {
		b.index[c] = i
	}
}

// Columns returns the column names in order.
func (b *Batch) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

func (b *Batch) NumColumns() int {
	return len(b.columns)
}

func (b *Batch) NumRows() int {
	if b == nil || len(b.cells) == 0 {
		return 0
	}
	return len(b.cells[0])
}

// Column returns the cells of the named column.
func (b *Batch) Column(name string) ([]string, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}
	return b.cells[i], true
}

// ColumnAt returns the cells of the i-th column.
func (b *Batch) ColumnAt(i int) ([]string, error) {
	if i < 0 || i >= len(b.cells) {
		return nil, ErrColumnOutOfRange
	}
	return b.cells[i], nil
}

// Row copies out the i-th row.
func (b *Batch) Row(i int) []string {
	row := make([]string, len(b.cells))
	for c := range b.cells {
		row[c] = b.cells[c][i]
	}
	return row
}

// RowMap returns the i-th row keyed by column name.
func (b *Batch) RowMap(i int) map[string]string {
	row := make(map[string]string, len(b.cells))
	for c, name := range b.columns {
		row[name] = b.cells[c][i]
	}
	return row
}

// AppendRow adds one row. The row must have one cell per column.
func (b *Batch) AppendRow(row []string) error {
	if len(row) != len(b.columns) {
		return fmt.Errorf("%w: got %d cells, expected %d", ErrRaggedRow, len(row), len(b.columns))
	}
	for c, v := range row {
		b.cells[c] = append(b.cells[c], v)
	}
	return nil
}

// Filter returns a new batch holding the rows for which keep returns true.
func (b *Batch) Filter(keep func(row int) bool) *Batch {
	out := NewBatch(b.columns)
	for r := 0; r < b.NumRows(); r++ {
		if !keep(r) {
			continue
		}
		for c := range b.cells {
			out.cells[c] = append(out.cells[c], b.cells[c][r])
		}
	}
	return out
}

// Release drops the batch's cell storage so it can be reclaimed. The batch
// keeps its column names but holds no rows afterwards.
func (b *Batch) Release() {
	if b == nil {
		return
	}
	for c := range b.cells {
		b.cells[c] = nil
	}
}

// SameColumns reports whether two column lists are identical, in order.
func SameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dedupeColumns(columns []string) []string {
	out := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	for i, c := range columns {
		name := c
		for n := 1; used[name]; n++ {
			name = c + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
