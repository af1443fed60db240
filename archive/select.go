package archive

import (
	"fmt"
	"strings"

	"github.com/dendrascience/tabarchive/table"
	"github.com/google/cel-go/cel"
)

// rowFilter wraps a compiled CEL program evaluated once per row. An empty
// expression keeps every row.
type rowFilter struct {
	prog    cel.Program
	enabled bool
}

// newRowFilter compiles expr against two variables: row, a map of column
// name to cell text, and index, the row's position within the table.
//
//	row.station == "A1" && int(row.count) > 10
func newRowFilter(expr string) (rowFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return rowFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("index", cel.IntType),
	)
	if err != nil {
		return rowFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return rowFilter{}, iss.Err()
	}
	if out := ast.OutputType(); out.String() != cel.BoolType.String() {
		return rowFilter{}, fmt.Errorf("filter %q yields %s, expected bool", expr, out)
	}
	prog, err := env.Program(ast)
	if err != nil {
		return rowFilter{}, err
	}
	return rowFilter{prog: prog, enabled: true}, nil
}

// Eval reports whether the row passes. Evaluation errors, such as a cell
// that does not parse as a number, reject the row.
func (f rowFilter) Eval(row map[string]string, index int) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"row":   row,
		"index": int64(index),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Select returns the rows of the table for which the CEL expression where
// evaluates to true, decoding one part at a time.
func (r *Reader) Select(key, where string) (*table.Batch, error) {
	t, ok := r.manifest.Tables[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	filter, err := newRowFilter(where)
	if err != nil {
		return nil, fmt.Errorf("compiling filter: %w", err)
	}
	matches := make([]*table.Batch, 0, len(t.Parts))
	offset := 0
	err = r.Parts(key, func(p PartInfo, b *table.Batch) error {
		base := offset
		matches = append(matches, b.Filter(func(row int) bool {
			return filter.Eval(b.RowMap(row), base+row)
		}))
		offset += p.Rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return table.NewBatch(t.Columns), nil
	}
	return table.Concat(matches...), nil
}
