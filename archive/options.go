package archive

import "fmt"

// Mode controls how an existing archive file is treated by Write.
type Mode string

const (
	// ModeAppend opens the archive, creating it when missing.
	ModeAppend Mode = "a"
	// ModeWrite truncates the archive before writing.
	ModeWrite Mode = "w"
	// ModeReadWrite requires the archive to exist already.
	ModeReadWrite Mode = "r+"
)

// Format is the storage layout of one table.
type Format string

const (
	FormatTable Format = "table"
	FormatFixed Format = "fixed"
)

// DefaultKey is the table key used when none is given.
const DefaultKey = "main"

// WriteOptions configures a single Write.
type WriteOptions struct {
	// Key addresses the table inside the archive (default "main").
	Key string
	// Mode is the file mode (default ModeAppend).
	Mode Mode
	// Append adds rows after the existing ones instead of replacing the table.
	Append bool
	// Format of a newly created table (default FormatTable).
	Format Format
	// DataColumns indexes every column for Lookup.
	DataColumns bool
	// DataColumnNames indexes only the named columns. It takes precedence
	// over DataColumns when non-empty.
	DataColumnNames []string
}

// DefaultWriteOptions returns key "main", mode "a", append, table format and
// every column indexed.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Key:         DefaultKey,
		Mode:        ModeAppend,
		Append:      true,
		Format:      FormatTable,
		DataColumns: true,
	}
}

// ParseMode accepts "a", "w" and "r+".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAppend, ModeWrite, ModeReadWrite:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// ParseFormat accepts "table"/"t" and "fixed"/"f".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "table", "t":
		return FormatTable, nil
	case "fixed", "f":
		return FormatFixed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// normalize fills unset fields with defaults and validates the rest.
func (o WriteOptions) normalize() (WriteOptions, error) {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.Mode == "" {
		o.Mode = ModeAppend
	}
	if o.Format == "" {
		o.Format = FormatTable
	}
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return o, err
	}
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return o, err
	}
	if o.Append && o.Format == FormatFixed {
		return o, ErrFixedNotAppendable
	}
	return o, nil
}

// indexed returns the subset of columns that become data columns.
func (o WriteOptions) indexed(columns []string) []string {
	if o.Format == FormatFixed {
		return nil
	}
	if len(o.DataColumnNames) > 0 {
		want := make(map[string]bool, len(o.DataColumnNames))
		for _, c := range o.DataColumnNames {
			want[c] = true
		}
		var out []string
		for _, c := range columns {
			if want[c] {
				out = append(out, c)
			}
		}
		return out
	}
	if o.DataColumns {
		return append([]string(nil), columns...)
	}
	return nil
}
