package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader turns one source file into a Batch.
type Reader interface {
	ReadFile(path string, opts ReadOptions) (*Batch, error)
}

// ReadOptions configures how delimited text is parsed.
type ReadOptions struct {
	// Delimiter separates fields (default ',').
	Delimiter rune
	// Comment, when set, marks lines to ignore.
	Comment rune
	// NoHeader names the columns "0".."n-1" instead of taking them from the
	// first record.
	NoHeader bool
	// SkipRows drops that many records before the header.
	SkipRows int
	// LazyQuotes allows quotes in unquoted fields.
	LazyQuotes bool
	// TrimLeadingSpace ignores leading white space in a field.
	TrimLeadingSpace bool
	// Encoding of the input: utf-8 (default), utf-16, utf-16le, utf-16be or latin1.
	// A UTF-8 or UTF-16 byte order mark always takes precedence.
	Encoding string
}

// DefaultReadOptions returns comma separated, headed, UTF-8 input.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Delimiter: ',', Encoding: "utf-8"}
}

// CSVReader reads delimited text files.
type CSVReader struct{}

// ReadFile reads the whole file at path into a Batch.
func (CSVReader) ReadFile(path string, opts ReadOptions) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses delimited text from r. An empty input yields a batch with no
// columns; a header without records yields a batch with columns and no rows.
func Read(r io.Reader, opts ReadOptions) (*Batch, error) {
	decoded, err := decodeInput(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(decoded)
	cr.Comma = ','
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.Comment = opts.Comment
	cr.LazyQuotes = opts.LazyQuotes
	cr.TrimLeadingSpace = opts.TrimLeadingSpace
	// Widths are checked per row against the header, not against whatever
	// record happened to come first.
	cr.FieldsPerRecord = -1

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				return NewBatch(nil), nil
			}
			return nil, err
		}
	}

	first, err := cr.Read()
	if err == io.EOF {
		return NewBatch(nil), nil
	}
	if err != nil {
		return nil, err
	}

	var b *Batch
	if opts.NoHeader {
		names := make([]string, len(first))
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		b = NewBatch(names)
		if err := b.AppendRow(first); err != nil {
			return nil, err
		}
	} else {
		b = NewBatch(first)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.AppendRow(rec); err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return b, nil
}

// decodeInput wraps r so the csv reader always sees UTF-8 without a BOM.
func decodeInput(r io.Reader, encoding string) (io.Reader, error) {
	var fallback transform.Transformer
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "utf-8", "utf8":
		fallback = unicode.UTF8.NewDecoder()
	case "utf-16", "utf16":
		fallback = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case "utf-16le", "utf16le":
		fallback = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case "utf-16be", "utf16be":
		fallback = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case "latin1", "latin-1", "iso-8859-1":
		fallback = charmap.ISO8859_1.NewDecoder()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
	return transform.NewReader(r, unicode.BOMOverride(fallback)), nil
}
