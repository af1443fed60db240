package archive

import "errors"

// Sentinel errors for package archive.
var (
	// Write errors
	ErrSchemaMismatch     = errors.New("columns do not match the existing table")
	ErrFixedNotAppendable = errors.New("can only append to tables in table format")
	ErrEmptyBatch         = errors.New("batch has no columns")
	ErrInvalidMode        = errors.New("invalid archive mode")
	ErrInvalidFormat      = errors.New("invalid table format")

	// Read errors
	ErrArchiveNotFound = errors.New("archive does not exist")
	ErrKeyNotFound     = errors.New("no table stored under key")
	ErrNotIndexed      = errors.New("column is not a data column")
	ErrCorruptArchive  = errors.New("archive is corrupt")
)
