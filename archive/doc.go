// Package archive implements the tabarchive container: a single zip file
// holding any number of named tables stored column by column.
//
// Layout of an archive file:
//
//	manifest.json                      tables, columns, parts and row counts
//	tables/<key>/<part>/<n>.col        CBOR array of the n-th column's cells, zstd compressed
//	tables/<key>/<part>/<n>.idx        sorted distinct values of the n-th column (data columns only)
//
// Every Write with Append set adds one part after the existing ones, so the
// row order of a table is the order in which batches were written. Writes
// rebuild the container into a temporary file next to the target and rename
// it into place; already stored entries are copied without recompression.
//
// Tables come in two formats mirroring the usual HDF store semantics:
// FormatTable can be appended to and filtered by its data columns, while
// FormatFixed is written once and can only be replaced.
package archive
