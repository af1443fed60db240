// Package table holds the in-memory tabular data model shared by the loader,
// the archive and the converter.
//
// A Batch is an ordered set of named string columns of equal length. Batches
// are built by a Reader (CSVReader for delimited text), combined with Concat,
// and loaded from a folder with LoadAll or LoadFiles. No type inference or
// schema enforcement is performed: every cell is kept as the text it was read
// as, and columns from different files are matched by name only.
package table
