// Package converter turns a folder of delimited files into tables inside a
// single archive file.
//
// Three modes bound memory differently. Bulk loads every file and writes
// once. Streaming reads, writes and releases one file at a time. Partitioned
// splits the sorted file list into a fixed number of contiguous groups and
// writes each group as one part.
//
// Before anything is written to a destination that already exists, the
// configured Confirmer is asked exactly once whether to continue.
package converter
