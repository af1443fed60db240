// Package main provides the tabarchive command-line interface.
//
// tabarchive packs folders of delimited text files into a single columnar
// archive file and reads them back. The binary supports these subcommands:
//   - convert: pack a folder into a table, in bulk, file by file or in chunks
//   - inspect: describe and verify the tables of an archive
//   - export: write a table, a CEL selection or an index lookup as CSV
//   - mount: serve an archive as a read-only FUSE filesystem
//   - token: convert between timestamps and YYYY_MM_DD_HH_MM_SS tokens
//   - count: count the files a conversion would read
//   - seed: generate token-named CSV files for testing
package main
