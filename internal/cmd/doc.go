// Package cmd provides the command-line interface implementation for tabarchive.
//
// It uses the Cobra library for command structure and Fang for styling. Each
// command lives in its own file with a NewXxxCmd constructor:
//   - convert: pack a folder of delimited files into an archive
//   - inspect: list tables, columns and parts, optionally verifying them
//   - export: write a table, a CEL selection or an index lookup as CSV
//   - mount: serve an archive as a read-only FUSE filesystem
//   - token: encode timestamps as filename tokens and back
//   - count: count the files a conversion would read
//   - seed: generate token-named CSV files for trying the converter
package cmd
