// Package archivefs exposes an archive file as a read-only FUSE filesystem.
//
// The mount root holds manifest.json and one <key>.csv file per stored
// table. Reading a table file renders the whole table as comma separated
// text with a header record. Every modifying operation fails with EROFS.
//
// The main entry point is NewFS, whose result is served with bazil.org/fuse.
package archivefs
