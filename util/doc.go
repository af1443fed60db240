// Package util provides the small building blocks shared by the tabarchive tools.
//
// Key Components:
//
// Filename Tokens:
//   - Timestamp is a closed set of three representations (NativeDateTime,
//     ExternalTimestamp, MinuteTimestamp), all normalized to minute resolution
//   - Encode turns a timestamp into a sortable token such as "2024_03_05_14_07_00"
//   - Decode parses a token back into a MinuteTimestamp
//
// Directory Listing:
//   - ListMatching lists the files of one directory (non-recursive) that end
//     with a suffix, in ascending byte-wise order
//   - CountMatching counts them without building the list
//
// Partition Plans:
//   - Partition splits a sorted listing into contiguous chunks, the last chunk
//     receiving the remainder
package util
