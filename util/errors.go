package util

import "errors"

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Timestamp codec errors
	ErrUnsupportedType = errors.New("unsupported timestamp type")
	ErrMalformedToken  = errors.New("malformed filename token")

	// File and directory errors
	ErrExpectedDirectory = errors.New("expected directory but got file")

	// Partition plan errors
	ErrInvalidChunks = errors.New("chunk count must not be negative")
)
