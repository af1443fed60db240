package table

import "errors"

var (
	ErrRaggedRow        = errors.New("row width does not match column count")
	ErrUnknownEncoding  = errors.New("unknown text encoding")
	ErrColumnOutOfRange = errors.New("column index out of range")
)
