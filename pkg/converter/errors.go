package converter

import "errors"

// ErrDestinationExists is returned when the output archive already exists
// and the user declined to write into it.
var ErrDestinationExists = errors.New("destination exists and was not confirmed")
