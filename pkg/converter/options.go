package converter

import (
	"fmt"

	"github.com/dendrascience/tabarchive/archive"
	"github.com/dendrascience/tabarchive/table"
	"github.com/dendrascience/tabarchive/util"
)

// DefaultOutPath is where the archive is written when no path is given.
const DefaultOutPath = "./all.tbla"

// DefaultSuffix selects the files a folder conversion reads.
const DefaultSuffix = ".csv"

// Mode is the conversion strategy picked from Options.
type Mode string

const (
	ModeBulk        Mode = "bulk"
	ModeStreaming   Mode = "streaming"
	ModePartitioned Mode = "partitioned"
)

// Options configures one Convert call.
type Options struct {
	// OutPath is the archive file to write.
	OutPath string
	// Chunks is the number of partitions; 0 disables partitioning.
	Chunks int
	// Small loads the whole folder at once when Chunks is 0.
	Small bool
	// Suffix filters the folder listing.
	Suffix string
	// Read is handed to the table reader for every file.
	Read table.ReadOptions
	// Write is handed to the sink for every flush.
	Write archive.WriteOptions
	// ReclaimMemory returns freed memory to the OS after each flush.
	ReclaimMemory bool
}

// DefaultOptions returns the options used by the convert command.
func DefaultOptions() Options {
	return Options{
		OutPath:       DefaultOutPath,
		Suffix:        DefaultSuffix,
		Read:          table.DefaultReadOptions(),
		Write:         archive.DefaultWriteOptions(),
		ReclaimMemory: true,
	}
}

// Mode reports which strategy Convert uses for these options.
func (o Options) Mode() Mode {
	switch {
	case o.Chunks > 0:
		return ModePartitioned
	case o.Small:
		return ModeBulk
	default:
		return ModeStreaming
	}
}

func (o Options) validate() (Options, error) {
	if o.Chunks < 0 {
		return o, fmt.Errorf("%w: %d", util.ErrInvalidChunks, o.Chunks)
	}
	if o.OutPath == "" {
		o.OutPath = DefaultOutPath
	}
	return o, nil
}
