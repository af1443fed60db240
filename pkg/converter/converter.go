package converter

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/dendrascience/tabarchive/archive"
	"github.com/dendrascience/tabarchive/table"
	"github.com/dendrascience/tabarchive/util"
)

// Sink persists a batch into the archive at path.
type Sink interface {
	Write(b *table.Batch, path string, opts archive.WriteOptions) (archive.WriteResult, error)
}

// Converter wires the reader, sink and confirmation collaborators together.
type Converter struct {
	Reader  table.Reader
	Sink    Sink
	Confirm Confirmer
	Log     *slog.Logger
}

// Option customizes a Converter built by New.
type Option func(*Converter)

func WithReader(r table.Reader) Option { return func(c *Converter) { c.Reader = r } }

func WithSink(s Sink) Option { return func(c *Converter) { c.Sink = s } }

func WithConfirmer(cf Confirmer) Option { return func(c *Converter) { c.Confirm = cf } }

func WithLogger(l *slog.Logger) Option { return func(c *Converter) { c.Log = l } }

// New returns a Converter reading CSV, writing archives and prompting on the
// terminal, with any of those replaced by opts.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, o := range opts {
		o(c)
	}
	c.defaults()
	return c
}

func (c *Converter) defaults() {
	if c.Reader == nil {
		c.Reader = table.CSVReader{}
	}
	if c.Sink == nil {
		c.Sink = archive.Writer{}
	}
	if c.Confirm == nil {
		c.Confirm = NewPromptConfirmer()
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
}

// Report summarizes a finished (or aborted) conversion.
type Report struct {
	Mode Mode
	// Files is the number of files read.
	Files int
	// Partitions is the number of writes made to the archive.
	Partitions int
	// Rows is the number of rows written.
	Rows int
	// PeakBatchRows is the largest batch held in memory at once.
	PeakBatchRows int
}

// Convert reads the files in folder ending with opts.Suffix, in ascending
// filename order, and writes them to opts.OutPath.
//
// If the destination already exists the Confirmer is asked once; a refusal
// returns ErrDestinationExists without writing. The first read or write
// error stops the conversion. Partitions written before the error stay in
// the archive and the returned Report counts them.
func (c *Converter) Convert(folder string, opts Options) (Report, error) {
	c.defaults()
	opts, err := opts.validate()
	if err != nil {
		return Report{}, err
	}
	report := Report{Mode: opts.Mode()}

	names, err := util.ListMatching(folder, opts.Suffix)
	if err != nil {
		return report, err
	}

	exists, err := archive.Exists(opts.OutPath)
	if err != nil {
		return report, err
	}
	if exists {
		ok, err := c.Confirm.Confirm(fmt.Sprintf("%s already exists. Write into it?", opts.OutPath), "y", "n")
		if err != nil {
			return report, fmt.Errorf("confirming overwrite: %w", err)
		}
		if !ok {
			return report, fmt.Errorf("%w: %s", ErrDestinationExists, opts.OutPath)
		}
	}

	f := &flusher{c: c, opts: opts, report: &report}
	switch report.Mode {
	case ModeBulk:
		err = f.group(folder, names)
	case ModeStreaming:
		for _, name := range names {
			if err = f.group(folder, []string{name}); err != nil {
				break
			}
		}
	case ModePartitioned:
		var groups [][]string
		groups, err = util.Partition(names, opts.Chunks)
		if err != nil {
			return report, err
		}
		for _, g := range groups {
			if len(g) == 0 {
				continue
			}
			if err = f.group(folder, g); err != nil {
				break
			}
		}
	}
	if err != nil {
		return report, err
	}
	c.Log.Info("conversion finished",
		"mode", report.Mode,
		"files", report.Files,
		"partitions", report.Partitions,
		"rows", report.Rows,
		"out", opts.OutPath)
	return report, nil
}

// flusher loads one group of files at a time and hands it to the sink.
// The first flush uses the configured write mode and append flag; every
// later flush appends to what the earlier ones wrote.
type flusher struct {
	c       *Converter
	opts    Options
	report  *Report
	flushes int
}

func (f *flusher) group(folder string, names []string) error {
	log := f.c.Log
	for _, name := range names {
		log.Debug("reading file", "mode", f.report.Mode, "file", name)
	}
	b, err := table.LoadFiles(folder, names, f.opts.Suffix, f.c.Reader, f.opts.Read)
	if err != nil {
		return err
	}
	f.report.Files += len(names)
	rows := b.NumRows()
	if rows > f.report.PeakBatchRows {
		f.report.PeakBatchRows = rows
	}
	if b.NumColumns() == 0 {
		log.Debug("nothing to write", "mode", f.report.Mode, "files", len(names))
		return nil
	}

	wo := f.opts.Write
	if f.flushes > 0 {
		wo.Mode = archive.ModeAppend
		wo.Append = true
	}
	res, err := f.c.Sink.Write(b, f.opts.OutPath, wo)
	b.Release()
	if err != nil {
		return fmt.Errorf("writing %s: %w", f.opts.OutPath, err)
	}
	f.flushes++
	f.report.Partitions++
	f.report.Rows += rows
	log.Info("partition written",
		"mode", f.report.Mode,
		"partition", f.flushes,
		"files", len(names),
		"rows", rows,
		"total", res.TotalRows)

	if f.opts.ReclaimMemory {
		debug.FreeOSMemory()
	}
	return nil
}
