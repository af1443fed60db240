package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dendrascience/tabarchive/archive"
	"github.com/dendrascience/tabarchive/internal/logging"
	"github.com/dendrascience/tabarchive/pkg/converter"
	"github.com/dendrascience/tabarchive/util"
	"github.com/spf13/cobra"
)

type convertFlags struct {
	out         string
	chunks      int
	small       bool
	suffix      string
	key         string
	mode        string
	noAppend    bool
	format      string
	dataColumns string
	delimiter   string
	noHeader    bool
	encoding    string
	yes         bool
	dryRun      bool
	verbose     bool
}

// NewConvertCmd creates and returns the convert subcommand for the tabarchive CLI.
// It packs the matching files of one folder into a table of an archive.
func NewConvertCmd() *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert FOLDER",
		Short: "Pack a folder of delimited files into an archive",
		Long: `Read every file in FOLDER ending with the suffix, in ascending filename order,
and append their rows to one table of the archive.

Without --chunks each file is read and written on its own, keeping at most one
file in memory. --small loads the whole folder and writes once. --chunks N
splits the sorted file list into N contiguous groups and writes one part per
group; the last group takes the remainder.

If the archive already exists you are asked once before anything is written,
unless --yes is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.out, "out", "o", converter.DefaultOutPath, "Archive file to write")
	cmd.Flags().IntVarP(&f.chunks, "chunks", "c", 0, "Number of partitions (0 disables partitioning)")
	cmd.Flags().BoolVar(&f.small, "small", false, "Load the whole folder at once and write a single part")
	cmd.Flags().StringVar(&f.suffix, "suffix", converter.DefaultSuffix, "Only read files ending with this suffix")
	cmd.Flags().StringVarP(&f.key, "key", "k", archive.DefaultKey, "Table key inside the archive")
	cmd.Flags().StringVar(&f.mode, "mode", string(archive.ModeAppend), "Archive file mode: a, w or r+")
	cmd.Flags().BoolVar(&f.noAppend, "no-append", false, "Replace the table instead of appending to it")
	cmd.Flags().StringVar(&f.format, "format", string(archive.FormatTable), "Format of a new table: table or fixed")
	cmd.Flags().StringVar(&f.dataColumns, "data-columns", "all", "Indexed columns: all, none or a comma separated list")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", ",", "Field delimiter of the input files")
	cmd.Flags().BoolVar(&f.noHeader, "no-header", false, "Input files have no header record")
	cmd.Flags().StringVar(&f.encoding, "encoding", "utf-8", "Input encoding: utf-8, utf-16, utf-16le, utf-16be or latin1")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Write into an existing archive without asking")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Show the partition plan without reading or writing")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log every file read")

	return cmd
}

func runConvert(cmd *cobra.Command, folder string, f convertFlags) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("out") {
		f.out = cfg.Convert.Out
	}
	if !flags.Changed("suffix") {
		f.suffix = cfg.Convert.Suffix
	}
	if !flags.Changed("key") {
		f.key = cfg.Convert.Key
	}
	if !flags.Changed("format") {
		f.format = cfg.Convert.Format
	}
	if !flags.Changed("chunks") {
		f.chunks = cfg.Convert.Chunks
	}
	if !flags.Changed("delimiter") {
		f.delimiter = cfg.Convert.Delimiter
	}

	opts, err := f.options()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.dryRun {
		return printPlan(cmd, folder, opts)
	}

	logger := slog.Default()
	if f.verbose {
		logger = logging.SetupWriter(cmd.ErrOrStderr(), "debug", cfg.Logging.Format)
	}
	var confirm converter.Confirmer = &converter.PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	if f.yes {
		confirm = converter.AutoConfirm(true)
	}

	c := converter.New(converter.WithConfirmer(confirm), converter.WithLogger(logger))
	report, err := c.Convert(folder, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d rows from %d files to %s (key %q, %s mode, %d parts, largest batch %d rows)\n",
		report.Rows, report.Files, opts.OutPath, opts.Write.Key, report.Mode, report.Partitions, report.PeakBatchRows)
	return nil
}

func (f convertFlags) options() (converter.Options, error) {
	opts := converter.DefaultOptions()
	opts.OutPath = f.out
	opts.Chunks = f.chunks
	opts.Small = f.small
	opts.Suffix = f.suffix

	if utf8.RuneCountInString(f.delimiter) != 1 {
		return opts, fmt.Errorf("delimiter must be a single character, got %q", f.delimiter)
	}
	opts.Read.Delimiter, _ = utf8.DecodeRuneInString(f.delimiter)
	opts.Read.NoHeader = f.noHeader
	opts.Read.Encoding = f.encoding

	mode, err := archive.ParseMode(f.mode)
	if err != nil {
		return opts, err
	}
	format, err := archive.ParseFormat(f.format)
	if err != nil {
		return opts, err
	}
	opts.Write.Key = f.key
	opts.Write.Mode = mode
	opts.Write.Format = format
	opts.Write.Append = !f.noAppend && format != archive.FormatFixed

	switch strings.ToLower(f.dataColumns) {
	case "all":
		opts.Write.DataColumns = true
	case "none", "":
		opts.Write.DataColumns = false
	default:
		opts.Write.DataColumns = false
		for _, c := range strings.Split(f.dataColumns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.Write.DataColumnNames = append(opts.Write.DataColumnNames, c)
			}
		}
	}
	return opts, nil
}

func printPlan(cmd *cobra.Command, folder string, opts converter.Options) error {
	names, err := util.ListMatching(folder, opts.Suffix)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "DRY RUN - %d files, %s mode, writing %s\n", len(names), opts.Mode(), opts.OutPath)

	var groups [][]string
	switch opts.Mode() {
	case converter.ModeBulk:
		groups = [][]string{names}
	case converter.ModeStreaming:
		for _, n := range names {
			groups = append(groups, []string{n})
		}
	case converter.ModePartitioned:
		if groups, err = util.Partition(names, opts.Chunks); err != nil {
			return err
		}
	}
	for i, g := range groups {
		if len(g) == 0 {
			fmt.Fprintf(out, "  part %d: empty, skipped\n", i+1)
			continue
		}
		fmt.Fprintf(out, "  part %d: %d files (%s .. %s)\n", i+1, len(g), g[0], g[len(g)-1])
	}
	return nil
}
