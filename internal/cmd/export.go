package cmd

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/dendrascience/tabarchive/archive"
	"github.com/dendrascience/tabarchive/table"
	"github.com/spf13/cobra"
)

// NewExportCmd creates and returns the export subcommand for the tabarchive CLI.
// It writes a table, or a filtered subset of it, as delimited text.
func NewExportCmd() *cobra.Command {
	var (
		key       string
		where     string
		column    string
		value     string
		output    string
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "export ARCHIVE",
		Short: "Write a table of an archive as CSV",
		Long: `Write the table stored under --key as delimited text with a header record.

--where takes a CEL expression evaluated per row, with the row's cells in the
map "row" and its position in "index", for example:

  tabarchive export all.tbla --where 'row.station == "A1" && int(row.count) > 10'

--column and --value select rows through the per-part index of a data column,
skipping parts that cannot contain the value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if column == "" && cmd.Flags().Changed("value") {
				return errors.New("--value requires --column")
			}
			if column != "" && where != "" {
				return errors.New("--where cannot be combined with --column")
			}
			if utf8.RuneCountInString(delimiter) != 1 {
				return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
			}
			d, _ := utf8.DecodeRuneInString(delimiter)
			return runExport(cmd, args[0], key, where, column, value, output, d)
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", archive.DefaultKey, "Table key to export")
	cmd.Flags().StringVarP(&where, "where", "w", "", "CEL row filter")
	cmd.Flags().StringVar(&column, "column", "", "Data column to look up")
	cmd.Flags().StringVar(&value, "value", "", "Value to look up in --column")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Field delimiter of the output")

	return cmd
}

func runExport(cmd *cobra.Command, path, key, where, column, value, output string, delimiter rune) error {
	r, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var b *table.Batch
	if column != "" {
		b, err = r.Lookup(key, column, value)
	} else {
		b, err = r.Select(key, where)
	}
	if err != nil {
		return err
	}

	if output == "-" || output == "" {
		if err := table.WriteCSV(cmd.OutOrStdout(), b, delimiter); err != nil {
			return err
		}
	} else if err := writeFile(output, b, delimiter); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows from %s[%s]\n", b.NumRows(), path, key)
	return nil
}

func writeFile(path string, b *table.Batch, delimiter rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := table.WriteCSV(f, b, delimiter)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("writing %s: %w", path, werr)
	}
	return nil
}
