package cmd

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dendrascience/tabarchive/table"
	"github.com/dendrascience/tabarchive/util"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the tabarchive CLI.
// It generates token-named CSV files for trying out the converter.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		fileCount  int
		rowCount   int
		start      string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate token-named CSV files for testing",
		Long: `Generate CSV files for testing tabarchive conversions.

File names are filename tokens one minute apart starting at --start, so they
sort in time order. Each file holds --rows records with the columns time,
station, value and id. Stations are drawn from a small pool of UUIDs so the
station column works well as an indexed data column.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t0, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			return runSeed(cmd, outputPath, fileCount, rowCount, t0, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&fileCount, "count", "c", 100, "Number of files to generate")
	cmd.Flags().IntVarP(&rowCount, "rows", "r", 60, "Number of rows per file")
	cmd.Flags().StringVar(&start, "start", "2024-01-01T00:00:00Z", "Time of the first file (RFC 3339)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

func runSeed(cmd *cobra.Command, outputPath string, fileCount, rowCount int, start time.Time, verbose bool) error {
	if fileCount < 0 || rowCount < 0 {
		return fmt.Errorf("--count and --rows must be non-negative")
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	stations := make([]string, 8)
	for i := range stations {
		stations[i] = uuid.New().String()
	}

	out := cmd.OutOrStdout()
	for i := 0; i < fileCount; i++ {
		minute := start.Add(time.Duration(i) * time.Minute)
		token, err := util.Encode(util.NativeDateTime{Time: minute})
		if err != nil {
			return err
		}

		b := table.NewBatch([]string{"time", "station", "value", "id"})
		for r := 0; r < rowCount; r++ {
			at := minute.Add(time.Duration(r) * time.Minute / time.Duration(max(rowCount, 1)))
			station, err := rand.Int(rand.Reader, big.NewInt(int64(len(stations))))
			if err != nil {
				return fmt.Errorf("picking station: %w", err)
			}
			value, err := rand.Int(rand.Reader, big.NewInt(10000))
			if err != nil {
				return fmt.Errorf("generating value: %w", err)
			}
			row := []string{
				at.Format(time.RFC3339Nano),
				stations[station.Int64()],
				strconv.FormatFloat(float64(value.Int64())/100, 'f', 2, 64),
				uuid.New().String(),
			}
			if err := b.AppendRow(row); err != nil {
				return err
			}
		}

		path := filepath.Join(outputPath, token+".csv")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		werr := table.WriteCSV(f, b, ',')
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("writing %s: %w", path, werr)
		}

		if verbose && (i+1)%100 == 0 {
			fmt.Fprintf(out, "Created %d/%d files...\n", i+1, fileCount)
		}
	}

	fmt.Fprintf(out, "Created %d files with %d rows each in %s\n", fileCount, rowCount, outputPath)
	return nil
}
