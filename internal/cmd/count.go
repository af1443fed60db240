package cmd

import (
	"fmt"

	"github.com/dendrascience/tabarchive/pkg/converter"
	"github.com/dendrascience/tabarchive/util"
	"github.com/spf13/cobra"
)

// NewCountCmd creates and returns the count subcommand for the tabarchive CLI.
// It counts the files a conversion of the folder would read.
func NewCountCmd() *cobra.Command {
	var (
		suffix string
		chunks int
	)

	cmd := &cobra.Command{
		Use:   "count [FOLDER]",
		Short: "Count the files a conversion would read",
		Long: `Count the files directly inside FOLDER (default: the current directory) whose
names end with the suffix. Subdirectories are not descended into, matching
what convert reads. With --chunks the group sizes of the partition plan are
printed as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := "./"
			if len(args) > 0 {
				folder = args[0]
			}
			return runCount(cmd, folder, suffix, chunks)
		},
	}

	cmd.Flags().StringVar(&suffix, "suffix", converter.DefaultSuffix, "Only count files ending with this suffix")
	cmd.Flags().IntVarP(&chunks, "chunks", "c", 0, "Also print the partition plan for this many chunks")

	return cmd
}

func runCount(cmd *cobra.Command, folder, suffix string, chunks int) error {
	out := cmd.OutOrStdout()
	if chunks == 0 {
		n, err := util.CountMatching(folder, suffix)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Total files: %d\n", n)
		return nil
	}

	names, err := util.ListMatching(folder, suffix)
	if err != nil {
		return err
	}
	groups, err := util.Partition(names, chunks)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total files: %d\n", len(names))
	fmt.Fprintf(out, "Group sizes: %v\n", util.GroupSizes(groups))
	return nil
}
