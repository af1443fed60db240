package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dendrascience/tabarchive/util"
	"github.com/spf13/cobra"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NewTokenCmd creates and returns the token subcommand for the tabarchive CLI.
// Its children convert between timestamps and filename tokens.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Convert between timestamps and filename tokens",
		Long: `Filename tokens have the form YYYY_MM_DD_HH_MM_SS at minute resolution, so the
seconds field is always 00. They sort in time order and are safe in file names.`,
	}
	cmd.AddCommand(newTokenEncodeCmd(), newTokenDecodeCmd())
	return cmd
}

func newTokenEncodeCmd() *cobra.Command {
	var nanos bool

	cmd := &cobra.Command{
		Use:   "encode VALUE...",
		Short: "Encode timestamps as filename tokens",
		Long: `Encode each VALUE as a filename token. Values are RFC 3339 timestamps or
"YYYY-MM-DD HH:MM" in UTC; with --ns they are nanoseconds since the Unix epoch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				ts, err := parseTimestamp(arg, nanos)
				if err != nil {
					return err
				}
				token, err := util.Encode(ts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&nanos, "ns", false, "Values are nanoseconds since the Unix epoch")
	return cmd
}

func newTokenDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode TOKEN...",
		Short: "Decode filename tokens into timestamps",
		Long: `Decode each TOKEN and print the minute it names in ISO 8601 form. A file
name such as 2024_03_05_14_07_00.csv is accepted; the extension is ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				token := arg
				if i := strings.IndexByte(token, '.'); i >= 0 {
					token = token[:i]
				}
				m, err := util.Decode(token)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

func parseTimestamp(s string, nanos bool) (util.Timestamp, error) {
	if nanos {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a nanosecond count", util.ErrUnsupportedType, s)
		}
		return util.ExternalTimestamp(n), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return util.NativeDateTime{Time: t}, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot parse %q as a time", util.ErrUnsupportedType, s)
}
