package cmd

import (
	"context"
	"fmt"

	"github.com/dendrascience/tabarchive/internal/config"
	"github.com/dendrascience/tabarchive/internal/logging"
	"github.com/dendrascience/tabarchive/version"
	"github.com/spf13/cobra"
)

type configKey struct{}

// NewRootCmd creates and returns the root cobra command for the tabarchive CLI.
// It sets up all subcommands, command groups and the shared logging flags.
func NewRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "tabarchive",
		Short: "tabarchive - pack folders of delimited files into a columnar archive",
		Long: `tabarchive packs folders of delimited text files into a single columnar archive.

Files are read in filename order and appended as parts of a named table, in one
pass, one file at a time, or in a fixed number of contiguous chunks to bound
memory use. Archives can be inspected, exported, filtered and mounted read-only.

Defaults come from TABARCHIVE_* environment variables, a .env file and
~/.tabarchive; flags override them.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Logging.Format = logFormat
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			cmd.SetContext(context.WithValue(contextOf(cmd), configKey{}, cfg))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	groupArchive := "archive"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupArchive,
		Title: "Archive Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	for _, c := range []*cobra.Command{NewConvertCmd(), NewInspectCmd(), NewExportCmd(), NewMountCmd()} {
		c.GroupID = groupArchive
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewTokenCmd(), NewCountCmd(), NewSeedCmd()} {
		c.GroupID = groupUtilities
		rootCmd.AddCommand(c)
	}

	return rootCmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// configFrom returns the configuration loaded by the root command, or the
// built-in defaults when a subcommand runs on its own.
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	if cfg, ok := contextOf(cmd).Value(configKey{}).(*config.Config); ok {
		return cfg, nil
	}
	cfg, err := config.LoadReader(nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	return cfg, nil
}
