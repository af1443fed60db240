package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/tabarchive/archivefs"
	"github.com/dendrascience/tabarchive/version"
	"github.com/spf13/cobra"
)

// NewMountCmd creates and returns the mount subcommand for the tabarchive CLI.
// It serves an archive as a read-only FUSE filesystem.
func NewMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount ARCHIVE MOUNTPOINT",
		Short: "Mount an archive as a read-only filesystem",
		Long: `Mount ARCHIVE at MOUNTPOINT.

The mount holds manifest.json and one KEY.csv file per table. The archive is
reopened when it changes, so conversions into it show up without remounting.
The mountpoint must not contain the archive.`,
		Args: cobra.ExactArgs(2),
		RunE: runMount,
	}
}

func runMount(cmd *cobra.Command, args []string) error {
	archivePath := args[0]
	mountpoint := args[1]

	if pathsOverlap(archivePath, mountpoint) {
		return fmt.Errorf("mountpoint %s must not contain the archive %s", mountpoint, archivePath)
	}

	filesystem, err := archivefs.NewFS(archivePath)
	if err != nil {
		return err
	}
	defer filesystem.Close()

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("tabarchive"),
		fuse.Subtype("tabarchive"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		slog.Info("received interrupt signal, unmounting", "mountpoint", mountpoint)
		if err := fuse.Unmount(mountpoint); err != nil {
			slog.Error("unmount failed", "mountpoint", mountpoint, "error", err)
		}
	}()

	slog.Info("archive mounted",
		"version", version.GetVersion(),
		"archive", archivePath,
		"mountpoint", mountpoint)
	return fs.Serve(c, filesystem)
}

// pathsOverlap reports whether one path is the other or lies beneath it.
func pathsOverlap(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		absA, absB = filepath.Clean(a), filepath.Clean(b)
	}
	if absA == absB {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(absA, absB+sep) || strings.HasPrefix(absB, absA+sep)
}
