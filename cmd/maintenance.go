package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// RecomputeCmd rebuilds every stored channel and user counter from the messages.
var RecomputeCmd = &cobra.Command{
	Use:   "recompute-totals",
	Short: "Recompute stored channel and user totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := loadStore()
		if err != nil {
			return err
		}
		defer db.Close()

		report, err := db.RecomputeAllTotals(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Recomputed %d channel(s) and %d user(s), %d failed\n", report.Channels, report.Users, report.Failed)
		if report.Failed > 0 {
			return fmt.Errorf("%d owner(s) could not be recomputed", report.Failed)
		}
		return nil
	},
}

var (
	exportOutput   string
	exportExcludes []string
)

// ExportCmd writes a plain transcript of every human message.
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a plain text transcript",
	Long: `Write every non-empty message from human authors as "[author] content",
one per line, oldest first.

Example:
  discord-archive export --output transcript.txt --exclude-channel announcements`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var shiftBy time.Duration

// ShiftCmd moves every stored message timestamp by a fixed offset.
var ShiftCmd = &cobra.Command{
	Use:   "shift-timestamps",
	Short: "Shift every message timestamp by a duration",
	Long: `Add a fixed duration to every stored message timestamp. Use it to
correct archives recorded with a wrong clock.

Example:
  discord-archive shift-timestamps --by -5h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if shiftBy == 0 {
			return fmt.Errorf("--by must be a non-zero duration")
		}
		_, db, err := loadStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ShiftTimestamps(cmd.Context(), shiftBy)
		if err != nil {
			return err
		}
		fmt.Printf("Shifted %s message(s) by %s\n", humanize.Comma(n), shiftBy)
		return nil
	},
}

func init() {
	addConfigFlag(RecomputeCmd)
	addConfigFlag(ExportCmd)
	addConfigFlag(ShiftCmd)

	ExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "Output file, - for stdout")
	ExportCmd.Flags().StringSliceVar(&exportExcludes, "exclude-channel", nil, "Channel name to leave out (repeatable)")
	ShiftCmd.Flags().DurationVar(&shiftBy, "by", 0, "Duration to add, negative to move back")
}

func runExport(cmd *cobra.Command, args []string) error {
	_, db, err := loadStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var w io.Writer = os.Stdout
	if exportOutput != "-" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}
	buf := bufio.NewWriter(w)

	n, err := db.ExportTranscript(cmd.Context(), buf, exportExcludes)
	if err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %s message(s)\n", humanize.Comma(int64(n)))
	return nil
}
