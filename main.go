package main

import (
	"fmt"
	"log"
	"os"

	"discord-archive/cmd"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "discord-archive",
	Short: "Archive chat messages and serve statistics over them",
	Long: `Records guild messages into a SQLite archive and serves statistics,
browsing and profile endpoints over HTTP.

Commands:
  serve             Run the HTTP API, the bot and the scheduler
  recompute-totals  Rebuild stored channel and user counters
  export            Write a plain text transcript
  shift-timestamps  Move every message timestamp by a duration`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("discord-archive %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Date: %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(cmd.ServeCmd)
	rootCmd.AddCommand(cmd.RecomputeCmd)
	rootCmd.AddCommand(cmd.ExportCmd)
	rootCmd.AddCommand(cmd.ShiftCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
