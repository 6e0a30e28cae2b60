package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "urlsync",
		Short: "URL query-parameter state synchronization for server-driven web UIs",
		Long: `urlsync keeps application state in the browser address bar.

It serializes parameter objects to the query string, writes them through
history push/replace, and re-derives state on back/forward navigation.
The serve command runs a demo server exposing the websocket bridge, a
saved-views API, and Prometheus metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("urlsync %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
