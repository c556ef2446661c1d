package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/T21C/tuf-backend-sub003/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tufsearch",
	Short: "Search index service for the chart and pass database",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("tufsearch %s (%s, built %s)\n", version.Version, version.Commit, version.Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reindexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
