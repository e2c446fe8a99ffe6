// Package cmd holds the roomchat command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roomchat",
	Short: "Real-time room chat server",
	Long: `roomchat serves a websocket chat where users join named rooms.

Configuration is read from the environment and an optional .env file.
Use "roomchat config" to see the effective settings.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Int("port", 0, "listen port (overrides PORT)")
	rootCmd.PersistentFlags().String("host", "", "listen host (overrides HOST)")
}
