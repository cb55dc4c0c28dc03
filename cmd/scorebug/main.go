package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appVersion = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "scorebug",
	Short:   "Follow a baseball game and render a broadcast overlay",
	Version: appVersion,
	Long: `scorebug polls a live game feed, keeps the game state in sync and renders
the scoreboard overlay that the encoder composites over the camera feed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("SCOREBUG_CONFIG"), "Path to a YAML config file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scorebug: %s\n", err)
		os.Exit(1)
	}
}

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	Execute()
}
