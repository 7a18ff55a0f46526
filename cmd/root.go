// Package cmd implements the tripbot command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linanwx/tripbot/config"
	"github.com/linanwx/tripbot/logger"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "tripbot",
	Short: "A travel-planning chat assistant",
	Long: `tripbot helps plan a family trip: collect preferences, chat with the
assistant, search mock flights and build a day-by-day itinerary.

Run 'tripbot serve' for the interactive terminal UI, 'tripbot serve --web'
for the browser UI, or 'tripbot plan' to fill in a form first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		config.SetConfigDir(configDir)
		return initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.tripbot)")
}

// Execute runs the root command.
func Execute() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() error {
	cfg, err := config.Load()
	if err != nil {
		// Keep going with defaults; the subcommand reports the load error.
		cfg = config.DefaultConfig()
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.BuildLoggerConfig(), dir); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
	}
	return nil
}
