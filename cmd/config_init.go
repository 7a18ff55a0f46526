package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linanwx/tripbot/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the tripbot configuration",
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config.yaml",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configInitForce {
		fmt.Println("Config already exists at:", path)
		fmt.Println("Use --force to overwrite it.")
		return nil
	}
	if err := config.DefaultConfig().SaveFile(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println("Config written to:", path)
	return nil
}
