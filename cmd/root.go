// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:          "visabulletin",
	Short:        "Synchronizes the US visa bulletin priority dates into a relational store.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config.yaml (defaults to "+defaultConfigPath+" when present)")
}

// resolveConfigPath returns the explicit --config value, the default path if
// that file exists, or "" to run on defaults plus environment.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
