package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/config"
	"github.com/jackzampolin/promptvault/internal/home"
	"github.com/jackzampolin/promptvault/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "promptvault",
	Short: "A personal library for AI prompts",
	Long: `promptvault keeps your AI prompts organized by category, target model
and tags, with instant search and saved quick filters.

It runs as a small local server hosting the prompt library page and the
desktop window controls; every operation is also available from the CLI
through "promptvault api".`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.promptvault/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "promptvault home directory (default: ~/.promptvault)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory, creating it if needed.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// loadConfig loads the config from --config, ./config.yaml or the home directory.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	return config.NewManager(cfgFile, h.Path())
}
