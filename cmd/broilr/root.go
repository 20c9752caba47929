package main

import (
	"fmt"
	"os"

	"github.com/aretw0/broilr/internal/cli"
	"github.com/aretw0/broilr/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "broilr",
	Short: "Broilr is a conversational cooking assistant",
	Long: `Broilr walks you through discovering, generating and cooking a recipe,
one step at a time, in a chat or over voice.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCodeFor(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to the configuration file (default ./"+config.DefaultFile+")")
	flags.Bool("debug", false, "Enable verbose debug logging")
	flags.Bool("offline", false, "Use the built-in in-memory kitchen instead of the backend service")
	flags.String("backend-url", "", "Base URL of the recipe backend")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
}

// loadConfig reads the configuration and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flags.Changed("offline") {
		cfg.Backend.Offline, _ = flags.GetBool("offline")
	}
	if flags.Changed("backend-url") {
		cfg.Backend.URL, _ = flags.GetString("backend-url")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRuntime loads the configuration and wires a runtime for cmd.
// The caller must Close it.
func newRuntime(cmd *cobra.Command, withMetrics bool) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.NewRuntime(cfg, debug, withMetrics)
}
