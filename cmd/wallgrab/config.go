package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wallgrab/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage wallgrab configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (WALLGRAB_*)
  - .env files
  - Configuration file (YAML or TOML)
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the default values",
	Long: `Create a configuration file holding every option at its default value.

The file is created in the current directory as 'wallgrab.yaml' unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging defaults, the config file,
.env files and environment variables.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the configuration for syntax errors and invalid values.

This command checks:
  - YAML or TOML syntax
  - Pacing bounds
  - Connectivity backoff kind
  - Classification thresholds
  - Log level`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "wallgrab.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s (remove it first to overwrite)", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	console.PrintSuccess("Configuration file created: " + configPath)
	console.Println("\nNext steps:")
	console.Println("1. List your sources in subreddits.txt, one '<name> <pages>' per line")
	console.Println("2. Run 'wallgrab config validate' to check the configuration")
	console.Println("3. Start downloading with 'wallgrab download'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	console.PrintHighlight("Current Configuration")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(configFile, nil); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}
	console.PrintSuccess("Configuration is valid")
	return nil
}
