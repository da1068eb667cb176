package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"wallgrab/pkg/config"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool

	levelOverride string

	// Console destinations, swapped out in tests
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	console = ui.NewConsole(ui.Options{})
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wallgrab",
	Short: "Harvest wallpaper links, download them and sort them by aspect ratio",
	Long: `wallgrab collects image links from subreddit listings, downloads every
link into a single wallpapers directory and classifies the result into
mobile, square and landscape sets.

Links that fail to download are appended to a failure ledger so they can be
handled by hand later. After every failure the run pauses until the network
is reachable again.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		console = ui.NewConsoleWithWriters(stdout, stderr, ui.Options{Quiet: quiet, NoColor: noColor})

		// Logs stay out of the way of the progress output unless asked for
		switch {
		case cmd.Flags().Changed("log-level"):
			levelOverride = logLevel
		case !verbose:
			levelOverride = "error"
		}

		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Parent() == cmd.Root() && cmd.Name() != "config" {
			console.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		console.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./wallgrab.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show log output alongside progress")

	rootCmd.SetVersionTemplate(`wallgrab {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads configuration with flags taking precedence and
// initializes the global logger from it
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if levelOverride != "" {
		flags["log-level"] = levelOverride
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
