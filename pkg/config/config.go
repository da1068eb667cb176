package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent by the direct fetch strategy and the gallery downloader
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/39.0.2171.95 Safari/537.36"

// Config holds all configuration options for wallgrab
type Config struct {
	// Input files
	Sources SourcesConfig `yaml:"sources" toml:"sources" json:"sources"`

	// Output locations
	Output OutputConfig `yaml:"output" toml:"output" json:"output"`

	// Download settings and routing tokens
	Download DownloadConfig `yaml:"download" toml:"download" json:"download"`

	// Delay between successful downloads
	Pacing PacingConfig `yaml:"pacing" toml:"pacing" json:"pacing"`

	// Optional ceiling on outgoing HTTP requests
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`

	// Reachability probe used after failures
	Connectivity ConnectivityConfig `yaml:"connectivity" toml:"connectivity" json:"connectivity"`

	// Aspect ratio classification
	Classify ClassifyConfig `yaml:"classify" toml:"classify" json:"classify"`

	// Browser-driven link harvesting
	Harvester HarvesterConfig `yaml:"harvester" toml:"harvester" json:"harvester"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
}

// SourcesConfig points at the sources listing and the harvested links cache
type SourcesConfig struct {
	File      string `yaml:"file" toml:"file" json:"file"`
	LinksFile string `yaml:"links_file" toml:"links_file" json:"links_file"`
}

// OutputConfig holds output file and directory locations
type OutputConfig struct {
	WallpapersDir string `yaml:"wallpapers_dir" toml:"wallpapers_dir" json:"wallpapers_dir"`
	FailedFile    string `yaml:"failed_file" toml:"failed_file" json:"failed_file"`
	ManifestDir   string `yaml:"manifest_dir" toml:"manifest_dir" json:"manifest_dir"`
	LinkRoot      string `yaml:"link_root" toml:"link_root" json:"link_root"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout        time.Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	UserAgent      string        `yaml:"user_agent" toml:"user_agent" json:"user_agent"`
	OriginToken    string        `yaml:"origin_token" toml:"origin_token" json:"origin_token"`
	GalleryToken   string        `yaml:"gallery_token" toml:"gallery_token" json:"gallery_token"`
	ExtractorCmd   string        `yaml:"extractor_command" toml:"extractor_command" json:"extractor_command"`
	ExtractorArgs  []string      `yaml:"extractor_args" toml:"extractor_args" json:"extractor_args"`
	OutputTemplate string        `yaml:"output_template" toml:"output_template" json:"output_template"`
}

// PacingConfig bounds the random delay, in whole seconds, after each saved download
type PacingConfig struct {
	MinSeconds int `yaml:"min_seconds" toml:"min_seconds" json:"min_seconds"`
	MaxSeconds int `yaml:"max_seconds" toml:"max_seconds" json:"max_seconds"`
}

// RateLimitConfig caps outgoing HTTP requests. Zero disables the ceiling.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" toml:"requests_per_minute" json:"requests_per_minute"`
}

// ConnectivityConfig configures the reachability probe
type ConnectivityConfig struct {
	ProbeURL    string        `yaml:"probe_url" toml:"probe_url" json:"probe_url"`
	Timeout     time.Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	Interval    time.Duration `yaml:"interval" toml:"interval" json:"interval"`
	MaxInterval time.Duration `yaml:"max_interval" toml:"max_interval" json:"max_interval"`
	Backoff     string        `yaml:"backoff" toml:"backoff" json:"backoff"`
}

// ClassifyConfig holds the bucket boundaries and skipped extensions
type ClassifyConfig struct {
	MobileMax          float64  `yaml:"mobile_max" toml:"mobile_max" json:"mobile_max"`
	SquareMax          float64  `yaml:"square_max" toml:"square_max" json:"square_max"`
	ExcludedExtensions []string `yaml:"excluded_extensions" toml:"excluded_extensions" json:"excluded_extensions"`
}

// HarvesterConfig configures the browser session that collects links
type HarvesterConfig struct {
	OriginURL  string `yaml:"origin_url" toml:"origin_url" json:"origin_url"`
	DriverBin  string `yaml:"driver_bin" toml:"driver_bin" json:"driver_bin"`
	Headless   bool   `yaml:"headless" toml:"headless" json:"headless"`
	PageSort   string `yaml:"page_sort" toml:"page_sort" json:"page_sort"`
	PageWindow string `yaml:"page_window" toml:"page_window" json:"page_window"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file" toml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			File:      "subreddits.txt",
			LinksFile: "links.txt",
		},
		Output: OutputConfig{
			WallpapersDir: "wallpapers",
			FailedFile:    "failed.txt",
			ManifestDir:   ".",
			LinkRoot:      ".",
		},
		Download: DownloadConfig{
			Timeout:        30 * time.Second,
			UserAgent:      DefaultUserAgent,
			OriginToken:    "old.reddit.com",
			GalleryToken:   "imgur",
			ExtractorCmd:   "yt-dlp",
			OutputTemplate: "%(title)s.%(ext)s",
		},
		Pacing: PacingConfig{
			MinSeconds: 2,
			MaxSeconds: 4,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Connectivity: ConnectivityConfig{
			ProbeURL:    "http://www.google.com",
			Timeout:     10 * time.Second,
			Interval:    time.Second,
			MaxInterval: 30 * time.Second,
			Backoff:     "constant",
		},
		Classify: ClassifyConfig{
			MobileMax:          0.7,
			SquareMax:          1.3,
			ExcludedExtensions: []string{".gif", ".mp4"},
		},
		Harvester: HarvesterConfig{
			OriginURL:  "https://old.reddit.com",
			Headless:   false,
			PageSort:   "top",
			PageWindow: "all",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("WALLGRAB_SOURCES_FILE"); v != "" {
		c.Sources.File = v
	}
	if v := os.Getenv("WALLGRAB_LINKS_FILE"); v != "" {
		c.Sources.LinksFile = v
	}
	if v := os.Getenv("WALLGRAB_OUTPUT_DIR"); v != "" {
		c.Output.WallpapersDir = v
	}
	if v := os.Getenv("WALLGRAB_FAILED_FILE"); v != "" {
		c.Output.FailedFile = v
	}
	if v := os.Getenv("WALLGRAB_USER_AGENT"); v != "" {
		c.Download.UserAgent = v
	}
	if v := os.Getenv("WALLGRAB_PROBE_URL"); v != "" {
		c.Connectivity.ProbeURL = v
	}
	if v := os.Getenv("WALLGRAB_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WALLGRAB_REQUESTS_PER_MINUTE: %w", err)
		}
		c.RateLimit.RequestsPerMinute = n
	}
	if v := os.Getenv("WALLGRAB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	// Kept for compatibility with existing setups of the harvester
	if v := os.Getenv("WALLPAPER_DRIVER"); v != "" {
		c.Harvester.DriverBin = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or TOML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"wallgrab.yaml",
		"wallgrab.yml",
		"wallgrab.toml",
		filepath.Join(home, ".config", "wallgrab", "config.yaml"),
		filepath.Join(home, ".config", "wallgrab", "config.toml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Sources.LinksFile == "" {
		errs = append(errs, errors.New("links file is required"))
	}
	if c.Output.WallpapersDir == "" {
		errs = append(errs, errors.New("wallpapers directory is required"))
	}
	if c.Output.FailedFile == "" {
		errs = append(errs, errors.New("failed ledger file is required"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.OriginToken == "" {
		errs = append(errs, errors.New("origin token is required"))
	}
	if c.Download.GalleryToken == "" {
		errs = append(errs, errors.New("gallery token is required"))
	}

	if c.Pacing.MinSeconds < 0 || c.Pacing.MaxSeconds < c.Pacing.MinSeconds {
		errs = append(errs, errors.New("pacing requires 0 <= min_seconds <= max_seconds"))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Connectivity.ProbeURL == "" {
		errs = append(errs, errors.New("probe URL is required"))
	}
	if c.Connectivity.Timeout <= 0 {
		errs = append(errs, errors.New("probe timeout must be positive"))
	}
	switch strings.ToLower(c.Connectivity.Backoff) {
	case "constant":
	case "exponential":
		if c.Connectivity.MaxInterval <= 0 {
			errs = append(errs, errors.New("exponential probe backoff requires a positive max_interval"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid probe backoff %q", c.Connectivity.Backoff))
	}

	if c.Classify.MobileMax <= 0 || c.Classify.SquareMax <= c.Classify.MobileMax {
		errs = append(errs, errors.New("classify requires 0 < mobile_max < square_max"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.WallpapersDir = v
	}
	if v, ok := flags["links-file"].(string); ok && v != "" {
		c.Sources.LinksFile = v
	}
	if v, ok := flags["sources-file"].(string); ok && v != "" {
		c.Sources.File = v
	}
	if v, ok := flags["failed-file"].(string); ok && v != "" {
		c.Output.FailedFile = v
	}
	if v, ok := flags["manifest-dir"].(string); ok && v != "" {
		c.Output.ManifestDir = v
	}
	if v, ok := flags["link-root"].(string); ok && v != "" {
		c.Output.LinkRoot = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wallgrab.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
