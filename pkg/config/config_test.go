package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 0.7, config.Classify.MobileMax)
	assert.Equal(t, 1.3, config.Classify.SquareMax)
	assert.Equal(t, []string{".gif", ".mp4"}, config.Classify.ExcludedExtensions)
	assert.Equal(t, 2, config.Pacing.MinSeconds)
	assert.Equal(t, 4, config.Pacing.MaxSeconds)
	assert.Equal(t, "old.reddit.com", config.Download.OriginToken)
	assert.Equal(t, "imgur", config.Download.GalleryToken)
	assert.Equal(t, "failed.txt", config.Output.FailedFile)
	assert.Equal(t, 10*time.Second, config.Connectivity.Timeout)

	require.NoError(t, config.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WALLGRAB_OUTPUT_DIR", "/tmp/walls")
	t.Setenv("WALLGRAB_LINKS_FILE", "cached.txt")
	t.Setenv("WALLGRAB_REQUESTS_PER_MINUTE", "30")
	t.Setenv("WALLGRAB_LOG_LEVEL", "debug")
	t.Setenv("WALLPAPER_DRIVER", "/opt/chrome/chromium")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "/tmp/walls", config.Output.WallpapersDir)
	assert.Equal(t, "cached.txt", config.Sources.LinksFile)
	assert.Equal(t, 30, config.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "/opt/chrome/chromium", config.Harvester.DriverBin)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("WALLGRAB_REQUESTS_PER_MINUTE", "lots")

	config := DefaultConfig()
	assert.Error(t, config.LoadFromEnv())
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallgrab.yaml")
	content := `
output:
  wallpapers_dir: ./walls
pacing:
  min_seconds: 1
  max_seconds: 1
connectivity:
  probe_url: http://probe.local
  timeout: 3s
classify:
  mobile_max: 0.8
  square_max: 1.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, "./walls", config.Output.WallpapersDir)
	assert.Equal(t, 1, config.Pacing.MinSeconds)
	assert.Equal(t, "http://probe.local", config.Connectivity.ProbeURL)
	assert.Equal(t, 3*time.Second, config.Connectivity.Timeout)
	assert.Equal(t, 0.8, config.Classify.MobileMax)
	assert.Equal(t, 1.2, config.Classify.SquareMax)
	// untouched values keep their defaults
	assert.Equal(t, "imgur", config.Download.GalleryToken)
}

func TestLoadFromTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallgrab.toml")
	content := `
[download]
gallery_token = "gallery.example"
extractor_command = "youtube-dl"

[rate_limit]
requests_per_minute = 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, "gallery.example", config.Download.GalleryToken)
	assert.Equal(t, "youtube-dl", config.Download.ExtractorCmd)
	assert.Equal(t, 12, config.RateLimit.RequestsPerMinute)
}

func TestLoadFromFileErrors(t *testing.T) {
	config := DefaultConfig()
	assert.Error(t, config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pacing: [unclosed"), 0644))
	assert.Error(t, config.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"pacing inverted", func(c *Config) { c.Pacing.MinSeconds = 5; c.Pacing.MaxSeconds = 2 }},
		{"thresholds overlap", func(c *Config) { c.Classify.SquareMax = c.Classify.MobileMax }},
		{"zero mobile max", func(c *Config) { c.Classify.MobileMax = 0 }},
		{"no probe", func(c *Config) { c.Connectivity.ProbeURL = "" }},
		{"bad backoff", func(c *Config) { c.Connectivity.Backoff = "fibonacci" }},
		{"uncapped exponential backoff", func(c *Config) {
			c.Connectivity.Backoff = "exponential"
			c.Connectivity.MaxInterval = 0
		}},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
		{"no ledger", func(c *Config) { c.Output.FailedFile = "" }},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerMinute = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestValidateBackoffKindIgnoresCase(t *testing.T) {
	config := DefaultConfig()
	config.Connectivity.Backoff = "Exponential"
	assert.NoError(t, config.Validate())
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"output":    "./out",
		"link-root": "/srv/links",
		"log-level": "warn",
		"ignored":   42,
	})

	assert.Equal(t, "./out", config.Output.WallpapersDir)
	assert.Equal(t, "/srv/links", config.Output.LinkRoot)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.Output.WallpapersDir = "elsewhere"
	require.NoError(t, config.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "elsewhere", loaded.Output.WallpapersDir)
	assert.Equal(t, config.Connectivity.Timeout, loaded.Connectivity.Timeout)
}
