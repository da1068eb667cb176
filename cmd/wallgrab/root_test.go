package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns everything written to
// the console and cobra's own output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	stdout, stderr = &out, &out
	t.Cleanup(func() {
		stdout, stderr = os.Stdout, os.Stderr
	})

	configFile, logLevel, levelOverride = "", "info", ""
	noColor, quiet, verbose = false, false, false
	linkFiles, classifyDir, manifestDir, linkRoot = false, "", "", ""

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
}

func TestHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, name := range []string{"download", "classify", "config"} {
		assert.Contains(t, out, name)
	}
}

func TestClassifyCommand(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "phone.png"), 9, 16)
	writeImage(t, filepath.Join(root, "sub", "wide.png"), 16, 9)
	writeImage(t, filepath.Join(root, "tile.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("clip"), 0644))

	manifests := t.TempDir()
	links := t.TempDir()

	out, err := execute(t, "classify", "--no-color",
		"--root", root,
		"--manifest-dir", manifests,
		"--link-files", "--link-root", links,
	)
	require.NoError(t, err)

	mobile, err := os.ReadFile(filepath.Join(manifests, "mobile.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "phone.png"), string(mobile))

	landscape, err := os.ReadFile(filepath.Join(manifests, "landscape.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "wide.png"), string(landscape))

	_, err = os.Stat(filepath.Join(links, "square", "tile.png"))
	assert.NoError(t, err)

	// Notices are printed while walking, before the counts
	notice := strings.Index(out, "Ignoring video/gif: "+filepath.Join(root, "clip.mp4"))
	counts := strings.Index(out, "Classification")
	require.NotEqual(t, -1, notice, out)
	require.NotEqual(t, -1, counts, out)
	assert.Less(t, notice, counts)
	assert.Contains(t, out, "Created 3 hardlink(s)")
}

func TestClassifyMissingRoot(t *testing.T) {
	_, err := execute(t, "classify", "--root", filepath.Join(t.TempDir(), "nope"), "--manifest-dir", t.TempDir())
	assert.Error(t, err)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallgrab.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created: "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", "--config", path)
	assert.Error(t, err, "init refuses to overwrite")

	out, err = execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallgrab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pacing:\n  min_seconds: 9\n  max_seconds: 1\n"), 0644))

	_, err := execute(t, "config", "validate", "--config", path)
	assert.Error(t, err)
}
