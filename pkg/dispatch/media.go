package dispatch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/storage"
)

// Extractor resolves a page URL to media files written into dir
type Extractor interface {
	Extract(ctx context.Context, url, dir string) error
}

// CommandExtractor runs an external extractor such as yt-dlp
type CommandExtractor struct {
	Command  string
	Args     []string
	Template string
}

// NewCommandExtractor creates an extractor for command. An empty template
// means "%(title)s.%(ext)s".
func NewCommandExtractor(command string, args []string, template string) *CommandExtractor {
	if template == "" {
		template = "%(title)s.%(ext)s"
	}
	return &CommandExtractor{Command: command, Args: args, Template: template}
}

// BuildArgs returns the command line for url. A "{url}" placeholder in Args
// is replaced, otherwise url is appended.
func (e *CommandExtractor) BuildArgs(url, dir string) []string {
	args := []string{"-o", filepath.Join(dir, e.Template)}
	placed := false
	for _, arg := range e.Args {
		if strings.Contains(arg, "{url}") {
			placed = true
		}
		args = append(args, strings.ReplaceAll(arg, "{url}", url))
	}
	if !placed {
		args = append(args, url)
	}
	return args
}

// Extract runs the command with dir as its working directory
func (e *CommandExtractor) Extract(ctx context.Context, url, dir string) error {
	cmd := exec.CommandContext(ctx, e.Command, e.BuildArgs(url, dir)...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", e.Command, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// MediaStrategy handles posts on the origin site through an extractor
type MediaStrategy struct {
	token     string
	extractor Extractor
	store     *storage.Manager
	logger    logger.Logger
}

// NewMediaStrategy creates a strategy matching URLs that contain token
func NewMediaStrategy(token string, extractor Extractor, store *storage.Manager, log logger.Logger) *MediaStrategy {
	if log == nil {
		log = logger.GetLogger()
	}
	return &MediaStrategy{token: token, extractor: extractor, store: store, logger: log}
}

// Name returns the strategy name
func (s *MediaStrategy) Name() string {
	return "media"
}

// Match returns true if url belongs to the origin site
func (s *MediaStrategy) Match(url string) bool {
	return s.token != "" && strings.Contains(url, s.token)
}

// Acquire extracts into a scratch directory, then adopts the result
func (s *MediaStrategy) Acquire(ctx context.Context, url string) ([]string, error) {
	tempDir, err := os.MkdirTemp("", "wallgrab-extract-*")
	if err != nil {
		return nil, errs.New(errs.KindIO, url, fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(tempDir)

	s.logger.DebugWithFields("running extractor", map[string]interface{}{
		"url": url,
		"dir": tempDir,
	})

	if err := s.extractor.Extract(ctx, url, tempDir); err != nil {
		return nil, errs.New(errs.KindExtractor, url, err)
	}

	paths, err := s.store.Adopt(tempDir)
	if err != nil {
		return paths, errs.New(errs.KindIO, url, fmt.Errorf("move files: %w", err))
	}
	return paths, nil
}
