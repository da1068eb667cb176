package classifier

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"wallgrab/pkg/config"
	"wallgrab/pkg/logger"
)

// Bucket is an aspect ratio class
type Bucket string

const (
	Mobile    Bucket = "mobile"
	Square    Bucket = "square"
	Landscape Bucket = "landscape"
)

// Buckets lists every bucket in manifest order
var Buckets = []Bucket{Mobile, Square, Landscape}

// Thresholds split the width/height ratio line into buckets:
// ratio <= MobileMax is mobile, ratio <= SquareMax is square, anything
// wider is landscape.
type Thresholds struct {
	MobileMax float64
	SquareMax float64
}

// DefaultThresholds returns the 0.7 / 1.3 split
func DefaultThresholds() Thresholds {
	return Thresholds{MobileMax: 0.7, SquareMax: 1.3}
}

// Validate checks that the thresholds leave every bucket non-empty
func (t Thresholds) Validate() error {
	if t.MobileMax <= 0 || t.SquareMax <= t.MobileMax {
		return fmt.Errorf("invalid thresholds: need 0 < mobile_max (%v) < square_max (%v)", t.MobileMax, t.SquareMax)
	}
	return nil
}

// BucketFor classifies an image of the given dimensions
func (t Thresholds) BucketFor(width, height int) Bucket {
	ratio := float64(width) / float64(height)
	switch {
	case ratio <= t.MobileMax:
		return Mobile
	case ratio <= t.SquareMax:
		return Square
	default:
		return Landscape
	}
}

// ImageDescriptor is a decoded image header
type ImageDescriptor struct {
	Path   string
	Width  int
	Height int
}

// Result holds the paths assigned to each bucket in walk order
type Result struct {
	Buckets map[Bucket][]string
	// Skipped files had an excluded extension
	Skipped []string
	// Unreadable files could not be decoded as images
	Unreadable []string
}

func newResult() *Result {
	r := &Result{Buckets: make(map[Bucket][]string, len(Buckets))}
	for _, b := range Buckets {
		r.Buckets[b] = []string{}
	}
	return r
}

// Count returns the number of images in bucket b
func (r *Result) Count(b Bucket) int {
	return len(r.Buckets[b])
}

// Classifier sorts an image tree into aspect ratio buckets
type Classifier struct {
	thresholds Thresholds
	excluded   map[string]bool
	logger     logger.Logger
	notify     func(msg string)
}

// New creates a classifier from cfg
func New(cfg *config.ClassifyConfig, log logger.Logger) *Classifier {
	if log == nil {
		log = logger.GetLogger()
	}

	excluded := make(map[string]bool, len(cfg.ExcludedExtensions))
	for _, ext := range cfg.ExcludedExtensions {
		excluded[ext] = true
	}

	return &Classifier{
		thresholds: Thresholds{MobileMax: cfg.MobileMax, SquareMax: cfg.SquareMax},
		excluded:   excluded,
		logger:     log,
	}
}

// SetNotifier sets the function that reports skipped and unreadable files
// as the walk reaches them
func (c *Classifier) SetNotifier(notify func(msg string)) {
	c.notify = notify
}

func (c *Classifier) say(msg string) {
	if c.notify != nil {
		c.notify(msg)
	}
}

// Thresholds returns the bucket boundaries in use
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify walks root recursively in lexical order and assigns every
// decodable image to a bucket. Excluded and undecodable files are reported
// in the result and never abort the walk.
func (c *Classifier) Classify(root string) (*Result, error) {
	if err := c.thresholds.Validate(); err != nil {
		return nil, err
	}

	result := newResult()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !isFile(path, d) {
			return nil
		}

		// Extension match is exact, so ".GIF" is still classified
		if c.excluded[filepath.Ext(path)] {
			c.logger.WarnWithFields("Ignoring video/gif", map[string]interface{}{"path": path})
			c.say("Ignoring video/gif: " + path)
			result.Skipped = append(result.Skipped, path)
			return nil
		}

		desc, err := describe(path)
		if err != nil {
			c.logger.WithError(err).WarnWithFields("Couldn't load file", map[string]interface{}{"path": path})
			c.say("Couldn't load file " + path)
			result.Unreadable = append(result.Unreadable, path)
			return nil
		}

		b := c.thresholds.BucketFor(desc.Width, desc.Height)
		result.Buckets[b] = append(result.Buckets[b], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	c.logger.InfoWithFields("classification complete", map[string]interface{}{
		"mobile":     result.Count(Mobile),
		"square":     result.Count(Square),
		"landscape":  result.Count(Landscape),
		"skipped":    len(result.Skipped),
		"unreadable": len(result.Unreadable),
	})
	return result, nil
}

// isFile reports whether the entry is a regular file, following symlinks
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	return false
}

func describe(path string) (ImageDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageDescriptor{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return ImageDescriptor{}, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageDescriptor{}, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return ImageDescriptor{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
}
