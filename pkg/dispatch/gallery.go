package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/fetch"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/storage"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
	".mp4":  true,
}

// GalleryStrategy downloads every image on a gallery host page
type GalleryStrategy struct {
	token  string
	client *fetch.Client
	store  *storage.Manager
	logger logger.Logger
}

// NewGalleryStrategy creates a strategy matching URLs that contain token
func NewGalleryStrategy(token string, client *fetch.Client, store *storage.Manager, log logger.Logger) *GalleryStrategy {
	if log == nil {
		log = logger.GetLogger()
	}
	return &GalleryStrategy{token: token, client: client, store: store, logger: log}
}

// Name returns the strategy name
func (s *GalleryStrategy) Name() string {
	return "gallery"
}

// Match returns true if url mentions the gallery host anywhere
func (s *GalleryStrategy) Match(url string) bool {
	return s.token != "" && strings.Contains(url, s.token)
}

// Acquire saves a direct media link as-is, or resolves a gallery page to its
// images. A page with no images yields no paths and no error.
func (s *GalleryStrategy) Acquire(ctx context.Context, rawURL string) ([]string, error) {
	if isMediaURL(rawURL) {
		saved, err := s.download(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return []string{saved}, nil
	}

	body, err := s.client.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	images, err := ParseGallery(rawURL, body)
	if err != nil {
		return nil, errs.New(errs.KindGallery, rawURL, err)
	}

	s.logger.DebugWithFields("gallery resolved", map[string]interface{}{
		"url":    rawURL,
		"images": len(images),
	})

	var paths []string
	for _, img := range images {
		saved, err := s.download(ctx, img)
		if err != nil {
			return paths, errs.Newf(errs.KindGallery, rawURL, "image %s: %v", img, err)
		}
		paths = append(paths, saved)
	}
	return paths, nil
}

func (s *GalleryStrategy) download(ctx context.Context, mediaURL string) (string, error) {
	body, err := s.client.Fetch(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	saved, err := s.store.Save(bytes.NewReader(body), mediaName(mediaURL))
	if err != nil {
		return "", errs.New(errs.KindIO, mediaURL, err)
	}
	return saved, nil
}

// ParseGallery extracts the absolute image URLs from a gallery page, in
// document order and without duplicates
func ParseGallery(pageURL string, body []byte) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse gallery page: %w", err)
	}

	seen := make(map[string]bool)
	var images []string
	add := func(ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return
		}
		u, err := base.Parse(ref)
		if err != nil {
			return
		}
		u.RawQuery = ""
		u.Fragment = ""
		abs := u.String()
		if !isMediaURL(abs) || seen[abs] {
			return
		}
		seen[abs] = true
		images = append(images, abs)
	}

	doc.Find(`meta[property="og:image"], meta[name="twitter:image"]`).Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("content", ""))
	})
	doc.Find(`link[rel="image_src"]`).Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("href", ""))
	})
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("src", ""))
	})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("href", ""))
	})

	return images, nil
}

func isMediaURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(u.Path))]
}

func mediaName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "image"
	}
	return path.Base(u.Path)
}
