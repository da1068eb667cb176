package dispatch

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/fetch"
	"wallgrab/pkg/storage"
)

// DirectStrategy fetches a URL and saves the body as an image
type DirectStrategy struct {
	client *fetch.Client
	store  *storage.Manager
}

// NewDirectStrategy creates the catch-all strategy
func NewDirectStrategy(client *fetch.Client, store *storage.Manager) *DirectStrategy {
	return &DirectStrategy{client: client, store: store}
}

// Name returns the strategy name
func (s *DirectStrategy) Name() string {
	return "direct"
}

// Match accepts every URL
func (s *DirectStrategy) Match(url string) bool {
	return true
}

// Acquire decodes the response body and saves it re-encoded as PNG
func (s *DirectStrategy) Acquire(ctx context.Context, url string) ([]string, error) {
	body, err := s.client.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errs.New(errs.KindDecode, url, err)
	}

	path, err := s.store.SaveImage(img)
	if err != nil {
		return nil, errs.New(errs.KindIO, url, err)
	}
	return []string{path}, nil
}
