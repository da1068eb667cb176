package harvester

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"wallgrab/pkg/config"
)

// Browser is the part of a browser the harvester drives
type Browser interface {
	// Navigate loads url and returns the URL the page ended up on
	Navigate(ctx context.Context, url string) (string, error)
	// HTML returns the current document
	HTML(ctx context.Context) (string, error)
	// Close shuts the browser down
	Close() error
}

// RodBrowser drives a local Chrome through the DevTools protocol
type RodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Launch starts Chrome and opens a single tab. cfg.DriverBin overrides the
// browser binary.
func Launch(ctx context.Context, cfg *config.HarvesterConfig) (*RodBrowser, error) {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.DriverBin != "" {
		l = l.Bin(cfg.DriverBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	return &RodBrowser{launcher: l, browser: browser, page: page}, nil
}

// Navigate loads url and waits for the load event
func (b *RodBrowser) Navigate(ctx context.Context, url string) (string, error) {
	page := b.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait for %s: %w", url, err)
	}

	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// HTML returns the rendered document
func (b *RodBrowser) HTML(ctx context.Context) (string, error) {
	html, err := b.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

// Close closes the browser and removes its profile directory
func (b *RodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}
