package harvester

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"wallgrab/pkg/config"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/ratelimit"
)

// MissingSourceError is returned when a source listing redirects elsewhere
type MissingSourceError struct {
	Source   string
	Expected string
	Got      string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("source %q does not exist: expected %s, landed on %s", e.Source, e.Expected, e.Got)
}

// Harvester collects candidate links from source listings
type Harvester struct {
	session *Session
	pacer   ratelimit.Pacer
	cfg     config.HarvesterConfig
	logger  logger.Logger
	notify  func(msg string)
}

// New creates a harvester over a ready session
func New(session *Session, pacer ratelimit.Pacer, cfg *config.HarvesterConfig, log logger.Logger) *Harvester {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = ratelimit.NoDelay{}
	}
	return &Harvester{session: session, pacer: pacer, cfg: *cfg, logger: log}
}

// SetNotifier sets the function used for progress messages
func (h *Harvester) SetNotifier(notify func(msg string)) {
	h.notify = notify
}

func (h *Harvester) say(msg string) {
	if h.notify != nil {
		h.notify(msg)
		return
	}
	h.logger.Info(msg)
}

// SourceURL returns the base listing URL for a source
func (h *Harvester) SourceURL(name string) string {
	return strings.TrimRight(h.cfg.OriginURL, "/") + "/r/" + url.PathEscape(name) + "/"
}

// ListingURL returns the first sorted listing page for a source
func (h *Harvester) ListingURL(name string) string {
	sort := h.cfg.PageSort
	if sort == "" {
		sort = "top"
	}
	window := h.cfg.PageWindow
	if window == "" {
		window = "all"
	}
	return fmt.Sprintf("%s%s/?sort=%s&t=%s", h.SourceURL(name), sort, url.QueryEscape(sort), url.QueryEscape(window))
}

// Harvest checks that every source exists, then walks each one's listing
// for its configured number of pages. Links keep source order, then page
// order, then post order.
func (h *Harvester) Harvest(ctx context.Context, sources []config.Source) ([]string, error) {
	if h.session.State() != Ready {
		return nil, fmt.Errorf("session is %s, log in first", h.session.State())
	}

	for _, src := range sources {
		if err := h.verify(ctx, src); err != nil {
			return nil, err
		}
	}

	links := []string{}
	for _, src := range sources {
		found, err := h.walk(ctx, src)
		links = append(links, found...)
		if err != nil {
			return links, err
		}
	}
	return links, nil
}

func (h *Harvester) verify(ctx context.Context, src config.Source) error {
	base := h.SourceURL(src.Name)
	h.say(fmt.Sprintf("Making sure %s exists...", base))

	final, err := h.session.Navigate(ctx, base)
	if err != nil {
		return err
	}
	if err := h.pacer.Wait(ctx); err != nil {
		return err
	}
	if !strings.EqualFold(final, base) {
		return &MissingSourceError{Source: src.Name, Expected: base, Got: final}
	}
	return nil
}

func (h *Harvester) walk(ctx context.Context, src config.Source) ([]string, error) {
	var links []string

	current, err := h.session.Navigate(ctx, h.ListingURL(src.Name))
	if err != nil {
		return nil, err
	}

	for pagesLeft := src.Pages; pagesLeft > 0; pagesLeft-- {
		html, err := h.session.HTML(ctx)
		if err != nil {
			return links, err
		}
		listing, err := ParseListing(current, html)
		if err != nil {
			return links, err
		}
		links = append(links, listing.Links...)
		h.say(fmt.Sprintf("Added %d possible images from %s", len(listing.Links), current))
		h.logger.DebugWithFields("listing page parsed", map[string]interface{}{
			"source":     src.Name,
			"page":       src.Pages - pagesLeft + 1,
			"links":      len(listing.Links),
			"pages_left": pagesLeft - 1,
		})

		if err := h.pacer.Wait(ctx); err != nil {
			return links, err
		}

		// No need to leave the last page
		if pagesLeft == 1 {
			break
		}
		if listing.Next == "" {
			h.logger.WarnWithFields("listing ended early", map[string]interface{}{
				"source":     src.Name,
				"pages_left": pagesLeft - 1,
			})
			break
		}
		if current, err = h.session.Navigate(ctx, listing.Next); err != nil {
			return links, err
		}
	}

	return links, nil
}
