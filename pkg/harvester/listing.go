package harvester

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Listing is one page of a source listing
type Listing struct {
	Links []string
	Next  string
}

// ParseListing extracts post links from a listing page, skipping promoted
// posts, and the URL of the following page if there is one. Relative links
// are resolved against pageURL.
func ParseListing(pageURL, html string) (*Listing, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	listing := &Listing{Links: []string{}}
	doc.Find("#siteTable > div.link").Each(func(_ int, post *goquery.Selection) {
		if post.Find(".promoted-tag").Length() > 0 {
			return
		}
		href, ok := post.Find("a.title").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		if abs, err := base.Parse(strings.TrimSpace(href)); err == nil {
			listing.Links = append(listing.Links, abs.String())
		}
	})

	if href, ok := doc.Find("span.next-button a").First().Attr("href"); ok {
		if abs, err := base.Parse(href); err == nil {
			listing.Next = abs.String()
		}
	}

	return listing, nil
}
