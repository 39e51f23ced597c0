package parser

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

// FeedFetcher downloads and parses RSS/Atom feeds.
type FeedFetcher struct {
	parser  *gofeed.Parser
	policy  *bluemonday.Policy
	timeout time.Duration
}

var _ ports.FeedFetcher = (*FeedFetcher)(nil)

// NewFeedFetcher wires an HTTP client; timeout defaults to 20 seconds.
func NewFeedFetcher(client *http.Client, userAgent string, timeout time.Duration) *FeedFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	fp := gofeed.NewParser()
	fp.Client = client
	if userAgent != "" {
		fp.UserAgent = userAgent
	}

	return &FeedFetcher{
		parser:  fp,
		policy:  bluemonday.StrictPolicy(),
		timeout: timeout,
	}
}

// Fetch returns the feed items in document order. Items without a usable link are dropped.
func (f *FeedFetcher) Fetch(ctx context.Context, sourceURL string) ([]domain.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(sourceURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", sourceURL, err)
	}

	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		link := itemLink(item)
		if link == "" {
			continue
		}

		entry := domain.Entry{
			Title:    f.cleanText(item.Title),
			Link:     link,
			SourceID: sourceURL,
		}
		switch {
		case item.PublishedParsed != nil:
			published := item.PublishedParsed.UTC()
			entry.PublishedAt = &published
		case item.UpdatedParsed != nil:
			updated := item.UpdatedParsed.UTC()
			entry.PublishedAt = &updated
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (f *FeedFetcher) cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(s)))
}

func itemLink(item *gofeed.Item) string {
	candidates := append([]string{item.Link}, item.Links...)
	candidates = append(candidates, item.GUID)
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if u, err := url.Parse(c); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return c
		}
	}
	return ""
}
