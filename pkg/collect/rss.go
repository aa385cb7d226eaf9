package collect

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const userAgent = "mppilot/1.0"

// RSSFeed is a named RSS/Atom feed URL.
type RSSFeed struct {
	Name string
	URL  string
}

// RSS collects items from RSS/Atom feeds.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []RSSFeed
}

// NewRSS creates a new RSS collector.
func NewRSS(feeds []RSSFeed) *RSS {
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

func (r *RSS) Name() SourceType { return SourceRSS }

func (r *RSS) Collect(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}

	var all []Item
	for _, feed := range r.feeds {
		items, err := r.collectFeed(ctx, feed, limit)
		if err != nil {
			log.Warnf("rss feed %s: %v", feed.Name, err)
			continue
		}
		all = append(all, items...)
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *RSS) collectFeed(ctx context.Context, feed RSSFeed, limit int) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	now := time.Now().UTC()
	var items []Item
	for _, entry := range parsed.Items {
		if len(items) >= limit {
			break
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		published := ""
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC().Format(time.RFC3339)
		}

		author := ""
		if entry.Author != nil {
			author = entry.Author.Name
		}

		guid := entry.GUID
		if guid == "" {
			guid = link
		}

		items = append(items, Item{
			ID:          fmt.Sprintf("rss:%s:%s", feed.Name, guid),
			Source:      SourceRSS,
			Title:       entry.Title,
			URL:         link,
			Content:     truncate(entry.Description, 500),
			Author:      author,
			Time:        published,
			CollectedAt: now,
		})
	}
	return items, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
