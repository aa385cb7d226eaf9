package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const githubTrendingURL = "https://github.com/trending?since=daily"

// GitHub collects trending repositories by scraping the trending page.
type GitHub struct {
	client *http.Client
}

// NewGitHub creates a new GitHub trending collector.
func NewGitHub() *GitHub {
	return &GitHub{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GitHub) Name() SourceType { return SourceGitHub }

func (g *GitHub) Collect(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubTrendingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create github request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch github trending: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github trending status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse github trending: %w", err)
	}

	now := time.Now().UTC()
	var items []Item
	doc.Find("article.Box-row").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Find("h2 a").Attr("href")
		if !ok {
			return true
		}
		repo := strings.TrimPrefix(strings.TrimSpace(href), "/")
		desc := strings.TrimSpace(sel.Find("p").First().Text())

		// Today's star count sits in the last grey span of the row.
		stars := 0
		starText := strings.TrimSpace(sel.Find("span.d-inline-block.float-sm-right").Text())
		fmt.Sscanf(strings.ReplaceAll(starText, ",", ""), "%d", &stars)

		items = append(items, Item{
			ID:          "github:" + repo,
			Source:      SourceGitHub,
			Title:       repo,
			URL:         "https://github.com/" + repo,
			Score:       stars,
			Content:     desc,
			Time:        "today",
			CollectedAt: now,
		})
		return len(items) < limit
	})

	return items, nil
}
