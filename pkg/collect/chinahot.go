package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// V2EX collects hot topics from the official V2EX API.
type V2EX struct {
	client *http.Client
}

// NewV2EX creates a new V2EX collector.
func NewV2EX() *V2EX {
	return &V2EX{client: &http.Client{Timeout: 30 * time.Second}}
}

func (v *V2EX) Name() SourceType { return SourceV2EX }

func (v *V2EX) Collect(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}

	var topics []struct {
		ID      int    `json:"id"`
		Title   string `json:"title"`
		URL     string `json:"url"`
		Replies int    `json:"replies"`
		Member  struct {
			Username string `json:"username"`
		} `json:"member"`
	}
	if err := getJSON(ctx, v.client, "https://www.v2ex.com/api/topics/hot.json", nil, &topics); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var items []Item
	for _, t := range topics {
		if len(items) >= limit {
			break
		}
		items = append(items, Item{
			ID:          fmt.Sprintf("v2ex:%d", t.ID),
			Source:      SourceV2EX,
			Title:       t.Title,
			URL:         t.URL,
			Score:       t.Replies,
			Author:      t.Member.Username,
			Time:        "hot",
			CollectedAt: now,
		})
	}
	return items, nil
}

// Zhihu collects the Zhihu hot list via the web API.
type Zhihu struct {
	client *http.Client
}

// NewZhihu creates a new Zhihu collector.
func NewZhihu() *Zhihu {
	return &Zhihu{client: &http.Client{Timeout: 30 * time.Second}}
}

func (z *Zhihu) Name() SourceType { return SourceZhihu }

func (z *Zhihu) Collect(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}

	var resp struct {
		Data []struct {
			Target struct {
				TitleArea struct {
					Text string `json:"text"`
				} `json:"title_area"`
				Link struct {
					URL string `json:"url"`
				} `json:"link"`
				MetricsArea struct {
					Text string `json:"text"`
				} `json:"metrics_area"`
			} `json:"target"`
		} `json:"data"`
	}
	u := "https://www.zhihu.com/api/v3/feed/topstory/hot-list-web?limit=50&desktop=true"
	if err := getJSON(ctx, z.client, u, nil, &resp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var items []Item
	for _, entry := range resp.Data {
		if len(items) >= limit {
			break
		}
		t := entry.Target
		if t.TitleArea.Text == "" {
			continue
		}
		items = append(items, Item{
			ID:          "zhihu:" + t.Link.URL,
			Source:      SourceZhihu,
			Title:       t.TitleArea.Text,
			URL:         t.Link.URL,
			Score:       parseHotMetric(t.MetricsArea.Text),
			Time:        "hot",
			CollectedAt: now,
		})
	}
	return items, nil
}

// Weibo collects the realtime hot search board by scraping the summary page.
type Weibo struct {
	client *http.Client
}

// NewWeibo creates a new Weibo hot search collector.
func NewWeibo() *Weibo {
	return &Weibo{client: &http.Client{Timeout: 30 * time.Second}}
}

func (w *Weibo) Name() SourceType { return SourceWeibo }

func (w *Weibo) Collect(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://s.weibo.com/top/summary?cate=realtimehot", nil)
	if err != nil {
		return nil, fmt.Errorf("create weibo request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://s.weibo.com/top/summary")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weibo hot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weibo hot status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse weibo hot: %w", err)
	}

	now := time.Now().UTC()
	var items []Item
	doc.Find("td.td-02 a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.Contains(href, "javascript:") {
			return true
		}
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return true
		}
		items = append(items, Item{
			ID:          "weibo:" + url.QueryEscape(title),
			Source:      SourceWeibo,
			Title:       title,
			URL:         "https://s.weibo.com" + href,
			Time:        "realtime",
			CollectedAt: now,
		})
		return len(items) < limit
	})

	return items, nil
}

func getJSON(ctx context.Context, client *http.Client, u string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request %s: %w", u, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// parseHotMetric extracts the leading number from strings like
// "1234 万热度"; unparseable metrics count as zero.
func parseHotMetric(text string) int {
	n := 0
	fmt.Sscanf(strings.TrimSpace(text), "%d", &n)
	return n
}
