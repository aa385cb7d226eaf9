package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const hnBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNews collects top stories from the official Hacker News API.
type HackerNews struct {
	client *http.Client
}

// NewHackerNews creates a new HN collector.
func NewHackerNews() *HackerNews {
	return &HackerNews{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HackerNews) Name() SourceType { return SourceHackerNews }

func (h *HackerNews) Collect(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}

	ids, err := h.fetchTopStories(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > limit*2 {
		ids = ids[:limit*2]
	}

	var items []Item
	for _, id := range ids {
		if len(items) >= limit {
			break
		}
		story, err := h.fetchItem(ctx, id)
		if err != nil || story == nil || story.Title == "" {
			continue
		}

		item := Item{
			ID:          fmt.Sprintf("hackernews:%d", story.ID),
			Source:      SourceHackerNews,
			Title:       story.Title,
			URL:         story.URL,
			Score:       story.Score,
			Author:      story.By,
			Time:        time.Unix(story.Time, 0).UTC().Format(time.RFC3339),
			CollectedAt: time.Now().UTC(),
		}
		if item.URL == "" {
			item.URL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
		}
		items = append(items, item)
	}
	return items, nil
}

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

func (h *HackerNews) fetchTopStories(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hnBaseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create hn request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn top stories: %w", err)
	}
	defer resp.Body.Close()

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode hn top stories: %w", err)
	}
	return ids, nil
}

func (h *HackerNews) fetchItem(ctx context.Context, id int) (*hnStory, error) {
	url := fmt.Sprintf("%s/item/%d.json", hnBaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create hn item request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn item %d: %w", id, err)
	}
	defer resp.Body.Close()

	var story hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil, fmt.Errorf("decode hn item %d: %w", id, err)
	}
	if story.Type != "story" {
		return nil, nil
	}
	return &story, nil
}
