package wechat

import (
	"context"
	"fmt"
	"time"
)

// publishPollDelay is the single fixed wait before polling publish
// status. Not a retry loop: one pause, one poll.
const publishPollDelay = 3 * time.Second

// Article is a draft article payload.
type Article struct {
	Title              string `json:"title"`
	Author             string `json:"author,omitempty"`
	Digest             string `json:"digest,omitempty"`
	Content            string `json:"content"`
	ContentSourceURL   string `json:"content_source_url,omitempty"`
	ThumbMediaID       string `json:"thumb_media_id,omitempty"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
}

// AddDraft creates a draft and returns its media id.
func (c *Client) AddDraft(ctx context.Context, articles []Article) (string, error) {
	var out struct {
		MediaID string `json:"media_id"`
	}
	payload := map[string]any{"articles": articles}
	if err := c.post(ctx, "/cgi-bin/draft/add", payload, &out); err != nil {
		return "", fmt.Errorf("add draft: %w", err)
	}
	return out.MediaID, nil
}

// GetDraft fetches a draft's articles by media id.
func (c *Client) GetDraft(ctx context.Context, mediaID string) ([]Article, error) {
	var out struct {
		NewsItem []Article `json:"news_item"`
	}
	payload := map[string]any{"media_id": mediaID}
	if err := c.post(ctx, "/cgi-bin/draft/get", payload, &out); err != nil {
		return nil, fmt.Errorf("get draft %s: %w", mediaID, err)
	}
	return out.NewsItem, nil
}

// SubmitPublish schedules a draft for publication and returns the
// publish id used for status polling.
func (c *Client) SubmitPublish(ctx context.Context, mediaID string) (int64, error) {
	var out struct {
		PublishID int64 `json:"publish_id"`
	}
	payload := map[string]any{"media_id": mediaID}
	if err := c.post(ctx, "/cgi-bin/freepublish/submit", payload, &out); err != nil {
		return 0, fmt.Errorf("submit publish: %w", err)
	}
	return out.PublishID, nil
}

// PublishStatus is the result of a publish status poll.
type PublishStatus struct {
	PublishID     int64  `json:"publish_id"`
	PublishStatus int    `json:"publish_status"` // 0 success, 1 publishing, >1 failed
	ArticleID     string `json:"article_id"`
	ArticleDetail struct {
		Count int `json:"count"`
		Items []struct {
			Idx        int    `json:"idx"`
			ArticleURL string `json:"article_url"`
		} `json:"item"`
	} `json:"article_detail"`
	FailIdx []int `json:"fail_idx"`
}

// GetPublishStatus polls the publish state once.
func (c *Client) GetPublishStatus(ctx context.Context, publishID int64) (*PublishStatus, error) {
	var out PublishStatus
	payload := map[string]any{"publish_id": publishID}
	if err := c.post(ctx, "/cgi-bin/freepublish/get", payload, &out); err != nil {
		return nil, fmt.Errorf("get publish status: %w", err)
	}
	return &out, nil
}

// Publish drafts the articles, submits them, waits the fixed delay for
// platform-side eventual consistency, and polls the status once.
func (c *Client) Publish(ctx context.Context, articles []Article) (*PublishStatus, error) {
	mediaID, err := c.AddDraft(ctx, articles)
	if err != nil {
		return nil, err
	}

	publishID, err := c.SubmitPublish(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	select {
	case <-time.After(publishPollDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return c.GetPublishStatus(ctx, publishID)
}

// PublishedArticle is one published item from the freepublish batch list.
type PublishedArticle struct {
	ArticleID  string
	Title      string
	URL        string
	UpdateTime time.Time
}

// ListPublished returns up to count most recently published articles,
// newest first.
func (c *Client) ListPublished(ctx context.Context, offset, count int) ([]PublishedArticle, error) {
	if count <= 0 || count > 20 {
		count = 20
	}

	var out struct {
		TotalCount int `json:"total_count"`
		ItemCount  int `json:"item_count"`
		Items      []struct {
			ArticleID  string `json:"article_id"`
			UpdateTime int64  `json:"update_time"`
			Content    struct {
				NewsItem []struct {
					Title string `json:"title"`
					URL   string `json:"url"`
				} `json:"news_item"`
			} `json:"content"`
		} `json:"item"`
	}
	payload := map[string]any{"offset": offset, "count": count, "no_content": 1}
	if err := c.post(ctx, "/cgi-bin/freepublish/batchget", payload, &out); err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}

	var articles []PublishedArticle
	for _, item := range out.Items {
		a := PublishedArticle{
			ArticleID:  item.ArticleID,
			UpdateTime: time.Unix(item.UpdateTime, 0).UTC(),
		}
		if len(item.Content.NewsItem) > 0 {
			a.Title = item.Content.NewsItem[0].Title
			a.URL = item.Content.NewsItem[0].URL
		}
		articles = append(articles, a)
	}
	return articles, nil
}
