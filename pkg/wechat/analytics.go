package wechat

import (
	"context"
	"fmt"
)

// UserSummary is one day of follower movement.
type UserSummary struct {
	RefDate    string `json:"ref_date"`
	UserSource int    `json:"user_source"`
	NewUser    int    `json:"new_user"`
	CancelUser int    `json:"cancel_user"`
}

// UserCumulate is one day's cumulative follower count.
type UserCumulate struct {
	RefDate      string `json:"ref_date"`
	CumulateUser int    `json:"cumulate_user"`
}

// ArticleSummary is one day of per-article reach.
type ArticleSummary struct {
	RefDate          string `json:"ref_date"`
	MsgID            string `json:"msgid"`
	Title            string `json:"title"`
	IntPageReadUser  int    `json:"int_page_read_user"`
	IntPageReadCount int    `json:"int_page_read_count"`
	OriPageReadUser  int    `json:"ori_page_read_user"`
	ShareUser        int    `json:"share_user"`
	ShareCount       int    `json:"share_count"`
	AddToFavUser     int    `json:"add_to_fav_user"`
}

// UserShare is one day of share activity.
type UserShare struct {
	RefDate    string `json:"ref_date"`
	ShareScene int    `json:"share_scene"`
	ShareCount int    `json:"share_count"`
	ShareUser  int    `json:"share_user"`
}

// UserRead is one day of read activity across the account.
type UserRead struct {
	RefDate          string `json:"ref_date"`
	IntPageReadUser  int    `json:"int_page_read_user"`
	IntPageReadCount int    `json:"int_page_read_count"`
}

func dateRange(begin, end string) map[string]any {
	return map[string]any{"begin_date": begin, "end_date": end}
}

// GetUserSummary returns daily follower gains and losses in [begin, end].
func (c *Client) GetUserSummary(ctx context.Context, begin, end string) ([]UserSummary, error) {
	var out struct {
		List []UserSummary `json:"list"`
	}
	if err := c.post(ctx, "/datacube/getusersummary", dateRange(begin, end), &out); err != nil {
		return nil, fmt.Errorf("get user summary: %w", err)
	}
	return out.List, nil
}

// GetUserCumulate returns daily cumulative follower counts in [begin, end].
func (c *Client) GetUserCumulate(ctx context.Context, begin, end string) ([]UserCumulate, error) {
	var out struct {
		List []UserCumulate `json:"list"`
	}
	if err := c.post(ctx, "/datacube/getusercumulate", dateRange(begin, end), &out); err != nil {
		return nil, fmt.Errorf("get user cumulate: %w", err)
	}
	return out.List, nil
}

// GetArticleSummary returns per-article daily reach in [begin, end].
func (c *Client) GetArticleSummary(ctx context.Context, begin, end string) ([]ArticleSummary, error) {
	var out struct {
		List []ArticleSummary `json:"list"`
	}
	if err := c.post(ctx, "/datacube/getarticlesummary", dateRange(begin, end), &out); err != nil {
		return nil, fmt.Errorf("get article summary: %w", err)
	}
	return out.List, nil
}

// GetArticleTotal returns cumulative per-article reach in [begin, end].
func (c *Client) GetArticleTotal(ctx context.Context, begin, end string) ([]ArticleSummary, error) {
	var out struct {
		List []ArticleSummary `json:"list"`
	}
	if err := c.post(ctx, "/datacube/getarticletotal", dateRange(begin, end), &out); err != nil {
		return nil, fmt.Errorf("get article total: %w", err)
	}
	return out.List, nil
}

// GetUserShare returns daily share activity in [begin, end].
func (c *Client) GetUserShare(ctx context.Context, begin, end string) ([]UserShare, error) {
	var out struct {
		List []UserShare `json:"list"`
	}
	if err := c.post(ctx, "/datacube/getusershare", dateRange(begin, end), &out); err != nil {
		return nil, fmt.Errorf("get user share: %w", err)
	}
	return out.List, nil
}

// GetUserRead returns daily read activity in [begin, end].
func (c *Client) GetUserRead(ctx context.Context, begin, end string) ([]UserRead, error) {
	var out struct {
		List []UserRead `json:"list"`
	}
	if err := c.post(ctx, "/datacube/getuserread", dateRange(begin, end), &out); err != nil {
		return nil, fmt.Errorf("get user read: %w", err)
	}
	return out.List, nil
}
