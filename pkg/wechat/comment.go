package wechat

import (
	"context"
	"fmt"
)

// ErrCodeCommentClosed is returned by the comment endpoints when an
// article has comments disabled.
const ErrCodeCommentClosed = 88000

// Comment is one reader comment on a published article.
type Comment struct {
	UserCommentID int64  `json:"user_comment_id"`
	OpenID        string `json:"openid"`
	CreateTime    int64  `json:"create_time"`
	Content       string `json:"content"`
	CommentType   int    `json:"comment_type"` // 0 normal, 1 elected
	Reply         *struct {
		Content    string `json:"content"`
		CreateTime int64  `json:"create_time"`
	} `json:"reply,omitempty"`
}

// ListComments fetches one page of comments for a published article.
// msgDataID identifies the mass-sent or published message; index is the
// article position within it (0 for single-article posts).
func (c *Client) ListComments(ctx context.Context, msgDataID string, index, begin, count int) ([]Comment, int, error) {
	if count <= 0 || count > 50 {
		count = 50
	}

	var out struct {
		Total    int       `json:"total"`
		Comments []Comment `json:"comment"`
	}
	payload := map[string]any{
		"msg_data_id": msgDataID,
		"index":       index,
		"begin":       begin,
		"count":       count,
		"type":        0,
	}
	if err := c.post(ctx, "/cgi-bin/comment/list", payload, &out); err != nil {
		return nil, 0, fmt.Errorf("list comments %s: %w", msgDataID, err)
	}
	return out.Comments, out.Total, nil
}

// OpenComment enables comments on a published article.
func (c *Client) OpenComment(ctx context.Context, msgDataID string, index int) error {
	payload := map[string]any{"msg_data_id": msgDataID, "index": index}
	if err := c.post(ctx, "/cgi-bin/comment/open", payload, nil); err != nil {
		return fmt.Errorf("open comment %s: %w", msgDataID, err)
	}
	return nil
}

// CloseComment disables comments on a published article.
func (c *Client) CloseComment(ctx context.Context, msgDataID string, index int) error {
	payload := map[string]any{"msg_data_id": msgDataID, "index": index}
	if err := c.post(ctx, "/cgi-bin/comment/close", payload, nil); err != nil {
		return fmt.Errorf("close comment %s: %w", msgDataID, err)
	}
	return nil
}

// ReplyComment posts an operator reply to a reader comment.
func (c *Client) ReplyComment(ctx context.Context, msgDataID string, index int, userCommentID int64, content string) error {
	payload := map[string]any{
		"msg_data_id":     msgDataID,
		"index":           index,
		"user_comment_id": userCommentID,
		"content":         content,
	}
	if err := c.post(ctx, "/cgi-bin/comment/reply/add", payload, nil); err != nil {
		return fmt.Errorf("reply comment %d: %w", userCommentID, err)
	}
	return nil
}
