package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Tag is a follower tag.
type Tag struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CreateTag creates a follower tag and returns it.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	var out struct {
		Tag Tag `json:"tag"`
	}
	payload := map[string]any{"tag": map[string]any{"name": name}}
	if err := c.post(ctx, "/cgi-bin/tags/create", payload, &out); err != nil {
		return nil, fmt.Errorf("create tag %s: %w", name, err)
	}
	return &out.Tag, nil
}

// ListTags returns all follower tags.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var out struct {
		Tags []Tag `json:"tags"`
	}
	if err := c.get(ctx, "/cgi-bin/tags/get", nil, &out); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out.Tags, nil
}

// MaterialItem is one stored media asset.
type MaterialItem struct {
	MediaID    string `json:"media_id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	UpdateTime int64  `json:"update_time"`
}

// UploadMaterial uploads a permanent media asset and returns its media
// id and (for images) served URL. mediaType is "image", "voice",
// "video", or "thumb".
func (c *Client) UploadMaterial(ctx context.Context, mediaType, filename string, data []byte) (string, string, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return "", "", fmt.Errorf("get access token: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("media", filename)
	if err != nil {
		return "", "", fmt.Errorf("create upload form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", "", fmt.Errorf("write upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", "", fmt.Errorf("close upload form: %w", err)
	}

	u := fmt.Sprintf("%s/cgi-bin/material/add_material?access_token=%s&type=%s",
		c.baseURL, url.QueryEscape(token), url.QueryEscape(mediaType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return "", "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("upload material %s: %w", filename, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read upload response: %w", err)
	}

	var apiErr APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != 0 {
		return "", "", &apiErr
	}

	var out struct {
		MediaID string `json:"media_id"`
		URL     string `json:"url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.MediaID, out.URL, nil
}

// ListMaterial pages through stored media of the given type
// ("image", "video", "voice", "news").
func (c *Client) ListMaterial(ctx context.Context, mediaType string, offset, count int) ([]MaterialItem, int, error) {
	if count <= 0 || count > 20 {
		count = 20
	}

	var out struct {
		TotalCount int            `json:"total_count"`
		ItemCount  int            `json:"item_count"`
		Items      []MaterialItem `json:"item"`
	}
	payload := map[string]any{"type": mediaType, "offset": offset, "count": count}
	if err := c.post(ctx, "/cgi-bin/material/batchget_material", payload, &out); err != nil {
		return nil, 0, fmt.Errorf("list material %s: %w", mediaType, err)
	}
	return out.Items, out.TotalCount, nil
}

// CreateMenu replaces the account's custom menu.
func (c *Client) CreateMenu(ctx context.Context, menu map[string]any) error {
	if err := c.post(ctx, "/cgi-bin/menu/create", menu, nil); err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

// GetMenu returns the current custom menu as raw structure.
func (c *Client) GetMenu(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/cgi-bin/menu/get", nil, &out); err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	return out, nil
}

// SendTemplate sends a template message to a single follower.
func (c *Client) SendTemplate(ctx context.Context, openID, templateID, targetURL string, data map[string]any) (int64, error) {
	var out struct {
		MsgID int64 `json:"msgid"`
	}
	payload := map[string]any{
		"touser":      openID,
		"template_id": templateID,
		"url":         targetURL,
		"data":        data,
	}
	if err := c.post(ctx, "/cgi-bin/message/template/send", payload, &out); err != nil {
		return 0, fmt.Errorf("send template to %s: %w", openID, err)
	}
	return out.MsgID, nil
}

// CreateQRCode creates a permanent scene QR code and returns its URL.
func (c *Client) CreateQRCode(ctx context.Context, sceneStr string) (string, error) {
	var out struct {
		Ticket string `json:"ticket"`
		URL    string `json:"url"`
	}
	payload := map[string]any{
		"action_name": "QR_LIMIT_STR_SCENE",
		"action_info": map[string]any{
			"scene": map[string]any{"scene_str": sceneStr},
		},
	}
	if err := c.post(ctx, "/cgi-bin/qrcode/create", payload, &out); err != nil {
		return "", fmt.Errorf("create qrcode %s: %w", sceneStr, err)
	}
	return "https://mp.weixin.qq.com/cgi-bin/showqrcode?ticket=" + url.QueryEscape(out.Ticket), nil
}

// MassSendAll sends a stored news material to all followers.
func (c *Client) MassSendAll(ctx context.Context, mediaID string) (int64, error) {
	var out struct {
		MsgID     int64 `json:"msg_id"`
		MsgDataID int64 `json:"msg_data_id"`
	}
	payload := map[string]any{
		"filter":             map[string]any{"is_to_all": true},
		"mpnews":             map[string]any{"media_id": mediaID},
		"msgtype":            "mpnews",
		"send_ignore_reprint": 0,
	}
	if err := c.post(ctx, "/cgi-bin/message/mass/sendall", payload, &out); err != nil {
		return 0, fmt.Errorf("mass send %s: %w", mediaID, err)
	}
	return out.MsgDataID, nil
}
