// Package wechat is a thin client for the WeChat Official Account API.
// All calls funnel through a single authenticated request helper that
// converts nonzero upstream error codes into *APIError values.
package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.weixin.qq.com"

// APIError is a structured upstream failure embedding the platform's
// error code and message.
type APIError struct {
	Code int    `json:"errcode"`
	Msg  string `json:"errmsg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error %d: %s", e.Code, e.Msg)
}

// CredentialProvider supplies a valid access token on demand. Implementations
// own caching and refresh; the client never touches token state directly.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// AppCredentials caches an access token with its expiry and refreshes it
// transparently when expired or absent.
type AppCredentials struct {
	appID     string
	appSecret string
	baseURL   string
	client    *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewAppCredentials creates a token provider for the given app.
func NewAppCredentials(appID, appSecret, baseURL string) *AppCredentials {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &AppCredentials{
		appID:     appID,
		appSecret: appSecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

// Token returns the cached access token, refreshing it first when it is
// missing or within a minute of expiry.
func (c *AppCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt.Add(-time.Minute)) {
		return c.token, nil
	}

	u := fmt.Sprintf("%s/cgi-bin/token?grant_type=client_credential&appid=%s&secret=%s",
		c.baseURL, url.QueryEscape(c.appID), url.QueryEscape(c.appSecret))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		APIError
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.Code != 0 {
		return "", &APIError{Code: body.Code, Msg: body.Msg}
	}

	c.token = body.AccessToken
	c.expiresAt = c.now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return c.token, nil
}

// Client calls the Official Account API.
type Client struct {
	baseURL string
	creds   CredentialProvider
	client  *http.Client
}

// NewClient creates a client with an injected credential provider.
func NewClient(creds CredentialProvider, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", token)
	u := c.baseURL + path + "?" + query.Encode()

	var body io.Reader
	if payload != nil {
		buf, err := marshalNoEscape(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request %s: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	var apiErr APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != 0 {
		return &apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

// marshalNoEscape marshals without HTML-escaping so article content with
// <, >, & survives the wire intact.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// IsAPIError reports whether err is an upstream failure with the given code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
