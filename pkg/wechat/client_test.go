package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticCreds is a provider that always hands out one token.
type staticCreds struct{ token string }

func (s staticCreds) Token(ctx context.Context) (string, error) { return s.token, nil }

func newTokenServer(t *testing.T, tokenCalls *int32, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cgi-bin/token", r.URL.Path)
		require.Equal(t, "client_credential", r.URL.Query().Get("grant_type"))
		n := atomic.AddInt32(tokenCalls, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("tok-%d", n),
			"expires_in":   expiresIn,
		})
	}))
}

func TestAppCredentials_CachesToken(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, &calls, 7200)
	defer srv.Close()

	creds := NewAppCredentials("appid", "secret", srv.URL)

	first, err := creds.Token(context.Background())
	require.NoError(t, err)
	second, err := creds.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestAppCredentials_RefreshesNearExpiry(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, &calls, 7200)
	defer srv.Close()

	creds := NewAppCredentials("appid", "secret", srv.URL)
	base := time.Now()
	creds.now = func() time.Time { return base }

	first, err := creds.Token(context.Background())
	require.NoError(t, err)

	// Jump to inside the one-minute refresh margin.
	creds.now = func() time.Time { return base.Add(7200*time.Second - 30*time.Second) }
	second, err := creds.Token(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestAppCredentials_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"errcode": 40013, "errmsg": "invalid appid"})
	}))
	defer srv.Close()

	creds := NewAppCredentials("bad", "secret", srv.URL)
	_, err := creds.Token(context.Background())
	require.Error(t, err)
	assert.True(t, IsAPIError(err, 40013))
	assert.Contains(t, err.Error(), "invalid appid")
}

func TestClient_NonzeroErrcodeBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"errcode": 88000, "errmsg": "without comment privilege"})
	}))
	defer srv.Close()

	client := NewClient(staticCreds{token: "tok"}, srv.URL)
	_, _, err := client.ListComments(context.Background(), "article", 0, 0, 10)
	require.Error(t, err)
	assert.True(t, IsAPIError(err, ErrCodeCommentClosed))
	assert.False(t, IsAPIError(err, 40001))
}

func TestClient_AttachesAccessToken(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("access_token")
		json.NewEncoder(w).Encode(map[string]any{"media_id": "m1"})
	}))
	defer srv.Close()

	client := NewClient(staticCreds{token: "tok-123"}, srv.URL)
	mediaID, err := client.AddDraft(context.Background(), []Article{{Title: "T", Content: "c"}})
	require.NoError(t, err)
	assert.Equal(t, "m1", mediaID)
	assert.Equal(t, "tok-123", gotToken)
}

func TestClient_DraftContentNotHTMLEscaped(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{"media_id": "m1"})
	}))
	defer srv.Close()

	client := NewClient(staticCreds{token: "tok"}, srv.URL)
	_, err := client.AddDraft(context.Background(), []Article{
		{Title: "T", Content: "<p>a &amp; b</p>"},
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "<p>a &amp; b</p>"),
		"content should survive unescaped, got %s", body)
}

func TestListPublished_FlattensNewsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cgi-bin/freepublish/batchget", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"total_count": 1,
			"item_count":  1,
			"item": []map[string]any{{
				"article_id":  "art-1",
				"update_time": 1756502400,
				"content": map[string]any{
					"news_item": []map[string]any{{"title": "Hello", "url": "https://mp.example/a"}},
				},
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(staticCreds{token: "tok"}, srv.URL)
	articles, err := client.ListPublished(context.Background(), 0, 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "art-1", articles[0].ArticleID)
	assert.Equal(t, "Hello", articles[0].Title)
	assert.Equal(t, "https://mp.example/a", articles[0].URL)
	assert.Equal(t, time.Unix(1756502400, 0).UTC(), articles[0].UpdateTime)
}

func TestAPIError_ErrorString(t *testing.T) {
	err := &APIError{Code: 45009, Msg: "reach max api daily quota limit"}
	assert.Equal(t, "wechat api error 45009: reach max api daily quota limit", err.Error())
}
