package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	name  string
	err   error
	sends int
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(ctx context.Context, n *Notification) error {
	f.sends++
	return f.err
}

func TestManager_BroadcastReachesAllNotifiers(t *testing.T) {
	a := &fakeNotifier{name: "a"}
	b := &fakeNotifier{name: "b"}
	m := NewManager([]Notifier{a, b}, false)

	require.NoError(t, m.Broadcast(context.Background(), &Notification{Title: "hi"}))
	assert.Equal(t, 1, a.sends)
	assert.Equal(t, 1, b.sends)
}

func TestManager_SilentSkipsSends(t *testing.T) {
	a := &fakeNotifier{name: "a"}
	m := NewManager([]Notifier{a}, true)

	require.NoError(t, m.Broadcast(context.Background(), &Notification{Title: "hi"}))
	assert.Zero(t, a.sends)
}

func TestManager_FailureDoesNotStopOthers(t *testing.T) {
	bad := &fakeNotifier{name: "bad", err: errors.New("boom")}
	good := &fakeNotifier{name: "good"}
	m := NewManager([]Notifier{bad, good}, false)

	err := m.Broadcast(context.Background(), &Notification{Title: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, 1, good.sends)
}

func TestWebhook_SignsPayload(t *testing.T) {
	const secret = "s3cret"
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature-256")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, secret)
	require.NoError(t, wh.Send(context.Background(), &Notification{Title: "日报", Body: "text"}))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)
}

func TestWebhook_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, "")
	assert.Error(t, wh.Send(context.Background(), &Notification{Title: "t"}))
}

func TestSlack_PostsFormattedText(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	require.NoError(t, s.Send(context.Background(), &Notification{Title: "周报", Body: "body"}))
	assert.Contains(t, string(gotBody), "*周报*")
	assert.Contains(t, string(gotBody), "body")
}
