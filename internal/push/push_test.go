package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsNotification(t *testing.T) {
	var received Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Send(context.Background(), Notification{
		To:    "ExponentPushToken[abc]",
		Title: "New message",
		Body:  "quiet-otter-42 sent you a voice message",
		Data:  map[string]string{"kind": "new_message", "conversation_id": "conv-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ExponentPushToken[abc]", received.To)
	assert.Equal(t, "default", received.Sound)
	assert.Equal(t, "conv-1", received.Data["conversation_id"])
}

func TestSendSkipsEmptyToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.Send(context.Background(), Notification{Title: "ignored"}))
	assert.False(t, called)
}

func TestSendSurfacesGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Send(context.Background(), Notification{To: "token"})
	assert.Error(t, err)
}
