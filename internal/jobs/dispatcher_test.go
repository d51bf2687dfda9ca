package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"talkk-backend/internal/models"
	"talkk-backend/internal/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	users map[string]*models.User
}

func (r *fakeResolver) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return user, nil
}

type fakePusher struct {
	mu   sync.Mutex
	sent []push.Notification
	fail bool
}

func (p *fakePusher) Send(ctx context.Context, n push.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("gateway down")
	}
	p.sent = append(p.sent, n)
	return nil
}

func userWithToken(id, nickname, token string) *models.User {
	return &models.User{ID: id, Nickname: nickname, PushToken: &token}
}

func TestProcessDeliversNewMessagePush(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{
		"bob":   userWithToken("bob", "sunny-otter-12", "ExponentPushToken[bob]"),
		"alice": userWithToken("alice", "misty-comet-34", "ExponentPushToken[alice]"),
	}}
	pusher := &fakePusher{}
	d := NewDispatcher(nil, resolver, pusher)

	err := d.process(context.Background(), Event{
		Kind:           EventNewMessage,
		RecipientID:    "bob",
		SenderID:       "alice",
		ConversationID: "conv-1",
		MessageID:      "msg-1",
	})
	require.NoError(t, err)

	require.Len(t, pusher.sent, 1)
	n := pusher.sent[0]
	assert.Equal(t, "ExponentPushToken[bob]", n.To)
	assert.Equal(t, "New message", n.Title)
	assert.Contains(t, n.Body, "misty-comet-34")
	assert.Equal(t, "new_message", n.Data["kind"])
	assert.Equal(t, "conv-1", n.Data["conversation_id"])
	assert.Equal(t, "msg-1", n.Data["message_id"])
}

func TestProcessSkipsRecipientWithoutToken(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{
		"bob": {ID: "bob", Nickname: "sunny-otter-12"},
	}}
	pusher := &fakePusher{}
	d := NewDispatcher(nil, resolver, pusher)

	err := d.process(context.Background(), Event{Kind: EventAccountSuspended, RecipientID: "bob"})

	assert.NoError(t, err)
	assert.Empty(t, pusher.sent)
}

func TestProcessSkipsMissingRecipient(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{}}
	pusher := &fakePusher{}
	d := NewDispatcher(nil, resolver, pusher)

	// A recipient that no longer exists never resolves: no error, so the
	// entry gets acked instead of replayed forever.
	err := d.process(context.Background(), Event{Kind: EventNewMessage, RecipientID: "gone", SenderID: "alice"})

	assert.NoError(t, err)
	assert.Empty(t, pusher.sent)
}

func TestProcessReportsGatewayFailureForRetry(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{
		"bob":   userWithToken("bob", "sunny-otter-12", "ExponentPushToken[bob]"),
		"alice": userWithToken("alice", "misty-comet-34", "ExponentPushToken[alice]"),
	}}
	pusher := &fakePusher{fail: true}
	d := NewDispatcher(nil, resolver, pusher)

	err := d.process(context.Background(), Event{Kind: EventNewMessage, RecipientID: "bob", SenderID: "alice"})

	assert.Error(t, err)
	assert.Empty(t, pusher.sent)
}

func TestComposePerKind(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{
		"alice": userWithToken("alice", "misty-comet-34", "t"),
	}}
	d := NewDispatcher(nil, resolver, &fakePusher{})

	title, body, err := d.compose(context.Background(), Event{Kind: EventBroadcastReply, SenderID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "New reply", title)
	assert.Contains(t, body, "misty-comet-34")

	title, _, err = d.compose(context.Background(), Event{Kind: EventAccountSuspended})
	require.NoError(t, err)
	assert.Equal(t, "Account suspended", title)

	_, _, err = d.compose(context.Background(), Event{Kind: EventKind("bogus")})
	assert.Error(t, err)
}

func TestComposeFailsWhenSenderGone(t *testing.T) {
	d := NewDispatcher(nil, &fakeResolver{users: map[string]*models.User{}}, &fakePusher{})

	_, _, err := d.compose(context.Background(), Event{Kind: EventNewMessage, SenderID: "gone"})
	assert.Error(t, err)
}

func TestEventValuesRoundTrip(t *testing.T) {
	original := Event{
		Kind:           EventBroadcastReply,
		RecipientID:    "owner",
		SenderID:       "replier",
		ConversationID: "conv-1",
		MessageID:      "msg-1",
		BroadcastID:    "bcast-1",
	}

	values := map[string]interface{}{
		"kind":            string(original.Kind),
		"recipient_id":    original.RecipientID,
		"sender_id":       original.SenderID,
		"conversation_id": original.ConversationID,
		"message_id":      original.MessageID,
		"broadcast_id":    original.BroadcastID,
	}

	assert.Equal(t, original, eventFromValues(values))
}

func TestEventFromValuesToleratesMissingFields(t *testing.T) {
	event := eventFromValues(map[string]interface{}{
		"kind":         "account_suspended",
		"recipient_id": "user-1",
	})

	assert.Equal(t, EventAccountSuspended, event.Kind)
	assert.Equal(t, "user-1", event.RecipientID)
	assert.Empty(t, event.SenderID)
	assert.Empty(t, event.BroadcastID)
}
