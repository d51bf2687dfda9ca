package services

import (
	"context"
	"testing"
	"time"

	"talkk-backend/internal/jobs"
	"talkk-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationFixture struct {
	svc        *ConversationService
	users      *fakeUserStore
	convs      *fakeConversationStore
	messages   *fakeMessageStore
	moderation *fakeModerationStore
	queue      *fakeQueue
}

func newConversationFixture(users ...*models.User) *conversationFixture {
	f := &conversationFixture{
		users:      newFakeUserStore(users...),
		convs:      newFakeConversationStore(),
		messages:   &fakeMessageStore{},
		moderation: &fakeModerationStore{},
		queue:      &fakeQueue{},
	}
	f.svc = NewConversationService(f.convs, f.messages, f.users, f.moderation, f.queue)
	return f
}

func (f *conversationFixture) conversation(t *testing.T, a, b string) *models.Conversation {
	t.Helper()
	c, err := f.convs.GetOrCreate(context.Background(), a, b)
	require.NoError(t, err)
	return c
}

func TestSendAppendsMessageAndNotifiesOtherSide(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0))
	c := f.conversation(t, "alice", "bob")

	message, err := f.svc.Send(context.Background(), c.ID, "alice", "https://cdn/msg.m4a")
	require.NoError(t, err)
	assert.Equal(t, "alice", message.SenderID)
	assert.Equal(t, c.ID, message.ConversationID)

	events := f.queue.all()
	require.Len(t, events, 1)
	assert.Equal(t, jobs.EventNewMessage, events[0].Kind)
	assert.Equal(t, "bob", events[0].RecipientID)
	assert.Equal(t, "alice", events[0].SenderID)
	assert.Equal(t, message.ID, events[0].MessageID)
}

func TestSendRejectsNonParticipant(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0), activeUser("eve", 0))
	c := f.conversation(t, "alice", "bob")

	_, err := f.svc.Send(context.Background(), c.ID, "eve", "https://cdn/msg.m4a")
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Empty(t, f.queue.all())
}

func TestSendRejectsUnknownConversation(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0))

	_, err := f.svc.Send(context.Background(), "missing", "alice", "https://cdn/msg.m4a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendBetweenBlockedUsersFails(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0))
	c := f.conversation(t, "alice", "bob")

	require.NoError(t, f.moderation.CreateBlock(context.Background(), &models.Block{
		ID: "blk-1", BlockerID: "bob", BlockedID: "alice",
	}))

	_, err := f.svc.Send(context.Background(), c.ID, "alice", "https://cdn/msg.m4a")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestSendRejectsSuspendedSender(t *testing.T) {
	suspended := &models.User{ID: "alice", Status: models.UserStatusSuspended}
	f := newConversationFixture(suspended, activeUser("bob", 0))
	c := f.conversation(t, "alice", "bob")

	_, err := f.svc.Send(context.Background(), c.ID, "alice", "https://cdn/msg.m4a")
	assert.ErrorIs(t, err, ErrSuspended)
}

func TestHistoryMarksOtherSideRead(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0))
	c := f.conversation(t, "alice", "bob")

	_, err := f.svc.Send(context.Background(), c.ID, "bob", "https://cdn/one.m4a")
	require.NoError(t, err)
	_, err = f.svc.Send(context.Background(), c.ID, "alice", "https://cdn/two.m4a")
	require.NoError(t, err)

	_, messages, err := f.svc.History(context.Background(), c.ID, "alice")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	for _, m := range messages {
		if m.SenderID == "bob" {
			assert.True(t, m.Read, "incoming message should be read after viewing")
		} else {
			assert.False(t, m.Read, "own message stays unread until the other side views")
		}
	}
}

func TestHistoryRejectsNonParticipant(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0), activeUser("eve", 0))
	c := f.conversation(t, "alice", "bob")

	_, _, err := f.svc.History(context.Background(), c.ID, "eve")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestFavoriteIsPerSide(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0))
	c := f.conversation(t, "alice", "bob")

	require.NoError(t, f.svc.Favorite(context.Background(), c.ID, "alice", true))

	stored, err := f.convs.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, stored.FavoriteFor("alice"))
	assert.False(t, stored.FavoriteFor("bob"))
}

func TestDeleteRemovesConversation(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0))
	c := f.conversation(t, "alice", "bob")

	require.NoError(t, f.svc.Delete(context.Background(), c.ID, "bob"))

	_, err := f.convs.GetByID(context.Background(), c.ID)
	assert.Error(t, err)
}

func TestDeleteRejectsNonParticipant(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0), activeUser("eve", 0))
	c := f.conversation(t, "alice", "bob")

	err := f.svc.Delete(context.Background(), c.ID, "eve")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestListOrdersByLastActivity(t *testing.T) {
	f := newConversationFixture(activeUser("alice", 0), activeUser("bob", 0), activeUser("carol", 0))

	older := f.conversation(t, "alice", "bob")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := f.conversation(t, "alice", "carol")
	newer.UpdatedAt = time.Now()

	got, err := f.svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}
