package jobs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	streamKey     = "notifications:events"
	consumerGroup = "talkk_dispatchers"
)

// Queue produces notification events onto a Redis stream. Delivery is
// at-least-once; consumers tolerate redelivery.
type Queue struct {
	rdb *redis.Client
}

// NewQueue creates a new notification queue
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Enqueue appends one event to the stream
func (q *Queue) Enqueue(ctx context.Context, event Event) error {
	values := map[string]interface{}{
		"kind":         string(event.Kind),
		"recipient_id": event.RecipientID,
	}
	if event.SenderID != "" {
		values["sender_id"] = event.SenderID
	}
	if event.ConversationID != "" {
		values["conversation_id"] = event.ConversationID
	}
	if event.MessageID != "" {
		values["message_id"] = event.MessageID
	}
	if event.BroadcastID != "" {
		values["broadcast_id"] = event.BroadcastID
	}

	err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}
	return nil
}

func eventFromValues(values map[string]interface{}) Event {
	str := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}
	return Event{
		Kind:           EventKind(str("kind")),
		RecipientID:    str("recipient_id"),
		SenderID:       str("sender_id"),
		ConversationID: str("conversation_id"),
		MessageID:      str("message_id"),
		BroadcastID:    str("broadcast_id"),
	}
}
