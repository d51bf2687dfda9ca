package jobs

// EventKind identifies what a queued notification event is about
type EventKind string

const (
	EventNewMessage       EventKind = "new_message"
	EventBroadcastReply   EventKind = "broadcast_reply"
	EventAccountSuspended EventKind = "account_suspended"
)

// Event carries only ids; the consumer resolves domain objects at
// execution time so entries survive queue (de)serialization.
type Event struct {
	Kind           EventKind `json:"kind"`
	RecipientID    string    `json:"recipient_id"`
	SenderID       string    `json:"sender_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
	BroadcastID    string    `json:"broadcast_id,omitempty"`
}
