package models

import "time"

// Gender is the user-declared gender
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// UserStatus is the moderation status of an account
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

// User represents a user in the system
type User struct {
	ID        string     `json:"id"`
	Phone     string     `json:"phone"`
	Nickname  string     `json:"nickname"`
	Gender    Gender     `json:"gender"`
	Verified  bool       `json:"verified"`
	PushToken *string    `json:"push_token,omitempty"`
	Status    UserStatus `json:"status"`
	Credits   int        `json:"credits"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PhoneVerification pairs a phone number with a short-lived numeric code
type PhoneVerification struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Broadcast is a time-boxed voice post visible to other users until it
// expires or is deactivated by its owner
type Broadcast struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AudioURL  string    `json:"audio_url"`
	Active    bool      `json:"active"`
	ExpiredAt time.Time `json:"expired_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a private two-party thread. UserAID is always the
// lexicographically smaller id so a pair maps to exactly one row.
type Conversation struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	FavoriteA bool      `json:"favorite_a"`
	FavoriteB bool      `json:"favorite_b"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OtherUserID returns the participant that is not userID
func (c *Conversation) OtherUserID(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// HasParticipant reports whether userID is one of the two participants
func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// FavoriteFor returns the favorite flag for the given participant's side
func (c *Conversation) FavoriteFor(userID string) bool {
	if c.UserAID == userID {
		return c.FavoriteA
	}
	return c.FavoriteB
}

// Message is a single voice message inside a conversation
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	AudioURL       string    `json:"audio_url"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// Block is a directed blocker->blocked edge between two users
type Block struct {
	ID        string    `json:"id"`
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportStatus is the moderation state of a report
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
)

// Report is a directed reporter->reported edge with a reason
type Report struct {
	ID         string       `json:"id"`
	ReporterID string       `json:"reporter_id"`
	ReportedID string       `json:"reported_id"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// TransactionKind classifies a credit ledger entry
type TransactionKind string

const (
	TransactionKindGrant  TransactionKind = "grant"
	TransactionKindSpend  TransactionKind = "spend"
	TransactionKindRefund TransactionKind = "refund"
)

// CreditTransaction is one append-only entry in a user's credit ledger
type CreditTransaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    int             `json:"amount"`
	Kind      TransactionKind `json:"kind"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"created_at"`
}
