package client

import "time"

// User is a user account as returned by the API
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Nickname  string    `json:"nickname"`
	Gender    string    `json:"gender"`
	Verified  bool      `json:"verified"`
	PushToken *string   `json:"push_token,omitempty"`
	Status    string    `json:"status"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Broadcast is an active voice post in the public feed
type Broadcast struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AudioURL  string    `json:"audio_url"`
	Active    bool      `json:"active"`
	ExpiredAt time.Time `json:"expired_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a two-party thread shaped for the requesting viewer
type Conversation struct {
	ID          string `json:"id"`
	OtherUserID string `json:"other_user_id"`
	Favorite    bool   `json:"favorite"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
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

// Transaction is one entry in the credit ledger
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int       `json:"amount"`
	Kind      string    `json:"kind"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// AudioUpload is a presigned upload slot for an audio file
type AudioUpload struct {
	UploadURL string `json:"upload_url"`
	AudioURL  string `json:"audio_url"`
	ExpiresIn int    `json:"expires_in"`
}

// RequestCodeRequest asks for a verification code by SMS
type RequestCodeRequest struct {
	Phone string `json:"phone"`
}

// VerifyCodeRequest exchanges a received code for a session
type VerifyCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// Session is the result of a successful verification
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateProfileRequest changes the caller's nickname and gender
type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
	Gender   string `json:"gender"`
}

// PushTokenRequest registers or clears the device push token
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// ReportRequest files a report against another user
type ReportRequest struct {
	Reason string `json:"reason"`
}

// CreateBroadcastRequest publishes a new broadcast
type CreateBroadcastRequest struct {
	AudioURL string `json:"audio_url"`
}

// ReplyRequest answers a broadcast with a voice message
type ReplyRequest struct {
	AudioURL string `json:"audio_url"`
}

// ReplyResult is the conversation the reply landed in and the message itself
type ReplyResult struct {
	Conversation *Conversation `json:"conversation"`
	Message      *Message      `json:"message"`
}

// SendMessageRequest posts a voice message into a conversation
type SendMessageRequest struct {
	AudioURL string `json:"audio_url"`
}

// FavoriteRequest toggles the caller's favorite flag on a conversation
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// UploadRequest asks for a presigned audio upload slot
type UploadRequest struct {
	ContentType string `json:"content_type"`
}

// History is a conversation together with its full message list
type History struct {
	Conversation *Conversation `json:"conversation"`
	Messages     []*Message    `json:"messages"`
}
