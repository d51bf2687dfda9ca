package client

import (
	"context"
	"fmt"
	"net/url"
)

// RequestCode asks the backend to send a verification code to phone
func (c *Client) RequestCode(ctx context.Context, phone string) error {
	return c.post(ctx, "/api/v1/auth/request_code", RequestCodeRequest{Phone: phone}, nil)
}

// VerifyCode exchanges the received code for a session and installs its token
func (c *Client) VerifyCode(ctx context.Context, phone, code string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/api/v1/auth/verify_code", VerifyCodeRequest{Phone: phone, Code: code}, &session)
	if err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Me returns the caller's own profile
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/api/v1/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the caller's nickname and gender
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var user User
	if err := c.put(ctx, "/api/v1/users/me", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterPushToken stores the device push token; nil clears it
func (c *Client) RegisterPushToken(ctx context.Context, pushToken *string) error {
	return c.post(ctx, "/api/v1/users/me/push_token", PushTokenRequest{PushToken: pushToken}, nil)
}

// BlockUser blocks another user
func (c *Client) BlockUser(ctx context.Context, userID string) error {
	return c.post(ctx, fmt.Sprintf("/api/v1/users/%s/block", url.PathEscape(userID)), nil, nil)
}

// UnblockUser removes a block
func (c *Client) UnblockUser(ctx context.Context, userID string) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/users/%s/block", url.PathEscape(userID)))
}

// ReportUser files a report against another user
func (c *Client) ReportUser(ctx context.Context, userID, reason string) error {
	return c.post(ctx, fmt.Sprintf("/api/v1/users/%s/report", url.PathEscape(userID)), ReportRequest{Reason: reason}, nil)
}

// ListBroadcasts returns the active broadcast feed
func (c *Client) ListBroadcasts(ctx context.Context) ([]*Broadcast, error) {
	var resp struct {
		Broadcasts []*Broadcast `json:"broadcasts"`
	}
	if err := c.get(ctx, "/api/v1/broadcasts", &resp); err != nil {
		return nil, err
	}
	return resp.Broadcasts, nil
}

// CreateBroadcast publishes a new broadcast from an uploaded audio URL
func (c *Client) CreateBroadcast(ctx context.Context, audioURL string) (*Broadcast, error) {
	var broadcast Broadcast
	err := c.post(ctx, "/api/v1/broadcasts", CreateBroadcastRequest{AudioURL: audioURL}, &broadcast)
	if err != nil {
		return nil, err
	}
	return &broadcast, nil
}

// DeactivateBroadcast withdraws the caller's own broadcast
func (c *Client) DeactivateBroadcast(ctx context.Context, broadcastID string) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/broadcasts/%s", url.PathEscape(broadcastID)))
}

// ReplyToBroadcast answers a broadcast with a voice message
func (c *Client) ReplyToBroadcast(ctx context.Context, broadcastID, audioURL string) (*ReplyResult, error) {
	var result ReplyResult
	path := fmt.Sprintf("/api/v1/broadcasts/%s/reply", url.PathEscape(broadcastID))
	if err := c.post(ctx, path, ReplyRequest{AudioURL: audioURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PresignBroadcastUpload returns an upload slot for a broadcast audio file
func (c *Client) PresignBroadcastUpload(ctx context.Context, contentType string) (*AudioUpload, error) {
	var upload AudioUpload
	err := c.post(ctx, "/api/v1/broadcasts/upload", UploadRequest{ContentType: contentType}, &upload)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// ListConversations returns the caller's conversations, most recent first
func (c *Client) ListConversations(ctx context.Context) ([]*Conversation, error) {
	var resp struct {
		Conversations []*Conversation `json:"conversations"`
	}
	if err := c.get(ctx, "/api/v1/conversations", &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// ConversationHistory returns a conversation and its full message list
func (c *Client) ConversationHistory(ctx context.Context, conversationID string) (*History, error) {
	var history History
	path := fmt.Sprintf("/api/v1/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.get(ctx, path, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// SendMessage posts a voice message into a conversation
func (c *Client) SendMessage(ctx context.Context, conversationID, audioURL string) (*Message, error) {
	var message Message
	path := fmt.Sprintf("/api/v1/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.post(ctx, path, SendMessageRequest{AudioURL: audioURL}, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// SetFavorite toggles the caller's favorite flag on a conversation
func (c *Client) SetFavorite(ctx context.Context, conversationID string, favorite bool) error {
	path := fmt.Sprintf("/api/v1/conversations/%s/favorite", url.PathEscape(conversationID))
	return c.put(ctx, path, FavoriteRequest{Favorite: favorite}, nil)
}

// DeleteConversation removes a conversation and its messages
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/conversations/%s", url.PathEscape(conversationID)))
}

// PresignMessageUpload returns an upload slot for a message audio file
func (c *Client) PresignMessageUpload(ctx context.Context, contentType string) (*AudioUpload, error) {
	var upload AudioUpload
	err := c.post(ctx, "/api/v1/conversations/upload", UploadRequest{ContentType: contentType}, &upload)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// Balance returns the caller's credit balance
func (c *Client) Balance(ctx context.Context) (int, error) {
	var resp struct {
		Credits int `json:"credits"`
	}
	if err := c.get(ctx, "/api/v1/wallet", &resp); err != nil {
		return 0, err
	}
	return resp.Credits, nil
}

// Transactions returns the caller's credit ledger, newest first
func (c *Client) Transactions(ctx context.Context) ([]*Transaction, error) {
	var resp struct {
		Transactions []*Transaction `json:"transactions"`
	}
	if err := c.get(ctx, "/api/v1/wallet/transactions", &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}
