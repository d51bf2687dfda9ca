package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Sender delivers verification codes to a phone number
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

type smsMessage struct {
	To     string `json:"to"`
	From   string `json:"from"`
	Text   string `json:"text"`
	APIKey string `json:"api_key"`
}

// HTTPSender sends SMS through a provider's HTTP API
type HTTPSender struct {
	endpoint   string
	apiKey     string
	sender     string
	httpClient *http.Client
}

// NewHTTPSender creates a new SMS sender
func NewHTTPSender(endpoint, apiKey, sender string) *HTTPSender {
	return &HTTPSender{
		endpoint:   endpoint,
		apiKey:     apiKey,
		sender:     sender,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one SMS. When no endpoint is configured the code is only
// logged, which is how development environments run.
func (s *HTTPSender) Send(ctx context.Context, phone, text string) error {
	if s.endpoint == "" {
		log.Info().Str("phone", phone).Str("text", text).Msg("SMS provider not configured, logging only")
		return nil
	}

	body, err := json.Marshal(smsMessage{
		To:     phone,
		From:   s.sender,
		Text:   text,
		APIKey: s.apiKey,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	return nil
}
