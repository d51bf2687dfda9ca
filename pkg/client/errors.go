package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory is a coarse classification of request failures
type ErrorCategory string

const (
	// CategoryNetwork covers transport failures before any response arrived
	CategoryNetwork ErrorCategory = "network"
	// CategoryAuth covers 401 and 403 responses
	CategoryAuth ErrorCategory = "auth"
	// CategoryClient covers the remaining 4xx responses
	CategoryClient ErrorCategory = "client"
	// CategoryServer covers 5xx responses
	CategoryServer ErrorCategory = "server"
)

// Error is a failed API call
type Error struct {
	StatusCode int
	Category   ErrorCategory
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s error: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("%s error (%d): %s", e.Category, e.StatusCode, e.Message)
}

func categoryOf(statusCode int) ErrorCategory {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return CategoryAuth
	case statusCode >= 500:
		return CategoryServer
	default:
		return CategoryClient
	}
}

// IsAuth reports whether err is an auth failure
func IsAuth(err error) bool {
	return isCategory(err, CategoryAuth)
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	return isCategory(err, CategoryNetwork)
}

// IsServer reports whether err is a 5xx response
func IsServer(err error) bool {
	return isCategory(err, CategoryServer)
}

func isCategory(err error, category ErrorCategory) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Category == category
}
