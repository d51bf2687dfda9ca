package services

import "errors"

// Sentinel errors handlers map onto HTTP status codes with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrNotParticipant = errors.New("user is not a participant")
	ErrNotOwner       = errors.New("user is not the owner")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrCodeMismatch    = errors.New("verification code does not match")
	ErrCodeExpired     = errors.New("verification code expired or already used")
	ErrTooManyAttempts = errors.New("too many verification attempts")

	ErrBlocked             = errors.New("blocked between users")
	ErrSuspended           = errors.New("account suspended")
	ErrBanned              = errors.New("account banned")
	ErrNicknameTaken       = errors.New("nickname already taken")
	ErrInsufficientCredits = errors.New("insufficient credits")
)
