package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"talkk-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	codeLength      = 6
	codeTTL         = 5 * time.Minute
	maxCodeAttempts = 5
	signupGrant     = 10
)

var nicknameAdjectives = []string{
	"quiet", "sunny", "misty", "velvet", "amber", "cosmic", "mellow", "breezy",
	"dusky", "silver", "coral", "golden", "hazel", "indigo", "lively", "gentle",
}

var nicknameNouns = []string{
	"otter", "sparrow", "willow", "comet", "harbor", "meadow", "ember", "ripple",
	"cloud", "pebble", "lantern", "thistle", "brook", "falcon", "clover", "echo",
}

// AuthService handles phone verification and bearer tokens
type AuthService struct {
	userStore         UserStore
	verificationStore VerificationStore
	codeSender        CodeSender
	jwtSecret         string
	jwtExpDays        int
}

// NewAuthService creates a new auth service
func NewAuthService(userStore UserStore, verificationStore VerificationStore, codeSender CodeSender, jwtSecret string, jwtExpDays int) *AuthService {
	return &AuthService{
		userStore:         userStore,
		verificationStore: verificationStore,
		codeSender:        codeSender,
		jwtSecret:         jwtSecret,
		jwtExpDays:        jwtExpDays,
	}
}

// RequestCode issues a 6-digit verification code for a phone number and
// sends it out of band. An unexpired code for the same phone is re-sent
// instead of minting a second one.
func (s *AuthService) RequestCode(ctx context.Context, phone string) error {
	if !validPhone(phone) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}

	existing, err := s.verificationStore.GetActiveByPhone(ctx, phone)
	if err == nil {
		return s.codeSender.Send(ctx, phone, verificationText(existing.Code))
	}

	v := &models.PhoneVerification{
		ID:        uuid.New().String(),
		Phone:     phone,
		Code:      generateDigits(codeLength),
		ExpiresAt: time.Now().Add(codeTTL),
		CreatedAt: time.Now(),
	}
	if err := s.verificationStore.Create(ctx, v); err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}

	return s.codeSender.Send(ctx, phone, verificationText(v.Code))
}

// VerifyCode checks a submitted code, consumes the verification record on
// success, finds or creates the user, and issues a bearer token. A code is
// single use: a second verify with the same code fails on the consumed record.
func (s *AuthService) VerifyCode(ctx context.Context, phone, code string) (*models.User, string, error) {
	v, err := s.verificationStore.GetActiveByPhone(ctx, phone)
	if err != nil {
		return nil, "", ErrCodeExpired
	}

	// A record over the cap is burned: even the right code is refused.
	if v.Attempts >= maxCodeAttempts {
		return nil, "", ErrTooManyAttempts
	}

	if v.Code != code {
		attempts, err := s.verificationStore.IncrementAttempts(ctx, v.ID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to record attempt: %w", err)
		}
		if attempts >= maxCodeAttempts {
			return nil, "", ErrTooManyAttempts
		}
		return nil, "", ErrCodeMismatch
	}

	if err := s.verificationStore.MarkVerified(ctx, v.ID); err != nil {
		return nil, "", fmt.Errorf("failed to consume verification: %w", err)
	}

	user, err := s.userStore.GetByPhone(ctx, phone)
	if err != nil {
		user, err = s.registerUser(ctx, phone)
		if err != nil {
			return nil, "", err
		}
	}

	if user.Status == models.UserStatusBanned {
		return nil, "", ErrBanned
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *AuthService) registerUser(ctx context.Context, phone string) (*models.User, error) {
	nickname, err := s.generateNickname(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nickname: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New().String(),
		Phone:     phone,
		Nickname:  nickname,
		Gender:    models.GenderUnknown,
		Verified:  true,
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	grant := &models.CreditTransaction{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Amount:    signupGrant,
		Kind:      models.TransactionKindGrant,
		Note:      "signup grant",
		CreatedAt: now,
	}
	if err := s.userStore.AdjustCredits(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to grant signup credits: %w", err)
	}
	user.Credits = signupGrant

	return user, nil
}

// generateNickname builds a readable unique nickname, retrying on collision
func (s *AuthService) generateNickname(ctx context.Context) (string, error) {
	maxAttempts := 10
	for i := 0; i < maxAttempts; i++ {
		adj := nicknameAdjectives[randomInt(len(nicknameAdjectives))]
		noun := nicknameNouns[randomInt(len(nicknameNouns))]
		nickname := fmt.Sprintf("%s-%s-%s", adj, noun, generateDigits(2))

		exists, err := s.userStore.NicknameExists(ctx, nickname)
		if err != nil {
			return "", fmt.Errorf("failed to check nickname: %w", err)
		}
		if !exists {
			return nickname, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique nickname after %d attempts", maxAttempts)
}

// GenerateJWT generates a bearer token for a user
func (s *AuthService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, s.jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a bearer token and returns the user ID. Expiry is
// enforced by the parse itself and surfaced distinctly from a bad signature.
func (s *AuthService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", ErrInvalidToken
	}

	return userID, nil
}

func verificationText(code string) string {
	return fmt.Sprintf("TALKK verification code: %s", code)
}

// generateDigits returns n random decimal digits
func generateDigits(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		digits[i] = byte('0' + randomInt(10))
	}
	return string(digits)
}

func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func validPhone(phone string) bool {
	if len(phone) < 8 || len(phone) > 15 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
