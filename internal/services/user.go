package services

import (
	"context"
	"fmt"
	"time"

	"talkk-backend/internal/jobs"
	"talkk-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserService handles profile, push-token and moderation business logic
type UserService struct {
	userStore       UserStore
	moderationStore ModerationStore
	queue           EventQueue
}

// NewUserService creates a new user service
func NewUserService(userStore UserStore, moderationStore ModerationStore, queue EventQueue) *UserService {
	return &UserService{
		userStore:       userStore,
		moderationStore: moderationStore,
		queue:           queue,
	}
}

// UpdateProfile changes nickname and gender. Nicknames stay unique.
func (s *UserService) UpdateProfile(ctx context.Context, userID, nickname string, gender models.Gender) (*models.User, error) {
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", ErrValidation)
	}
	switch gender {
	case models.GenderUnknown, models.GenderMale, models.GenderFemale:
	default:
		return nil, fmt.Errorf("%w: invalid gender", ErrValidation)
	}

	current, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	if nickname != current.Nickname {
		taken, err := s.userStore.NicknameExists(ctx, nickname)
		if err != nil {
			return nil, fmt.Errorf("failed to check nickname: %w", err)
		}
		if taken {
			return nil, ErrNicknameTaken
		}
	}

	if err := s.userStore.UpdateProfile(ctx, userID, nickname, gender); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	current.Nickname = nickname
	current.Gender = gender
	return current, nil
}

// RegisterPushToken stores the device push token; nil clears it
func (s *UserService) RegisterPushToken(ctx context.Context, userID string, pushToken *string) error {
	if err := s.userStore.UpdatePushToken(ctx, userID, pushToken); err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}
	return nil
}

// Block creates a blocker->blocked edge
func (s *UserService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return fmt.Errorf("%w: cannot block yourself", ErrValidation)
	}
	if _, err := s.userStore.GetByID(ctx, blockedID); err != nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, blockedID)
	}

	block := &models.Block{
		ID:        uuid.New().String(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now(),
	}
	if err := s.moderationStore.CreateBlock(ctx, block); err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}
	return nil
}

// Unblock removes a blocker->blocked edge
func (s *UserService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if err := s.moderationStore.DeleteBlock(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("%w: block", ErrNotFound)
	}
	return nil
}

// Reports pending against one user before an automatic suspension
const suspendReportThreshold = 3

// Report files a report against another user. Hitting the pending-report
// threshold suspends the reported account and resolves the batch.
func (s *UserService) Report(ctx context.Context, reporterID, reportedID, reason string) error {
	if reporterID == reportedID {
		return fmt.Errorf("%w: cannot report yourself", ErrValidation)
	}
	if reason == "" {
		return fmt.Errorf("%w: reason is required", ErrValidation)
	}
	reported, err := s.userStore.GetByID(ctx, reportedID)
	if err != nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, reportedID)
	}

	now := time.Now()
	report := &models.Report{
		ID:         uuid.New().String(),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.moderationStore.CreateReport(ctx, report); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if reported.Status != models.UserStatusActive {
		return nil
	}

	pending, err := s.moderationStore.PendingReports(ctx, reportedID)
	if err != nil {
		return fmt.Errorf("failed to count pending reports: %w", err)
	}
	if len(pending) < suspendReportThreshold {
		return nil
	}

	if err := s.Suspend(ctx, reportedID); err != nil {
		return fmt.Errorf("failed to suspend reported user: %w", err)
	}
	for _, p := range pending {
		if err := s.moderationStore.ResolveReport(ctx, p.ID); err != nil {
			log.Warn().Err(err).Str("report_id", p.ID).Msg("Failed to resolve report")
		}
	}

	log.Info().
		Str("user_id", reportedID).
		Int("reports", len(pending)).
		Msg("User suspended after repeated reports")

	return nil
}

// Suspend flips a user to suspended and queues the notification
func (s *UserService) Suspend(ctx context.Context, userID string) error {
	if err := s.userStore.UpdateStatus(ctx, userID, models.UserStatusSuspended); err != nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	event := jobs.Event{
		Kind:        jobs.EventAccountSuspended,
		RecipientID: userID,
	}
	if err := s.queue.Enqueue(ctx, event); err != nil {
		// Suspension already took effect; the notification is best-effort.
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to enqueue suspension event")
	}
	return nil
}

// RequireActive rejects suspended and banned accounts for state-changing calls
func RequireActive(user *models.User) error {
	switch user.Status {
	case models.UserStatusBanned:
		return ErrBanned
	case models.UserStatusSuspended:
		return ErrSuspended
	}
	return nil
}
