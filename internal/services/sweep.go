package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Verification records linger this long past their expiry before cleanup
const verificationRetention = 30 * time.Minute

// SweepService runs the periodic maintenance loops: deactivating expired
// broadcasts (and dropping the feed cache so the next list reflects it)
// and garbage-collecting stale verification records.
type SweepService struct {
	broadcastStore    BroadcastStore
	verificationStore VerificationStore
	feedCache         FeedCache
	sweepInterval     time.Duration
	cleanupInterval   time.Duration
	cancel            context.CancelFunc
	done              chan struct{}
}

// NewSweepService creates a new sweep service
func NewSweepService(
	broadcastStore BroadcastStore,
	verificationStore VerificationStore,
	feedCache FeedCache,
	sweepInterval, cleanupInterval time.Duration,
) *SweepService {
	return &SweepService{
		broadcastStore:    broadcastStore,
		verificationStore: verificationStore,
		feedCache:         feedCache,
		sweepInterval:     sweepInterval,
		cleanupInterval:   cleanupInterval,
	}
}

// Start launches the background loops
func (s *SweepService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{}, 2)

	go func() {
		defer func() { s.done <- struct{}{} }()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.SweepBroadcasts(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer func() { s.done <- struct{}{} }()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.CleanupVerifications(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().
		Dur("sweep_interval", s.sweepInterval).
		Dur("cleanup_interval", s.cleanupInterval).
		Msg("Sweep service started")
}

// Stop cancels the loops and waits for them to exit
func (s *SweepService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	<-s.done
	log.Info().Msg("Sweep service stopped")
}

// SweepBroadcasts bulk-flips broadcasts past their expiry in one atomic
// statement and invalidates the feed cache when anything changed.
func (s *SweepService) SweepBroadcasts(ctx context.Context) {
	flipped, err := s.broadcastStore.ExpireDue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Broadcast sweep failed")
		return
	}
	if flipped == 0 {
		return
	}

	log.Info().Int64("expired", flipped).Msg("Deactivated expired broadcasts")

	if err := s.feedCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate broadcast cache after sweep")
	}
}

// CleanupVerifications removes verification rows 30 minutes past expiry
func (s *SweepService) CleanupVerifications(ctx context.Context) {
	cutoff := time.Now().Add(-verificationRetention)
	removed, err := s.verificationStore.DeleteExpired(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Verification cleanup failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Cleaned up stale verifications")
	}
}
