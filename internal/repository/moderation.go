package repository

import (
	"context"
	"fmt"

	"talkk-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModerationRepository handles database operations for blocks and reports
type ModerationRepository struct {
	db *pgxpool.Pool
}

// NewModerationRepository creates a new moderation repository
func NewModerationRepository(db *pgxpool.Pool) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// CreateBlock creates a blocker->blocked edge. Creating the same edge twice
// is a no-op.
func (r *ModerationRepository) CreateBlock(ctx context.Context, b *models.Block) error {
	query := `
		INSERT INTO blocks (id, blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, b.ID, b.BlockerID, b.BlockedID, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

// DeleteBlock removes a blocker->blocked edge
func (r *ModerationRepository) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	query := `DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`
	result, err := r.db.Exec(ctx, query, blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("block not found")
	}
	return nil
}

// IsBlocked reports whether a block exists between two users in either direction
func (r *ModerationRepository) IsBlocked(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2) OR (blocker_id = $2 AND blocked_id = $1)
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, otherID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return exists, nil
}

// BlockedUserIDs returns every user the given user has blocked or been blocked by
func (r *ModerationRepository) BlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT blocked_id FROM blocks WHERE blocker_id = $1
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan blocked user: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocked users: %w", err)
	}

	return ids, nil
}

// CreateReport files a reporter->reported report
func (r *ModerationRepository) CreateReport(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (id, reporter_id, reported_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		report.ID, report.ReporterID, report.ReportedID, report.Reason,
		report.Status, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// PendingReports returns the unresolved reports filed against a user,
// oldest first
func (r *ModerationRepository) PendingReports(ctx context.Context, reportedID string) ([]*models.Report, error) {
	query := `
		SELECT id, reporter_id, reported_id, reason, status, created_at, updated_at
		FROM reports
		WHERE reported_id = $1 AND status = $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, reportedID, models.ReportStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var report models.Report
		err := rows.Scan(
			&report.ID, &report.ReporterID, &report.ReportedID, &report.Reason,
			&report.Status, &report.CreatedAt, &report.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

// ResolveReport marks a report resolved
func (r *ModerationRepository) ResolveReport(ctx context.Context, id string) error {
	query := `UPDATE reports SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, models.ReportStatusResolved, id)
	if err != nil {
		return fmt.Errorf("failed to resolve report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("report not found")
	}
	return nil
}
