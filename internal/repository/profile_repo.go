package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"go.uber.org/zap"
)

// ProfileRepository handles account profile and quota counter operations
type ProfileRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a profile row.
func (r *ProfileRepository) Create(profile *models.Profile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		"INSERT INTO profiles (id, email, uploads_used, emails_used, quota_start_at, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		profile.ID, profile.Email, profile.UploadsUsed, profile.EmailsUsed, profile.QuotaStartAt, profile.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create profile", zap.String("user_id", profile.ID), zap.Error(err))
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile. Returns (nil, nil) when absent.
func (r *ProfileRepository) GetByID(id string) (*models.Profile, error) {
	var profile models.Profile
	var quotaStart sql.NullTime

	err := r.db.QueryRow(
		"SELECT id, email, uploads_used, emails_used, quota_start_at, created_at FROM profiles WHERE id = ?",
		id,
	).Scan(
		&profile.ID,
		&profile.Email,
		&profile.UploadsUsed,
		&profile.EmailsUsed,
		&quotaStart,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get profile", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if quotaStart.Valid {
		profile.QuotaStartAt = &quotaStart.Time
	}
	return &profile, nil
}

// ResetQuotaWindow starts a fresh quota window with zeroed counters.
func (r *ProfileRepository) ResetQuotaWindow(id string, startAt time.Time) error {
	_, err := r.db.Exec(
		"UPDATE profiles SET quota_start_at = ?, uploads_used = 0, emails_used = 0 WHERE id = ?",
		startAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to reset quota window: %w", err)
	}
	return nil
}

// SetUploadsUsed overwrites the upload counter. Quota self-healing only calls
// this to raise the value, never to lower it.
func (r *ProfileRepository) SetUploadsUsed(id string, uploads int) error {
	_, err := r.db.Exec("UPDATE profiles SET uploads_used = ? WHERE id = ?", uploads, id)
	if err != nil {
		return fmt.Errorf("failed to set uploads used: %w", err)
	}
	return nil
}

// IncrementUploads bumps the upload counter atomically.
func (r *ProfileRepository) IncrementUploads(id string) error {
	_, err := r.db.Exec("UPDATE profiles SET uploads_used = uploads_used + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment uploads: %w", err)
	}
	return nil
}

// IncrementEmails bumps the email counter atomically.
func (r *ProfileRepository) IncrementEmails(id string) error {
	_, err := r.db.Exec("UPDATE profiles SET emails_used = emails_used + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment emails: %w", err)
	}
	return nil
}
