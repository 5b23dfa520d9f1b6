package service

import (
	"fmt"
	"time"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"go.uber.org/zap"
)

// QuotaLimits are the per-window allowances.
type QuotaLimits struct {
	Uploads   int
	Emails    int
	ResetDays int
}

// QuotaService tracks rolling-window usage per account. The upload counter
// self-heals against the invoice table: it can be raised to match reality
// but is never lowered, so deleting invoices does not refund quota.
type QuotaService struct {
	profiles *repository.ProfileRepository
	invoices *repository.InvoiceRepository
	limits   QuotaLimits
	logger   *zap.Logger
}

// NewQuotaService creates a new quota service
func NewQuotaService(
	profiles *repository.ProfileRepository,
	invoices *repository.InvoiceRepository,
	limits QuotaLimits,
	logger *zap.Logger,
) *QuotaService {
	return &QuotaService{
		profiles: profiles,
		invoices: invoices,
		limits:   limits,
		logger:   logger,
	}
}

// GetStatus returns the account's current usage, rolling the window over and
// reconciling the upload counter first. Accounts without a profile row get
// one created with empty usage.
func (q *QuotaService) GetStatus(userID string) (*models.QuotaStatus, error) {
	profile, err := q.currentProfile(userID)
	if err != nil {
		return nil, err
	}

	windowStart := *profile.QuotaStartAt

	// Upward-only reconciliation against actual rows in the window.
	actual, err := q.invoices.CountBySourceSince(userID, models.InvoiceSourceUpload, windowStart)
	if err != nil {
		return nil, err
	}
	if actual > profile.UploadsUsed {
		q.logger.Warn("Upload counter behind invoice table, healing",
			zap.String("user_id", userID),
			zap.Int("counter", profile.UploadsUsed),
			zap.Int("actual", actual))
		if err := q.profiles.SetUploadsUsed(userID, actual); err != nil {
			return nil, err
		}
		profile.UploadsUsed = actual
	}

	resetAt := windowStart.AddDate(0, 0, q.limits.ResetDays)
	return &models.QuotaStatus{
		UploadsUsed:  profile.UploadsUsed,
		UploadsLimit: q.limits.Uploads,
		UploadsLeft:  remaining(q.limits.Uploads, profile.UploadsUsed),
		EmailsUsed:   profile.EmailsUsed,
		EmailsLimit:  q.limits.Emails,
		EmailsLeft:   remaining(q.limits.Emails, profile.EmailsUsed),
		ResetAt:      &resetAt,
	}, nil
}

// RecordUpload consumes one upload slot, or fails with ErrQuotaExceeded.
func (q *QuotaService) RecordUpload(userID string) error {
	status, err := q.GetStatus(userID)
	if err != nil {
		return err
	}
	if status.UploadsLeft <= 0 {
		return fmt.Errorf("%w: %d of %d uploads used", ErrQuotaExceeded, status.UploadsUsed, status.UploadsLimit)
	}
	return q.profiles.IncrementUploads(userID)
}

// RecordEmail consumes one email slot, or fails with ErrQuotaExceeded.
func (q *QuotaService) RecordEmail(userID string) error {
	status, err := q.GetStatus(userID)
	if err != nil {
		return err
	}
	if status.EmailsLeft <= 0 {
		return fmt.Errorf("%w: %d of %d emails used", ErrQuotaExceeded, status.EmailsUsed, status.EmailsLimit)
	}
	return q.profiles.IncrementEmails(userID)
}

// currentProfile loads the profile, creating a missing one and rolling over
// an expired window.
func (q *QuotaService) currentProfile(userID string) (*models.Profile, error) {
	profile, err := q.profiles.GetByID(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if profile == nil {
		profile = &models.Profile{ID: userID, QuotaStartAt: &now}
		if err := q.profiles.Create(profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	if profile.QuotaStartAt == nil || now.Sub(*profile.QuotaStartAt) >= time.Duration(q.limits.ResetDays)*24*time.Hour {
		if err := q.profiles.ResetQuotaWindow(userID, now); err != nil {
			return nil, err
		}
		profile.QuotaStartAt = &now
		profile.UploadsUsed = 0
		profile.EmailsUsed = 0
	}
	return profile, nil
}

func remaining(limit, used int) int {
	left := limit - used
	if left < 0 {
		return 0
	}
	return left
}
