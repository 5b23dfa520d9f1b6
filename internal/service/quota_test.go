package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"go.uber.org/zap"
)

func newQuotaService(t *testing.T) (*QuotaService, *repository.ProfileRepository, *repository.InvoiceRepository) {
	t.Helper()

	db := newTestDB(t)
	profiles := repository.NewProfileRepository(db, zap.NewNop())
	invoices := repository.NewInvoiceRepository(db, zap.NewNop())
	svc := NewQuotaService(profiles, invoices, QuotaLimits{Uploads: 3, Emails: 3, ResetDays: 30}, zap.NewNop())
	return svc, profiles, invoices
}

func TestQuota_FreshAccount(t *testing.T) {
	svc, _, _ := newQuotaService(t)

	status, err := svc.GetStatus("user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.UploadsUsed)
	assert.Equal(t, 3, status.UploadsLeft)
	assert.Equal(t, 0, status.EmailsUsed)
	assert.Equal(t, 3, status.EmailsLeft)
	require.NotNil(t, status.ResetAt)
	assert.True(t, status.ResetAt.After(time.Now()))
}

func TestQuota_RecordUploadUntilExhausted(t *testing.T) {
	svc, _, _ := newQuotaService(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordUpload("user-1"))
	}
	err := svc.RecordUpload("user-1")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	status, err := svc.GetStatus("user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, status.UploadsUsed)
	assert.Equal(t, 0, status.UploadsLeft)
	// Email quota is independent of upload quota.
	require.NoError(t, svc.RecordEmail("user-1"))
}

func TestQuota_WindowRollover(t *testing.T) {
	svc, profiles, _ := newQuotaService(t)

	old := time.Now().UTC().AddDate(0, 0, -31)
	require.NoError(t, profiles.Create(&models.Profile{
		ID:           "user-1",
		Email:        "owner@example.com",
		UploadsUsed:  3,
		EmailsUsed:   3,
		QuotaStartAt: &old,
	}))

	status, err := svc.GetStatus("user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.UploadsUsed)
	assert.Equal(t, 0, status.EmailsUsed)
	assert.Equal(t, 3, status.UploadsLeft)
}

func TestQuota_SelfHealsUploadCounter(t *testing.T) {
	svc, profiles, invoices := newQuotaService(t)

	now := time.Now().UTC()
	require.NoError(t, profiles.Create(&models.Profile{
		ID:           "user-1",
		Email:        "owner@example.com",
		UploadsUsed:  0,
		QuotaStartAt: &now,
	}))

	// Two uploads exist in the window that the counter missed.
	for i := 0; i < 2; i++ {
		require.NoError(t, invoices.Create(&models.Invoice{
			UserID: "user-1",
			Name:   "invoice.pdf",
			Status: models.InvoiceStatusUploaded,
			Source: models.InvoiceSourceUpload,
		}))
	}

	status, err := svc.GetStatus("user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, status.UploadsUsed)
	assert.Equal(t, 1, status.UploadsLeft)
}

func TestQuota_CounterNeverLowered(t *testing.T) {
	svc, profiles, _ := newQuotaService(t)

	now := time.Now().UTC()
	// Counter says 2 but no invoice rows exist, as after deletions.
	require.NoError(t, profiles.Create(&models.Profile{
		ID:           "user-1",
		Email:        "owner@example.com",
		UploadsUsed:  2,
		QuotaStartAt: &now,
	}))

	status, err := svc.GetStatus("user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, status.UploadsUsed)
	assert.Equal(t, 1, status.UploadsLeft)
}
