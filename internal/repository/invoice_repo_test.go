package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"go.uber.org/zap"
)

func TestInvoiceRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())

	fileURL := "http://files.local/user-1/invoice.pdf"
	invoice := &models.Invoice{
		UserID:  "user-1",
		Name:    "invoice.pdf",
		Status:  models.InvoiceStatusProcessing,
		Source:  models.InvoiceSourceUpload,
		FileURL: &fileURL,
	}
	require.NoError(t, repo.Create(invoice))
	require.NotEmpty(t, invoice.ID)

	got, err := repo.GetByID(invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, models.InvoiceStatusProcessing, got.Status)
	assert.Nil(t, got.Summary)
	require.NotNil(t, got.FileURL)
	assert.Equal(t, fileURL, *got.FileURL)
}

func TestInvoiceRepository_GetByID_Missing(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())

	got, err := repo.GetByID("no-such-invoice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvoiceRepository_SaveSummary(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())

	invoice := &models.Invoice{
		UserID: "user-1",
		Name:   "invoice.pdf",
		Status: models.InvoiceStatusProcessing,
		Source: models.InvoiceSourceUpload,
	}
	require.NoError(t, repo.Create(invoice))

	summary := &models.Summary{
		Summary:     "Consulting services for March.",
		ClientInfo:  &models.ClientInfo{Company: "Acme Inc"},
		TotalAmount: "$500.00",
		InvoiceDate: "2024-03-01",
	}
	clientID := "client-1"
	client := "Acme Inc"
	date := "2024-03-01"
	amount := 500.00

	require.NoError(t, repo.SaveSummary(invoice.ID, SummaryUpdate{
		Summary:  summary,
		ClientID: &clientID,
		Client:   &client,
		Date:     &date,
		Amount:   &amount,
	}))

	got, err := repo.GetByID(invoice.ID)
	require.NoError(t, err)

	// Status, summary and backfilled fields land in one write.
	assert.Equal(t, models.InvoiceStatusProcessed, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "Consulting services for March.", got.Summary.Summary)
	assert.Equal(t, "Acme Inc", got.Summary.ClientInfo.Company)
	require.NotNil(t, got.Amount)
	assert.InDelta(t, 500.00, *got.Amount, 0.001)
	require.NotNil(t, got.Date)
	assert.Equal(t, "2024-03-01", *got.Date)
}

func TestInvoiceRepository_SaveSummary_NilFieldsKeepValues(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())

	date := "2023-12-31"
	invoice := &models.Invoice{
		UserID: "user-1",
		Name:   "invoice.pdf",
		Date:   &date,
		Status: models.InvoiceStatusProcessing,
		Source: models.InvoiceSourceUpload,
	}
	require.NoError(t, repo.Create(invoice))

	require.NoError(t, repo.SaveSummary(invoice.ID, SummaryUpdate{
		Summary: &models.Summary{Summary: "No amount found."},
	}))

	got, err := repo.GetByID(invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Date)
	assert.Equal(t, "2023-12-31", *got.Date)
	assert.Nil(t, got.Amount)
}

func TestInvoiceRepository_SaveSummary_MissingInvoice(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())

	err := repo.SaveSummary("no-such-invoice", SummaryUpdate{Summary: &models.Summary{}})
	assert.Error(t, err)
}

func TestInvoiceRepository_UpdateStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())

	invoice := &models.Invoice{
		UserID: "user-1",
		Name:   "invoice.pdf",
		Status: models.InvoiceStatusProcessing,
		Source: models.InvoiceSourceUpload,
	}
	require.NoError(t, repo.Create(invoice))
	require.NoError(t, repo.UpdateStatus(invoice.ID, models.InvoiceStatusFailed))

	got, err := repo.GetByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusFailed, got.Status)
	assert.Nil(t, got.Summary)
}

func TestInvoiceRepository_CountBySourceSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())

	old := &models.Invoice{
		UserID:    "user-1",
		Name:      "old.pdf",
		Status:    models.InvoiceStatusProcessed,
		Source:    models.InvoiceSourceUpload,
		CreatedAt: time.Now().UTC().Add(-40 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(old))

	recent := &models.Invoice{
		UserID: "user-1",
		Name:   "recent.pdf",
		Status: models.InvoiceStatusProcessing,
		Source: models.InvoiceSourceUpload,
	}
	require.NoError(t, repo.Create(recent))

	emailInvoice := &models.Invoice{
		UserID: "user-1",
		Name:   "Email Invoice",
		Status: models.InvoiceStatusProcessed,
		Source: models.InvoiceSourceEmail,
	}
	require.NoError(t, repo.Create(emailInvoice))

	count, err := repo.CountBySourceSince("user-1", models.InvoiceSourceUpload, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
