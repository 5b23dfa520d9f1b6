package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*Service, *repository.InvoiceRepository) {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations())

	invoices := repository.NewInvoiceRepository(db, zap.NewNop())
	return NewService(invoices, zap.NewNop()), invoices
}

func TestWorkbook(t *testing.T) {
	svc, invoices := newService(t)

	client := "Acme Inc"
	date := "2024-03-01"
	amount := 1250.00
	require.NoError(t, invoices.Create(&models.Invoice{
		UserID: "user-1",
		Name:   "march.pdf",
		Client: &client,
		Date:   &date,
		Amount: &amount,
		Status: models.InvoiceStatusProcessed,
		Source: models.InvoiceSourceUpload,
	}))

	data, err := svc.Workbook("user-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Invoices", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Name", name)

	name, err = f.GetCellValue("Invoices", "A2")
	require.NoError(t, err)
	assert.Equal(t, "march.pdf", name)

	clientCell, err := f.GetCellValue("Invoices", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", clientCell)

	status, err := f.GetCellValue("Invoices", "E2")
	require.NoError(t, err)
	assert.Equal(t, "processed", status)
}

func TestWorkbook_EmptyAccount(t *testing.T) {
	svc, _ := newService(t)

	data, err := svc.Workbook("user-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	// Header row only.
	assert.Len(t, rows, 1)
}

func TestWorkbook_ScopedToAccount(t *testing.T) {
	svc, invoices := newService(t)

	require.NoError(t, invoices.Create(&models.Invoice{
		UserID: "someone-else",
		Name:   "other.pdf",
		Status: models.InvoiceStatusUploaded,
		Source: models.InvoiceSourceUpload,
	}))

	data, err := svc.Workbook("user-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
