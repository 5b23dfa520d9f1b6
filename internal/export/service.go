// Package export renders an account's invoice ledger as an XLSX workbook.
package export

import (
	"fmt"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Invoices"

var headers = []string{"Name", "Client", "Date", "Amount", "Status", "Source", "Created At"}

// Service builds invoice exports.
type Service struct {
	invoices *repository.InvoiceRepository
	logger   *zap.Logger
}

// NewService creates a new export service
func NewService(invoices *repository.InvoiceRepository, logger *zap.Logger) *Service {
	return &Service{
		invoices: invoices,
		logger:   logger,
	}
}

// Workbook renders all of the account's invoices, newest first, as XLSX.
func (s *Service) Workbook(userID string) ([]byte, error) {
	invoices, err := s.invoices.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to prepare worksheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, invoice := range invoices {
		if err := s.writeRow(f, row+2, invoice); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "G", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Invoice export generated",
		zap.String("user_id", userID),
		zap.Int("rows", len(invoices)))
	return buf.Bytes(), nil
}

func (s *Service) writeRow(f *excelize.File, row int, invoice *models.Invoice) error {
	values := []interface{}{
		invoice.Name,
		deref(invoice.Client),
		deref(invoice.Date),
		nil,
		invoice.Status,
		invoice.Source,
		invoice.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if invoice.Amount != nil {
		values[3] = *invoice.Amount
	}

	for col, value := range values {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
