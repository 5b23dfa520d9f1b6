package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"go.uber.org/zap"
)

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *database.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new invoice row. A missing ID is generated.
func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	summaryJSON, err := marshalSummary(invoice.Summary)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO invoices (
			id, user_id, name, client_id, client, date, amount,
			status, source, file_url, summary, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		invoice.ID,
		invoice.UserID,
		invoice.Name,
		invoice.ClientID,
		invoice.Client,
		invoice.Date,
		invoice.Amount,
		invoice.Status,
		invoice.Source,
		invoice.FileURL,
		summaryJSON,
		invoice.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.String("invoice_id", invoice.ID), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

const invoiceColumns = `id, user_id, name, client_id, client, date, amount,
	status, source, file_url, summary, created_at`

// GetByID retrieves an invoice by id. Returns (nil, nil) when absent.
func (r *InvoiceRepository) GetByID(id string) (*models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = ?", invoiceColumns)
	invoice, err := r.scanInvoice(r.db.QueryRow(query, id))
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.String("invoice_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// ListByUser returns all invoices owned by an account, newest first.
func (r *InvoiceRepository) ListByUser(userID string) ([]*models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE user_id = ? ORDER BY created_at DESC", invoiceColumns)
	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

// SummaryUpdate is the single atomic write that moves an invoice to
// processed: summary, client linkage and backfilled fields land together.
type SummaryUpdate struct {
	Summary  *models.Summary
	Name     *string
	ClientID *string
	Client   *string
	Date     *string
	Amount   *float64
}

// SaveSummary persists the summary and derived fields in one update, setting
// status to processed. Fields left nil keep their current value.
func (r *InvoiceRepository) SaveSummary(id string, update SummaryUpdate) error {
	summaryJSON, err := marshalSummary(update.Summary)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices SET
			summary = ?,
			status = ?,
			name = COALESCE(?, name),
			client_id = COALESCE(?, client_id),
			client = COALESCE(?, client),
			date = COALESCE(?, date),
			amount = COALESCE(?, amount)
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		summaryJSON,
		models.InvoiceStatusProcessed,
		update.Name,
		update.ClientID,
		update.Client,
		update.Date,
		update.Amount,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to save invoice summary", zap.String("invoice_id", id), zap.Error(err))
		return fmt.Errorf("failed to save summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %s not found for summary update", id)
	}
	return nil
}

// UpdateStatus transitions an invoice's status.
func (r *InvoiceRepository) UpdateStatus(id, status string) error {
	_, err := r.db.Exec("UPDATE invoices SET status = ? WHERE id = ?", status, id)
	if err != nil {
		r.logger.Error("Failed to update invoice status",
			zap.String("invoice_id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// CountBySourceSince counts an account's invoices of a source created at or
// after the given time. Used by the quota collaborator to self-heal counters.
func (r *InvoiceRepository) CountBySourceSince(userID, source string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM invoices WHERE user_id = ? AND source = ? AND created_at >= ?",
		userID, source, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *InvoiceRepository) scanInvoice(row rowScanner) (*models.Invoice, error) {
	var invoice models.Invoice
	var clientID, client, date, fileURL, summaryJSON sql.NullString
	var amount sql.NullFloat64

	err := row.Scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.Name,
		&clientID,
		&client,
		&date,
		&amount,
		&invoice.Status,
		&invoice.Source,
		&fileURL,
		&summaryJSON,
		&invoice.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		invoice.ClientID = &clientID.String
	}
	if client.Valid {
		invoice.Client = &client.String
	}
	if date.Valid {
		invoice.Date = &date.String
	}
	if fileURL.Valid {
		invoice.FileURL = &fileURL.String
	}
	if amount.Valid {
		invoice.Amount = &amount.Float64
	}
	if summaryJSON.Valid && summaryJSON.String != "" {
		var summary models.Summary
		if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err != nil {
			return nil, fmt.Errorf("failed to decode stored summary: %w", err)
		}
		invoice.Summary = &summary
	}

	return &invoice, nil
}

func marshalSummary(summary *models.Summary) (interface{}, error) {
	if summary == nil {
		return nil, nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	return string(data), nil
}
