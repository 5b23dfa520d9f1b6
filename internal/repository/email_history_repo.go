package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"go.uber.org/zap"
)

// EmailHistoryRepository handles the append-only email audit log
type EmailHistoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEmailHistoryRepository creates a new email history repository
func NewEmailHistoryRepository(db *database.DB, logger *zap.Logger) *EmailHistoryRepository {
	return &EmailHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append records one email attempt. Rows are never updated afterwards.
func (r *EmailHistoryRepository) Append(entry *models.EmailHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.Date == "" {
		entry.Date = now.Format("2006-01-02")
	}
	if entry.Time == "" {
		entry.Time = now.Format("15:04:05")
	}

	query := `
		INSERT INTO email_history (
			id, user_id, invoice_id, recipient, subject, client,
			invoice_name, status, date, time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		entry.ID,
		entry.UserID,
		entry.InvoiceID,
		entry.Recipient,
		entry.Subject,
		entry.Client,
		entry.InvoiceName,
		entry.Status,
		entry.Date,
		entry.Time,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to append email history", zap.Error(err))
		return fmt.Errorf("failed to append email history: %w", err)
	}
	return nil
}

// ListByUser returns an account's email history, newest first.
func (r *EmailHistoryRepository) ListByUser(userID string) ([]*models.EmailHistory, error) {
	query := `
		SELECT id, user_id, invoice_id, recipient, subject, client,
			invoice_name, status, date, time, created_at
		FROM email_history
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.logger.Error("Failed to list email history", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list email history: %w", err)
	}
	defer rows.Close()

	var entries []*models.EmailHistory
	for rows.Next() {
		var entry models.EmailHistory
		var invoiceID, client, invoiceName sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&invoiceID,
			&entry.Recipient,
			&entry.Subject,
			&client,
			&invoiceName,
			&entry.Status,
			&entry.Date,
			&entry.Time,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email history: %w", err)
		}

		if invoiceID.Valid {
			entry.InvoiceID = &invoiceID.String
		}
		if client.Valid {
			entry.Client = &client.String
		}
		if invoiceName.Valid {
			entry.InvoiceName = &invoiceName.String
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
