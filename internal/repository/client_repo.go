package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"go.uber.org/zap"
)

// ClientRepository handles client database operations
type ClientRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *database.DB, logger *zap.Logger) *ClientRepository {
	return &ClientRepository{
		db:     db,
		logger: logger,
	}
}

// CompanyKey normalizes a company name into the dedup key: trimmed and
// casefolded, so "Acme Inc" and " acme inc " resolve to the same client.
func CompanyKey(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}

// Upsert finds or creates the client for (userID, company). The unique index
// on (user_id, company_key) makes concurrent first sightings converge on one
// row; existing rows are never overwritten here.
func (r *ClientRepository) Upsert(userID, name, email, company string) (string, error) {
	key := CompanyKey(company)
	if key == "" {
		return "", fmt.Errorf("company is required for client upsert")
	}

	var emailVal interface{}
	if email != "" {
		emailVal = email
	}

	insert := `
		INSERT INTO clients (
			id, user_id, name, email, company, company_key, status,
			total_invoices, total_amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?)
		ON CONFLICT(user_id, company_key) DO NOTHING
	`
	if _, err := r.db.Exec(insert,
		uuid.NewString(), userID, name, emailVal, company, key,
		models.ClientStatusActive, time.Now().UTC(),
	); err != nil {
		r.logger.Error("Failed to upsert client",
			zap.String("user_id", userID),
			zap.String("company", company),
			zap.Error(err))
		return "", fmt.Errorf("failed to upsert client: %w", err)
	}

	var id string
	err := r.db.QueryRow(
		"SELECT id FROM clients WHERE user_id = ? AND company_key = ?",
		userID, key,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to resolve client id: %w", err)
	}
	return id, nil
}

// IncrementAggregates bumps the derived counters in one atomic statement.
// Counters are only ever incremented by the pipeline.
func (r *ClientRepository) IncrementAggregates(clientID string, amount float64, lastInvoice string) error {
	query := `
		UPDATE clients SET
			total_invoices = total_invoices + 1,
			total_amount = total_amount + ?,
			last_invoice = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query, amount, lastInvoice, clientID)
	if err != nil {
		r.logger.Error("Failed to increment client aggregates",
			zap.String("client_id", clientID),
			zap.Error(err))
		return fmt.Errorf("failed to increment aggregates: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check aggregate update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("client %s not found for aggregate update", clientID)
	}
	return nil
}

// GetByID retrieves a client by id. Returns (nil, nil) when absent.
func (r *ClientRepository) GetByID(id string) (*models.Client, error) {
	query := `
		SELECT id, user_id, name, email, company, company_key, status,
			total_invoices, total_amount, last_invoice, created_at
		FROM clients
		WHERE id = ?
	`

	var client models.Client
	var email, lastInvoice sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&email,
		&client.Company,
		&client.CompanyKey,
		&client.Status,
		&client.TotalInvoices,
		&client.TotalAmount,
		&lastInvoice,
		&client.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get client", zap.String("client_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if email.Valid {
		client.Email = &email.String
	}
	if lastInvoice.Valid {
		client.LastInvoice = &lastInvoice.String
	}
	return &client, nil
}

// CountByUser counts an account's clients. Used by tests and dashboards.
func (r *ClientRepository) CountByUser(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM clients WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return count, nil
}
