package models

import "time"

// Email history statuses
const (
	EmailStatusDelivered = "delivered"
	EmailStatusFailed    = "failed"
	EmailStatusPending   = "pending"
	EmailStatusSystem    = "system"
)

// EmailHistory is one append-only audit record of an email attempt.
// Rows are created exactly once per send attempt and never mutated.
type EmailHistory struct {
	ID          string
	UserID      string
	InvoiceID   *string
	Recipient   string
	Subject     string
	Client      *string
	InvoiceName *string
	Status      string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM:SS
	CreatedAt   time.Time
}
