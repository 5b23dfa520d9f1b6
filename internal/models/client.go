package models

import "time"

// Client statuses
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client represents a billing counterparty owned by one account.
// CompanyKey is the normalized dedup key: at most one row exists per
// (UserID, CompanyKey), enforced by a unique index.
type Client struct {
	ID            string
	UserID        string
	Name          string
	Email         *string
	Company       string
	CompanyKey    string
	Status        string
	TotalInvoices int
	TotalAmount   float64
	LastInvoice   *string // YYYY-MM-DD
	CreatedAt     time.Time
}
