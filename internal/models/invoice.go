package models

import "time"

// Invoice statuses. Processed and failed are terminal for the pipeline;
// a fresh trigger may re-enter from failed.
const (
	InvoiceStatusUploaded   = "uploaded"
	InvoiceStatusProcessing = "processing"
	InvoiceStatusProcessed  = "processed"
	InvoiceStatusFailed     = "failed"
)

// Invoice sources
const (
	InvoiceSourceUpload = "upload"
	InvoiceSourceEmail  = "email"
)

// Invoice represents one document or email-derived billing record.
// ClientID is a weak reference to a Client; Client holds the denormalized
// display name. A nil FileURL means the invoice came in by email with no
// attachment.
type Invoice struct {
	ID        string
	UserID    string
	Name      string
	ClientID  *string
	Client    *string
	Date      *string // YYYY-MM-DD
	Amount    *float64
	Status    string
	Source    string
	FileURL   *string
	Summary   *Summary
	CreatedAt time.Time
}

// HasSummary reports whether the invoice already carries a stored summary.
func (i *Invoice) HasSummary() bool {
	return i.Summary != nil
}
