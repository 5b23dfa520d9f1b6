package ingest

import (
	"context"
	"fmt"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
)

// emailInvoiceName is the placeholder name for invoices born from email;
// the pipeline renames them once an invoice number is extracted.
const emailInvoiceName = "Email Invoice"

// EmailTrigger is an inbound invoice email relayed by the mail webhook.
// Every delivery creates a new invoice: inbound email carries no stable
// idempotency key, so replays are accepted as new records rather than
// risking the silent loss of a distinct invoice.
type EmailTrigger struct {
	Invoices *repository.InvoiceRepository
	History  *repository.EmailHistoryRepository

	UserID  string
	Sender  string
	Subject string
	Body    string
}

func (t *EmailTrigger) ResolveInvoice(_ context.Context) (string, string, error) {
	invoice := &models.Invoice{
		UserID: t.UserID,
		Name:   emailInvoiceName,
		Status: models.InvoiceStatusProcessing,
		Source: models.InvoiceSourceEmail,
	}
	if err := t.Invoices.Create(invoice); err != nil {
		return "", "", err
	}

	// The inbound message itself is part of the email audit trail.
	entry := &models.EmailHistory{
		UserID:      t.UserID,
		InvoiceID:   &invoice.ID,
		Recipient:   t.Sender,
		Subject:     t.Subject,
		InvoiceName: &invoice.Name,
		Status:      models.EmailStatusSystem,
	}
	if err := t.History.Append(entry); err != nil {
		return "", "", err
	}

	return invoice.ID, t.UserID, nil
}

func (t *EmailTrigger) SourceText() string {
	return fmt.Sprintf("Email Subject: %s\nEmail Body: %s", t.Subject, t.Body)
}
