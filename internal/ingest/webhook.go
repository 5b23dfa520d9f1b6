package ingest

import (
	"context"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"github.com/subhanali/invoice-summarizer/internal/service"
)

// WebhookTrigger is an automation system reporting an invoice ready for
// processing. It runs with service-role access: the invoice's own account
// scopes the work, not a bearer token.
//
// The payload fully describes the invoice, so an unknown id is created
// rather than rejected — automation may reference documents this service
// never saw uploaded. Replayed deliveries converge: the trigger finds the
// existing row and the pipeline's own summary check returns the stored
// result without another extraction.
type WebhookTrigger struct {
	Invoices *repository.InvoiceRepository

	InvoiceID string
	// Descriptive fields used only when the invoice does not exist yet.
	UserID      string
	InvoiceName string
	Client      *string
	Date        *string
	Amount      *float64
	FileURL     string
	Source      string

	// Text optionally carries source text supplied in the payload.
	Text string
}

func (t *WebhookTrigger) ResolveInvoice(_ context.Context) (string, string, error) {
	invoice, err := t.Invoices.GetByID(t.InvoiceID)
	if err != nil {
		return "", "", err
	}
	if invoice != nil {
		return invoice.ID, "", nil
	}

	// Creating needs an owner; a bare unknown id is a lookup failure.
	if t.UserID == "" {
		return "", "", service.ErrInvoiceNotFound
	}

	source := t.Source
	if source == "" {
		source = models.InvoiceSourceUpload
	}
	name := t.InvoiceName
	if name == "" {
		name = "Webhook Invoice"
	}

	created := &models.Invoice{
		ID:     t.InvoiceID,
		UserID: t.UserID,
		Name:   name,
		Client: t.Client,
		Date:   t.Date,
		Amount: t.Amount,
		Status: models.InvoiceStatusUploaded,
		Source: source,
	}
	if t.FileURL != "" {
		created.FileURL = &t.FileURL
	}
	if err := t.Invoices.Create(created); err != nil {
		return "", "", err
	}
	return created.ID, "", nil
}

func (t *WebhookTrigger) SourceText() string { return t.Text }
