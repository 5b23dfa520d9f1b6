package ingest

import "context"

// ManualTrigger is a signed-in user asking for one of their own invoices
// to be summarized. The invoice already exists; ownership is enforced.
type ManualTrigger struct {
	UserID    string
	InvoiceID string
}

func (t *ManualTrigger) ResolveInvoice(_ context.Context) (string, string, error) {
	return t.InvoiceID, t.UserID, nil
}

func (t *ManualTrigger) SourceText() string { return "" }
