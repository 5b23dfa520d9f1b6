package service

import (
	"context"
	"fmt"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"github.com/subhanali/invoice-summarizer/internal/storage"
	"go.uber.org/zap"
)

// TextExtractor turns raw file bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// FieldExtractor extracts a structured summary from invoice text.
type FieldExtractor interface {
	ExtractSummary(ctx context.Context, sourceText string, hints *models.Invoice) (*models.Summary, error)
}

// SummarizeResult is the outcome of one summarization run.
type SummarizeResult struct {
	Summary *models.Summary
	// AlreadyExisted is true when the invoice carried a summary before the
	// call and the stored one was returned without any extraction work.
	AlreadyExisted bool
	// Updates lists the invoice fields the summary backfilled, in
	// "Field: value" form for response messages.
	Updates  []string
	ClientID string
	// Amount and Date are the invoice's persisted values after the run:
	// the summary's when it parsed one, otherwise whatever the invoice
	// already carried (a webhook may describe both up front).
	Amount *float64
	Date   *string
}

// InvoiceService runs the summarization pipeline for stored invoices.
type InvoiceService struct {
	invoices   *repository.InvoiceRepository
	reconciler *Reconciler
	store      storage.Store
	text       TextExtractor
	extractor  FieldExtractor
	logger     *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoices *repository.InvoiceRepository,
	reconciler *Reconciler,
	store storage.Store,
	text TextExtractor,
	extractor FieldExtractor,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:   invoices,
		reconciler: reconciler,
		store:      store,
		text:       text,
		extractor:  extractor,
		logger:     logger,
	}
}

// IngestNew persists a freshly received invoice record.
func (s *InvoiceService) IngestNew(invoice *models.Invoice) error {
	return s.invoices.Create(invoice)
}

// Get returns an invoice owned by the account.
func (s *InvoiceService) Get(userID, invoiceID string) (*models.Invoice, error) {
	return s.load(userID, invoiceID)
}

// List returns the account's invoices, newest first.
func (s *InvoiceService) List(userID string) ([]*models.Invoice, error) {
	return s.invoices.ListByUser(userID)
}

// Summarize runs the extraction pipeline for one invoice. An empty userID is
// service-role access and skips the ownership check; webhooks run that way.
//
// Repeat calls are idempotent: an invoice that already has a summary returns
// it without touching the model. Otherwise the source text is resolved (the
// provided text, or the stored file downloaded and extracted), fields are
// extracted, the client is reconciled and everything lands in one write that
// marks the invoice processed. Any failure past the processing transition
// marks the invoice failed.
func (s *InvoiceService) Summarize(ctx context.Context, userID, invoiceID, sourceText string) (*SummarizeResult, error) {
	invoice, err := s.load(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.HasSummary() {
		s.logger.Info("Invoice already summarized",
			zap.String("invoice_id", invoice.ID))
		result := &SummarizeResult{Summary: invoice.Summary, AlreadyExisted: true}
		if invoice.ClientID != nil {
			result.ClientID = *invoice.ClientID
		}
		return result, nil
	}

	if err := s.invoices.UpdateStatus(invoice.ID, models.InvoiceStatusProcessing); err != nil {
		return nil, err
	}

	result, err := s.summarize(ctx, invoice, sourceText)
	if err != nil {
		if statusErr := s.invoices.UpdateStatus(invoice.ID, models.InvoiceStatusFailed); statusErr != nil {
			s.logger.Error("Failed to mark invoice failed",
				zap.String("invoice_id", invoice.ID),
				zap.Error(statusErr))
		}
		return nil, err
	}
	return result, nil
}

func (s *InvoiceService) summarize(ctx context.Context, invoice *models.Invoice, sourceText string) (*SummarizeResult, error) {
	text, err := s.resolveSourceText(ctx, invoice, sourceText)
	if err != nil {
		return nil, err
	}

	summary, err := s.extractor.ExtractSummary(ctx, text, invoice)
	if err != nil {
		return nil, err
	}

	clientID, clientDisplay, err := s.reconciler.Reconcile(invoice.UserID, summary.ClientInfo)
	if err != nil {
		return nil, err
	}

	update := repository.SummaryUpdate{Summary: summary}
	result := &SummarizeResult{Summary: summary, ClientID: clientID}

	if clientID != "" {
		update.ClientID = &clientID
		update.Client = &clientDisplay
		if invoice.ClientID == nil {
			result.Updates = append(result.Updates, "Client: "+clientDisplay)
		}
	}
	if summary.InvoiceDate != "" {
		date := summary.InvoiceDate
		update.Date = &date
		if invoice.Date == nil {
			result.Updates = append(result.Updates, "Date: "+date)
		}
	}
	if amount := NormalizeAmount(summary.TotalAmount); amount != nil {
		update.Amount = amount
		if invoice.Amount == nil {
			result.Updates = append(result.Updates, fmt.Sprintf("Amount: %.2f", *amount))
		}
	}
	if name := derivedName(invoice, summary); name != "" {
		update.Name = &name
	}

	result.Amount = update.Amount
	if result.Amount == nil {
		result.Amount = invoice.Amount
	}
	result.Date = update.Date
	if result.Date == nil {
		result.Date = invoice.Date
	}

	if err := s.invoices.SaveSummary(invoice.ID, update); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice summarized",
		zap.String("invoice_id", invoice.ID),
		zap.String("client_id", clientID),
		zap.Strings("updates", result.Updates))
	return result, nil
}

// resolveSourceText prefers caller-provided text; otherwise the stored file
// is downloaded and its text extracted. A missing or undownloadable file is
// ErrSourceUnavailable; a file that yields no text keeps the extractor's own
// error identity, since retrying an unparseable document cannot help.
func (s *InvoiceService) resolveSourceText(ctx context.Context, invoice *models.Invoice, sourceText string) (string, error) {
	if sourceText != "" {
		return sourceText, nil
	}
	if invoice.FileURL == nil || *invoice.FileURL == "" {
		return "", fmt.Errorf("%w: invoice %s has no file and no text was provided", ErrSourceUnavailable, invoice.ID)
	}

	data, err := s.store.Download(ctx, *invoice.FileURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	text, err := s.text.Extract(data)
	if err != nil {
		return "", fmt.Errorf("text extraction failed for invoice %s: %w", invoice.ID, err)
	}
	return text, nil
}

// derivedName names email-born invoices after their extracted invoice number;
// they arrive with a placeholder name before extraction runs.
func derivedName(invoice *models.Invoice, summary *models.Summary) string {
	if invoice.Source != models.InvoiceSourceEmail {
		return ""
	}
	if summary.KeyDetails == nil || summary.KeyDetails.InvoiceNumber == "" {
		return ""
	}
	return "Email Invoice - " + summary.KeyDetails.InvoiceNumber
}

func (s *InvoiceService) load(userID, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}
	if userID != "" && invoice.UserID != userID {
		return nil, ErrInvoiceNotFound
	}
	return invoice, nil
}
