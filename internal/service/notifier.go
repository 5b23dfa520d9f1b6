package service

import (
	"fmt"

	"github.com/subhanali/invoice-summarizer/internal/email"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"go.uber.org/zap"
)

// DeliveryResult reports one email attempt. Delivery failure is an outcome,
// not an error: callers always get a result once preconditions pass.
type DeliveryResult struct {
	Success   bool   `json:"success"`
	Recipient string `json:"recipient"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Notifier sends summary emails and records every attempt in the
// append-only email history.
type Notifier struct {
	invoices  *repository.InvoiceRepository
	profiles  *repository.ProfileRepository
	history   *repository.EmailHistoryRepository
	transport email.Transport
	logger    *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(
	invoices *repository.InvoiceRepository,
	profiles *repository.ProfileRepository,
	history *repository.EmailHistoryRepository,
	transport email.Transport,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		invoices:  invoices,
		profiles:  profiles,
		history:   history,
		transport: transport,
		logger:    logger,
	}
}

// Send emails the invoice's summary. The recipient defaults to the account's
// profile email unless overridden. Precondition failures (missing invoice,
// no summary, no resolvable recipient) return an error and leave no history;
// past that point exactly one history row is appended per attempt.
func (n *Notifier) Send(userID, invoiceID, recipientOverride string) (*DeliveryResult, error) {
	invoice, err := n.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil || invoice.UserID != userID {
		return nil, ErrInvoiceNotFound
	}
	if !invoice.HasSummary() {
		return nil, ErrSummaryRequired
	}

	recipient := recipientOverride
	if recipient == "" {
		profile, err := n.profiles.GetByID(userID)
		if err != nil {
			return nil, err
		}
		if profile == nil || profile.Email == "" {
			return nil, fmt.Errorf("no recipient: account %s has no profile email", userID)
		}
		recipient = profile.Email
	}

	subject := "Invoice Summary: " + invoice.Name
	result := &DeliveryResult{Recipient: recipient}

	body, err := email.RenderSummary(invoice.Name, invoice.Summary)
	if err == nil {
		result.MessageID, err = n.transport.Send(recipient, subject, body)
	}

	status := models.EmailStatusDelivered
	if err != nil {
		status = models.EmailStatusFailed
		result.Error = err.Error()
		n.logger.Warn("Summary email failed",
			zap.String("invoice_id", invoice.ID),
			zap.String("recipient", recipient),
			zap.Error(err))
	} else {
		result.Success = true
	}

	entry := &models.EmailHistory{
		UserID:      userID,
		InvoiceID:   &invoice.ID,
		Recipient:   recipient,
		Subject:     subject,
		Client:      invoice.Client,
		InvoiceName: &invoice.Name,
		Status:      status,
	}
	if histErr := n.history.Append(entry); histErr != nil {
		// The email already went out (or failed); losing the audit row is
		// not a reason to report the attempt itself as broken.
		n.logger.Error("Failed to record email history",
			zap.String("invoice_id", invoice.ID),
			zap.Error(histErr))
	}

	return result, nil
}
