package ingest

import (
	"context"
	"strings"

	"github.com/subhanali/invoice-summarizer/internal/service"
	"go.uber.org/zap"
)

// Outcome is the result of one orchestrated pipeline run.
type Outcome struct {
	InvoiceID string
	Result    *service.SummarizeResult
	Message   string
}

// Orchestrator drives the shared pipeline for every trigger kind.
type Orchestrator struct {
	invoices   *service.InvoiceService
	reconciler *service.Reconciler
	logger     *zap.Logger
}

// NewOrchestrator creates a new pipeline orchestrator
func NewOrchestrator(invoices *service.InvoiceService, reconciler *service.Reconciler, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		invoices:   invoices,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Run resolves the trigger's invoice, summarizes it and, when a fresh
// summary linked a client, records the invoice on the client's aggregates.
// Aggregates are only bumped on first summarization so repeat triggers
// cannot double-count.
func (o *Orchestrator) Run(ctx context.Context, trigger Trigger) (*Outcome, error) {
	invoiceID, userID, err := trigger.ResolveInvoice(ctx)
	if err != nil {
		return nil, err
	}

	result, err := o.invoices.Summarize(ctx, userID, invoiceID, trigger.SourceText())
	if err != nil {
		return nil, err
	}

	if !result.AlreadyExisted && result.ClientID != "" {
		if err := o.reconciler.BumpAggregates(result.ClientID, result.Amount, result.Date); err != nil {
			// The summary is already persisted; a stale aggregate is
			// recoverable and must not fail the run.
			o.logger.Error("Failed to update client aggregates",
				zap.String("invoice_id", invoiceID),
				zap.String("client_id", result.ClientID),
				zap.Error(err))
		}
	}

	return &Outcome{
		InvoiceID: invoiceID,
		Result:    result,
		Message:   buildMessage(result),
	}, nil
}

func buildMessage(result *service.SummarizeResult) string {
	if result.AlreadyExisted {
		return "Invoice already summarized"
	}
	if len(result.Updates) > 0 {
		return "Invoice summarized successfully (updated: " + strings.Join(result.Updates, ", ") + ")"
	}
	return "Invoice summarized successfully"
}
