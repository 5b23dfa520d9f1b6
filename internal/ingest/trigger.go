// Package ingest unifies the three ways a summarization run starts: a
// manual request, a generic automation webhook and an inbound email
// webhook. Each entry point is a Trigger; one orchestrator runs the
// shared pipeline behind all of them.
package ingest

import "context"

// Trigger resolves where the source document lives for one pipeline run.
type Trigger interface {
	// ResolveInvoice returns the invoice to summarize, creating it first if
	// this trigger brings a new document into the system. The returned
	// userID scopes ownership checks; empty means service-role access.
	ResolveInvoice(ctx context.Context) (invoiceID, userID string, err error)

	// SourceText returns pre-extracted text carried by the trigger, or ""
	// when the pipeline should read the invoice's stored file.
	SourceText() string
}
