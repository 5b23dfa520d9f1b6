// Package service implements the invoice pipeline: summarization, client
// reconciliation, quota accounting and summary email dispatch.
package service

import "errors"

var (
	// ErrInvoiceNotFound is returned when an invoice does not exist or is
	// owned by a different account. The two cases are indistinguishable to
	// callers on purpose.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrSourceUnavailable means the invoice has no usable source: no stored
	// file, no provided text, or a file that yields no extractable text.
	ErrSourceUnavailable = errors.New("invoice source unavailable")

	// ErrSummaryRequired means a summary email was requested for an invoice
	// that has not been summarized yet.
	ErrSummaryRequired = errors.New("invoice has no summary")

	// ErrQuotaExceeded means the account used up its rolling-window allowance.
	ErrQuotaExceeded = errors.New("quota exceeded")
)
