package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/subhanali/invoice-summarizer/internal/ingest"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/pdftext"
	"github.com/subhanali/invoice-summarizer/internal/service"
	"go.uber.org/zap"
)

type handlers struct {
	deps Deps
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type summarizeRequest struct {
	InvoiceID string `json:"invoiceId" binding:"required"`
	// Action "email" additionally dispatches the summary email; its failure
	// never fails the summarization response.
	Action string `json:"action"`
}

// summarize runs the pipeline for one of the caller's invoices.
func (h *handlers) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoiceId is required"})
		return
	}

	identity := callerIdentity(c)
	outcome, err := h.deps.Orchestrator.Run(c.Request.Context(), &ingest.ManualTrigger{
		UserID:    identity.UserID,
		InvoiceID: req.InvoiceID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{
		"message":        outcome.Message,
		"invoiceId":      outcome.InvoiceID,
		"summary":        outcome.Result.Summary,
		"alreadyExisted": outcome.Result.AlreadyExisted,
	}

	if req.Action == "email" {
		if result, emailErr := h.sendWithQuota(identity.UserID, outcome.InvoiceID, ""); emailErr != nil {
			resp["emailError"] = emailErr.Error()
		} else {
			resp["email"] = result
			if !result.Success {
				resp["emailError"] = result.Error
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// sendWithQuota dispatches a summary email, consuming an email slot only for
// requests that can actually attempt a send: a missing invoice or one without
// a summary is rejected before the quota counter moves.
func (h *handlers) sendWithQuota(userID, invoiceID, recipient string) (*service.DeliveryResult, error) {
	invoice, err := h.deps.Invoices.Get(userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.HasSummary() {
		return nil, service.ErrSummaryRequired
	}
	if err := h.deps.Quota.RecordEmail(userID); err != nil {
		return nil, err
	}
	return h.deps.Notifier.Send(userID, invoiceID, recipient)
}

// getSummary returns the stored summary for one invoice.
func (h *handlers) getSummary(c *gin.Context) {
	invoiceID := c.Query("invoiceId")
	if invoiceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoiceId is required"})
		return
	}

	identity := callerIdentity(c)
	invoice, err := h.deps.Invoices.Get(identity.UserID, invoiceID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !invoice.HasSummary() {
		h.respondError(c, service.ErrSummaryRequired)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoiceId": invoice.ID,
		"status":    invoice.Status,
		"summary":   invoice.Summary,
	})
}

type emailRequest struct {
	InvoiceID string `json:"invoiceId" binding:"required"`
	Recipient string `json:"recipientEmail"`
}

// sendSummaryEmail dispatches the summary email for an invoice. Delivery
// failure is reported in the body, not as an HTTP error.
func (h *handlers) sendSummaryEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoiceId is required"})
		return
	}

	identity := callerIdentity(c)
	result, err := h.sendWithQuota(identity.UserID, req.InvoiceID, req.Recipient)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type uploadedFile struct {
	Name           string `json:"name"`
	InvoiceID      string `json:"invoiceId,omitempty"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	SummarizeError string `json:"summarizeError,omitempty"`
}

// uploadInvoices accepts a multipart batch of PDF files. Each file consumes
// one upload slot; files past the quota are rejected individually.
func (h *handlers) uploadInvoices(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	identity := callerIdentity(c)
	results := make([]uploadedFile, 0, len(files))
	accepted := 0

	for _, header := range files {
		entry := uploadedFile{Name: header.Filename}

		if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			entry.Error = "only PDF files are accepted"
			results = append(results, entry)
			continue
		}

		if err := h.deps.Quota.RecordUpload(identity.UserID); err != nil {
			entry.Error = err.Error()
			results = append(results, entry)
			continue
		}

		invoiceID, err := h.storeUpload(c, identity.UserID, header)
		if err != nil {
			entry.Error = err.Error()
			results = append(results, entry)
			continue
		}
		entry.InvoiceID = invoiceID
		accepted++

		// Each file is summarized independently; a pipeline failure leaves
		// the invoice stored (marked failed) and never aborts the batch.
		outcome, err := h.deps.Orchestrator.Run(c.Request.Context(), &ingest.ManualTrigger{
			UserID:    identity.UserID,
			InvoiceID: invoiceID,
		})
		if err != nil {
			entry.SummarizeError = err.Error()
		} else {
			entry.Message = outcome.Message
		}
		results = append(results, entry)
	}

	status := http.StatusOK
	if accepted == 0 {
		status = http.StatusTooManyRequests
		for _, r := range results {
			if !strings.Contains(r.Error, service.ErrQuotaExceeded.Error()) {
				status = http.StatusBadRequest
				break
			}
		}
	}
	c.JSON(status, gin.H{"files": results, "accepted": accepted})
}

func (h *handlers) storeUpload(c *gin.Context, userID string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	fileURL, err := h.deps.Store.Upload(c.Request.Context(), userID, header.Filename, data)
	if err != nil {
		return "", err
	}

	invoice := &models.Invoice{
		UserID:  userID,
		Name:    header.Filename,
		Status:  models.InvoiceStatusUploaded,
		Source:  models.InvoiceSourceUpload,
		FileURL: &fileURL,
	}
	if err := h.deps.Invoices.IngestNew(invoice); err != nil {
		return "", err
	}
	return invoice.ID, nil
}

// listInvoices returns the caller's invoices, newest first.
func (h *handlers) listInvoices(c *gin.Context) {
	identity := callerIdentity(c)
	invoices, err := h.deps.Invoices.List(identity.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, gin.H{
			"id":        inv.ID,
			"name":      inv.Name,
			"client":    inv.Client,
			"date":      inv.Date,
			"amount":    inv.Amount,
			"status":    inv.Status,
			"source":    inv.Source,
			"createdAt": inv.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"invoices": out})
}

// quotaStatus returns the caller's rolling-window usage.
func (h *handlers) quotaStatus(c *gin.Context) {
	identity := callerIdentity(c)
	status, err := h.deps.Quota.GetStatus(identity.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// exportInvoices streams the caller's invoices as an XLSX workbook.
func (h *handlers) exportInvoices(c *gin.Context) {
	identity := callerIdentity(c)
	data, err := h.deps.Export.Workbook(identity.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// webhookPing lets automation systems verify the endpoint is reachable.
func (h *handlers) webhookPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

type webhookRequest struct {
	InvoiceID   string   `json:"invoiceId" binding:"required"`
	UserID      string   `json:"userId"`
	InvoiceName string   `json:"invoiceName"`
	Client      *string  `json:"client"`
	Date        *string  `json:"date"`
	Amount      *float64 `json:"amount"`
	FileURL     string   `json:"fileUrl"`
	Source      string   `json:"source"`
	SourceText  string   `json:"sourceText"`
}

// processWebhook runs the pipeline for an invoice reported by an automation
// system. A fully-described unknown invoice is created first; replayed
// deliveries return the stored summary.
func (h *handlers) processWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoiceId is required"})
		return
	}

	outcome, err := h.deps.Orchestrator.Run(c.Request.Context(), &ingest.WebhookTrigger{
		Invoices:    h.deps.InvoiceRepo,
		InvoiceID:   req.InvoiceID,
		UserID:      req.UserID,
		InvoiceName: req.InvoiceName,
		Client:      req.Client,
		Date:        req.Date,
		Amount:      req.Amount,
		FileURL:     req.FileURL,
		Source:      req.Source,
		Text:        req.SourceText,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        outcome.Message,
		"invoiceId":      outcome.InvoiceID,
		"summary":        outcome.Result.Summary,
		"alreadyExisted": outcome.Result.AlreadyExisted,
	})
}

type emailWebhookRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	From    string `json:"from"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// processInvoiceEmail ingests an inbound invoice email as a new invoice.
func (h *handlers) processInvoiceEmail(c *gin.Context) {
	var req emailWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, subject and body are required"})
		return
	}

	outcome, err := h.deps.Orchestrator.Run(c.Request.Context(), &ingest.EmailTrigger{
		Invoices: h.deps.InvoiceRepo,
		History:  h.deps.HistoryRepo,
		UserID:   req.UserID,
		Sender:   req.From,
		Subject:  req.Subject,
		Body:     req.Body,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    outcome.Message,
		"invoice_id": outcome.InvoiceID,
		"client_id":  outcome.Result.ClientID,
		"summary":    outcome.Result.Summary,
	})
}

// respondError maps pipeline errors onto HTTP statuses.
func (h *handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
	case errors.Is(err, service.ErrSummaryRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice has no summary yet"})
	case errors.Is(err, pdftext.ErrNoText):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no text could be extracted from the document"})
	case errors.Is(err, service.ErrSourceUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invoice source unavailable"})
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "quota exceeded"})
	default:
		h.deps.Logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
