// Package ai implements the extraction prompt engine: it formats a
// deterministic prompt around invoice text, invokes a language model at zero
// temperature and parses the response into a structured summary.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"go.uber.org/zap"
)

// ErrExtraction covers language-model transport failures, including deadline
// expiry. ErrMalformedResponse means the model answered but its output did
// not parse into the expected shape.
var (
	ErrExtraction        = errors.New("invoice extraction failed")
	ErrMalformedResponse = errors.New("malformed extraction response")
)

const systemPrompt = "You are an expert invoice analyzer. You extract structured data " +
	"from invoice text with perfect accuracy and always respond with valid JSON. " +
	"You never invent values: if a field is not present in the text, omit it or use null."

// Extractor extracts structured invoice fields using a language model
type Extractor struct {
	completer Completer
	logger    *zap.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(completer Completer, logger *zap.Logger) *Extractor {
	return &Extractor{
		completer: completer,
		logger:    logger,
	}
}

// ExtractSummary extracts a structured summary from invoice text. Hints from
// the existing invoice row (name, known date or amount) are embedded so the
// model can resolve ambiguous fields.
func (e *Extractor) ExtractSummary(ctx context.Context, sourceText string, hints *models.Invoice) (*models.Summary, error) {
	prompt := buildSummaryPrompt(sourceText, hints)
	return e.run(ctx, prompt)
}

func (e *Extractor) run(ctx context.Context, prompt string) (*models.Summary, error) {
	content, err := e.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		e.logger.Error("Language model call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	raw, err := FirstJSONObject(content)
	if err != nil {
		// Raw output is logged for diagnosis but never surfaced to callers.
		e.logger.Error("No JSON object in model response",
			zap.String("raw_response", content))
		return nil, ErrMalformedResponse
	}

	var summary models.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		e.logger.Error("Failed to parse model response",
			zap.Error(err),
			zap.String("raw_response", content))
		return nil, ErrMalformedResponse
	}

	e.logger.Info("Invoice fields extracted",
		zap.String("total_amount", summary.TotalAmount),
		zap.String("invoice_date", summary.InvoiceDate),
		zap.Bool("has_client_info", summary.ClientInfo != nil))

	return &summary, nil
}

const outputSchema = `{
  "summary": "A concise summary of the invoice in 2-3 sentences",
  "clientInfo": {
    "name": "Client/contact name",
    "email": "Client email address",
    "company": "Company name"
  },
  "keyDetails": {
    "invoiceNumber": "Invoice number/ID",
    "dueDate": "Due date",
    "paymentTerms": "Payment terms",
    "subtotal": "Subtotal before tax",
    "taxAmount": "Tax amount"
  },
  "lineItems": [{"description": "string", "quantity": number, "unitPrice": "string", "total": "string"}],
  "totalAmount": "Total amount",
  "currency": "3-letter currency code",
  "invoiceDate": "YYYY-MM-DD"
}`

const promptRules = `Important:
- Use YYYY-MM-DD format for dates
- If any field is not found in the text, use null - never guess or fabricate values
- Extract the most accurate information available
- Return ONLY the JSON object`

func buildSummaryPrompt(sourceText string, hints *models.Invoice) string {
	var sb strings.Builder
	sb.WriteString("Extract all relevant information from the following invoice text.\n\n")

	if hints != nil {
		sb.WriteString("Known invoice record fields:\n")
		fmt.Fprintf(&sb, "- Name: %s\n", hints.Name)
		if hints.Date != nil {
			fmt.Fprintf(&sb, "- Date: %s\n", *hints.Date)
		}
		if hints.Amount != nil {
			fmt.Fprintf(&sb, "- Amount: %.2f\n", *hints.Amount)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Invoice text:\n%s\n\n", sourceText)
	fmt.Fprintf(&sb, "Return a JSON object with the following structure:\n%s\n\n%s", outputSchema, promptRules)
	return sb.String()
}
