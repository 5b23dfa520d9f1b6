package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/subhanali/invoice-summarizer/internal/models"
)

// summaryTemplate is the fixed layout of every summary notification.
// html/template escapes all extracted values, so model output can never
// inject markup into the message.
var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"money": FormatCurrency,
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 640px; margin: 0 auto;">
  <h2 style="color: #6366f1;">Invoice Summary: {{.InvoiceName}}</h2>

  {{if .Summary.Summary}}
  <h3>Summary</h3>
  <p>{{.Summary.Summary}}</p>
  {{end}}

  {{with .Summary.KeyDetails}}
  <h3>Key Details</h3>
  <ul>
    {{if .InvoiceNumber}}<li><strong>Invoice Number:</strong> {{.InvoiceNumber}}</li>{{end}}
    {{if .DueDate}}<li><strong>Due Date:</strong> {{.DueDate}}</li>{{end}}
    {{if .PaymentTerms}}<li><strong>Payment Terms:</strong> {{.PaymentTerms}}</li>{{end}}
    {{if .Subtotal}}<li><strong>Subtotal:</strong> {{.Subtotal}}</li>{{end}}
    {{if .TaxAmount}}<li><strong>Tax Amount:</strong> {{.TaxAmount}}</li>{{end}}
  </ul>
  {{end}}

  {{with .Summary.ClientInfo}}
  <h3>Client Information</h3>
  <ul>
    {{if .Company}}<li><strong>Company:</strong> {{.Company}}</li>{{end}}
    {{if .Name}}<li><strong>Contact:</strong> {{.Name}}</li>{{end}}
    {{if .Email}}<li><strong>Email:</strong> {{.Email}}</li>{{end}}
  </ul>
  {{end}}

  {{if .Summary.LineItems}}
  <h3>Line Items</h3>
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
    <tr><th>Description</th><th>Quantity</th><th>Unit Price</th><th>Total</th></tr>
    {{range .Summary.LineItems}}
    <tr><td>{{.Description}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Total}}</td></tr>
    {{end}}
  </table>
  {{end}}

  {{if .Summary.TotalAmount}}
  <h3>Total Amount: {{money .Summary.TotalAmount .Summary.NormalizedCurrency}}</h3>
  {{end}}

  <hr style="margin-top: 24px;">
  <p style="color: #6b7280; font-size: 12px;">
    This summary was generated automatically by Invoice Summarizer. Please do not reply to this email.
  </p>
</body>
</html>`))

type summaryTemplateData struct {
	InvoiceName string
	Summary     *models.Summary
}

// RenderSummary renders the HTML notification body for an invoice summary.
func RenderSummary(invoiceName string, summary *models.Summary) (string, error) {
	var buf bytes.Buffer
	err := summaryTemplate.Execute(&buf, summaryTemplateData{
		InvoiceName: invoiceName,
		Summary:     summary,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render summary email: %w", err)
	}
	return buf.String(), nil
}

// FormatCurrency formats an extracted amount string for display. Unparseable
// amounts fall back to "N/A" rather than breaking the message.
func FormatCurrency(amount, currency string) string {
	cleaned := strings.TrimSpace(amount)
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ':
			return -1
		}
		return r
	}, cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f %s", value, currency)
}
