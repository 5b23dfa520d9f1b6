package models

// Summary is the structured extraction result stored on an invoice.
// Every field is optional: the extraction engine is instructed to leave
// out anything it could not find in the source text.
type Summary struct {
	Summary     string      `json:"summary,omitempty"`
	ClientInfo  *ClientInfo `json:"clientInfo,omitempty"`
	KeyDetails  *KeyDetails `json:"keyDetails,omitempty"`
	LineItems   []LineItem  `json:"lineItems,omitempty"`
	TotalAmount string      `json:"totalAmount,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	InvoiceDate string      `json:"invoiceDate,omitempty"` // YYYY-MM-DD
}

// ClientInfo is the billing counterparty as extracted from the document.
type ClientInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
}

// KeyDetails are the headline invoice fields.
type KeyDetails struct {
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	DueDate       string `json:"dueDate,omitempty"`
	PaymentTerms  string `json:"paymentTerms,omitempty"`
	Subtotal      string `json:"subtotal,omitempty"`
	TaxAmount     string `json:"taxAmount,omitempty"`
}

// LineItem is one billed row.
type LineItem struct {
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	UnitPrice   string  `json:"unitPrice,omitempty"`
	Total       string  `json:"total,omitempty"`
}

// NormalizedCurrency returns the summary currency, defaulting to USD when
// absent or not a 3-letter code.
func (s *Summary) NormalizedCurrency() string {
	if len(s.Currency) == 3 {
		return s.Currency
	}
	return "USD"
}
