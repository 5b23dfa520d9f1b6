package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCompleter returns a canned response and records invocations
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestExtractor_ExtractSummary(t *testing.T) {
	t.Run("parses wrapped response", func(t *testing.T) {
		fc := &fakeCompleter{response: "Sure! ```json\n" + `{
			"summary": "Invoice INV-9 from Acme Inc for consulting.",
			"clientInfo": {"name": "Acme Inc", "company": "Acme Inc"},
			"keyDetails": {"invoiceNumber": "INV-9"},
			"totalAmount": "$500.00",
			"invoiceDate": "2024-03-01"
		}` + "\n```"}
		e := NewExtractor(fc, zap.NewNop())

		summary, err := e.ExtractSummary(context.Background(), "Invoice #INV-9 ...", nil)
		require.NoError(t, err)
		assert.Equal(t, "$500.00", summary.TotalAmount)
		assert.Equal(t, "2024-03-01", summary.InvoiceDate)
		require.NotNil(t, summary.ClientInfo)
		assert.Equal(t, "Acme Inc", summary.ClientInfo.Company)
		assert.Equal(t, "INV-9", summary.KeyDetails.InvoiceNumber)
	})

	t.Run("transport failure is ErrExtraction", func(t *testing.T) {
		fc := &fakeCompleter{err: errors.New("connection refused")}
		e := NewExtractor(fc, zap.NewNop())

		_, err := e.ExtractSummary(context.Background(), "text", nil)
		assert.ErrorIs(t, err, ErrExtraction)
	})

	t.Run("prose-only response is ErrMalformedResponse", func(t *testing.T) {
		fc := &fakeCompleter{response: "I could not find any invoice data."}
		e := NewExtractor(fc, zap.NewNop())

		_, err := e.ExtractSummary(context.Background(), "text", nil)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("invalid JSON is ErrMalformedResponse", func(t *testing.T) {
		fc := &fakeCompleter{response: `{"totalAmount": }`}
		e := NewExtractor(fc, zap.NewNop())

		_, err := e.ExtractSummary(context.Background(), "text", nil)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}
