package extraction

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleInvoiceText = `INVOICE

Globex Industrial Supply
1200 Harbor Blvd, Springfield

Invoice Number: INV-2024-0042
Invoice Date: 2024-03-01
Due Date: 2024-03-31

Description                  Qty    Unit Price    Amount
Hydraulic press unit           1      58,000.00   58,000.00
Installation and calibration   1       3,250.00    3,250.00

TOTAL DUE: $61,250.00

Payment terms: Net 30. Wire transfers only.`

// TestGeminiConnectionLive calls the real completion endpoint.
// It requires the GEMINI_API_KEY environment variable.
// Run with: go test -v -run TestGeminiConnectionLive ./internal/extraction/...
func TestGeminiConnectionLive(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping live connection test")
	}

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	defer logger.Sync()

	client, err := NewClient(Config{APIKey: apiKey}, logger)
	require.NoError(t, err)
	t.Log("✓ extraction client initialized")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := client.Extract(ctx, Input{
		DocumentText: sampleInvoiceText,
		Question:     "What is the payment deadline?",
	})
	if err != nil {
		t.Logf("ERROR: extraction call failed: %v", err)
		t.Logf("This likely means:")
		t.Logf("  - GEMINI_API_KEY is invalid or expired")
		t.Logf("  - Network connectivity issue")
		t.Logf("  - API quota exceeded")
		t.Fail()
		return
	}

	require.NotNil(t, result)
	require.NotNil(t, result.Record)
	t.Log("✓ received structured record")

	for _, f := range result.Record.Fields() {
		if f.Field == nil {
			t.Logf("  %s: (absent)", f.Name)
			continue
		}
		t.Logf("  %s: %q (confidence %.2f)", f.Name, f.Field.Value, f.Field.Confidence)
		assert.GreaterOrEqual(t, f.Field.Confidence, 0.0)
		assert.LessOrEqual(t, f.Field.Confidence, 1.0)
	}

	assert.NotNil(t, result.Record.TotalAmount, "sample invoice states a total")
	if result.Record.TotalAmount != nil {
		assert.Equal(t, "61250.00", result.Record.TotalAmount.Value)
	}
	assert.NotEmpty(t, result.Summary, "summary should not be empty")
	assert.NotEmpty(t, result.Answer, "a question was asked")

	t.Logf("  summary: %s", result.Summary)
	t.Logf("  answer: %s", result.Answer)
	t.Log("✓ live extraction test PASSED")
}
