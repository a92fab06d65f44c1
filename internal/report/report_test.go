package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
)

func sampleResult() *models.PipelineResult {
	return &models.PipelineResult{
		FileName:  "invoice-42.pdf",
		CharCount: 1200,
		Record: &models.InvoiceRecord{
			Vendor:      &models.Field{Value: "Globex", Confidence: 0.95, Reasoning: "letterhead"},
			TotalAmount: &models.Field{Value: "61250.00", Confidence: 0.98, Reasoning: "amount due line"},
		},
		Summary:    "Large equipment invoice.",
		RiskTier:   "HIGH",
		Automation: &models.AutomationResult{Status: models.AutomationSent},
	}
}

func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBuildReport(t *testing.T) {
	w := NewWriter("", zap.NewNop())

	b, err := w.Build(sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f := openWorkbook(t, b)
	assert.Equal(t, []string{"Invoice Analysis"}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue("Invoice Analysis", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Field", get("A1"))
	assert.Equal(t, "Value", get("B1"))
	assert.Equal(t, "Confidence", get("C1"))
	assert.Equal(t, "Reasoning", get("D1"))

	// Field rows follow the record's display order.
	assert.Equal(t, "vendor", get("A2"))
	assert.Equal(t, "Globex", get("B2"))
	assert.Equal(t, "0.95", get("C2"))
	assert.Equal(t, "letterhead", get("D2"))

	assert.Equal(t, "invoice_number", get("A3"))
	assert.Equal(t, "(not found)", get("B3"))

	assert.Equal(t, "total_amount", get("A6"))
	assert.Equal(t, "61250.00", get("B6"))
	assert.Equal(t, "0.98", get("C6"))

	// Outcome block sits below a spacer row.
	assert.Equal(t, "summary", get("A8"))
	assert.Equal(t, "Large equipment invoice.", get("B8"))
	assert.Equal(t, "risk_tier", get("A9"))
	assert.Equal(t, "HIGH", get("B9"))
	assert.Equal(t, "automation_status", get("A10"))
	assert.Equal(t, "sent", get("B10"))
}

func TestBuildReportCustomSheetName(t *testing.T) {
	w := NewWriter("AP Review", zap.NewNop())

	b, err := w.Build(sampleResult())
	require.NoError(t, err)

	f := openWorkbook(t, b)
	assert.Equal(t, []string{"AP Review"}, f.GetSheetList())
}

func TestBuildReportIncludesAnswer(t *testing.T) {
	result := sampleResult()
	result.Answer = "The invoice is due 2024-03-31."
	w := NewWriter("", zap.NewNop())

	b, err := w.Build(result)
	require.NoError(t, err)

	f := openWorkbook(t, b)
	answer, err := f.GetCellValue("Invoice Analysis", "B10")
	require.NoError(t, err)
	assert.Equal(t, "The invoice is due 2024-03-31.", answer)
}

func TestBuildReportWithoutRecord(t *testing.T) {
	w := NewWriter("", zap.NewNop())

	b, err := w.Build(&models.PipelineResult{FileName: "empty.pdf"})
	require.NoError(t, err)

	f := openWorkbook(t, b)
	header, err := f.GetCellValue("Invoice Analysis", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Field", header)
}

func TestBuildReportNilResult(t *testing.T) {
	w := NewWriter("", zap.NewNop())

	_, err := w.Build(nil)
	require.Error(t, err)
}
