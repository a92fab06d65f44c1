package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
)

// spyEngine records whether it was invoked and returns canned output.
type spyEngine struct {
	name   string
	text   string
	err    error
	panics bool
	calls  int
}

func (s *spyEngine) Name() string { return s.name }

func (s *spyEngine) ExtractText(data []byte) (string, error) {
	s.calls++
	if s.panics {
		panic("malformed xref table")
	}
	return s.text, s.err
}

func TestExtractTXT(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())

	tests := []struct {
		name          string
		data          []byte
		want          string
		expectError   bool
		errorContains string
	}{
		{
			name: "valid utf-8 text",
			data: []byte("Invoice #42\nTotal: 1,200.00"),
			want: "Invoice #42\nTotal: 1,200.00",
		},
		{
			name: "utf-8 bom is stripped",
			data: []byte("\uFEFFInvoice #42"),
			want: "Invoice #42",
		},
		{
			name: "multibyte content survives",
			data: []byte("Rechnung für Büromöbel — 99,50 €"),
			want: "Rechnung für Büromöbel — 99,50 €",
		},
		{
			name:          "invalid utf-8 fails",
			data:          []byte{0xff, 0xfe, 0x41, 0x80},
			expectError:   true,
			errorContains: "not valid UTF-8",
		},
		{
			name:          "whitespace only fails",
			data:          []byte("  \n\t  "),
			expectError:   true,
			errorContains: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.ExtractText(models.DocumentTypeTXT, tt.data)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDocumentUnreadable)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())

	_, err := extractor.ExtractText(models.DocumentType("docx"), []byte("anything"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractPDFFallbackAttemptedBeforeFailing(t *testing.T) {
	primary := &spyEngine{name: "primary", err: errors.New("broken trailer")}
	fallback := &spyEngine{name: "fallback", err: errors.New("also broken")}
	extractor := newExtractorWithEngines([]pdfEngine{primary, fallback}, zap.NewNop())

	_, err := extractor.ExtractText(models.DocumentTypePDF, []byte("%PDF-1.4 garbage"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentUnreadable)
	assert.Equal(t, 1, primary.calls, "primary engine should be attempted")
	assert.Equal(t, 1, fallback.calls, "fallback engine must be attempted before failing")
}

func TestExtractPDFFallbackRecoversText(t *testing.T) {
	primary := &spyEngine{name: "primary", err: errors.New("broken trailer")}
	fallback := &spyEngine{name: "fallback", text: "Invoice #7\nTotal: 80.00"}
	extractor := newExtractorWithEngines([]pdfEngine{primary, fallback}, zap.NewNop())

	text, err := extractor.ExtractText(models.DocumentTypePDF, []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.Equal(t, "Invoice #7\nTotal: 80.00", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestExtractPDFPrimarySucceedsWithoutFallback(t *testing.T) {
	primary := &spyEngine{name: "primary", text: "Invoice #9"}
	fallback := &spyEngine{name: "fallback", text: "should not be used"}
	extractor := newExtractorWithEngines([]pdfEngine{primary, fallback}, zap.NewNop())

	text, err := extractor.ExtractText(models.DocumentTypePDF, []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.Equal(t, "Invoice #9", text)
	assert.Equal(t, 0, fallback.calls, "fallback should not run when primary yields text")
}

func TestExtractPDFWhitespaceOutputTriggersFallback(t *testing.T) {
	primary := &spyEngine{name: "primary", text: "  \n \n "}
	fallback := &spyEngine{name: "fallback", text: "Recovered body"}
	extractor := newExtractorWithEngines([]pdfEngine{primary, fallback}, zap.NewNop())

	text, err := extractor.ExtractText(models.DocumentTypePDF, []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.Equal(t, "Recovered body", text)
	assert.Equal(t, 1, fallback.calls, "whitespace-only output should count as failure")
}

func TestExtractPDFEnginePanicIsContained(t *testing.T) {
	primary := &spyEngine{name: "primary", panics: true}
	fallback := &spyEngine{name: "fallback", text: "Recovered body"}
	extractor := newExtractorWithEngines([]pdfEngine{primary, fallback}, zap.NewNop())

	text, err := extractor.ExtractText(models.DocumentTypePDF, []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.Equal(t, "Recovered body", text)
}

func TestExtractPDFEmptyInput(t *testing.T) {
	primary := &spyEngine{name: "primary", text: "never reached"}
	extractor := newExtractorWithEngines([]pdfEngine{primary}, zap.NewNop())

	_, err := extractor.ExtractText(models.DocumentTypePDF, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentUnreadable)
	assert.Equal(t, 0, primary.calls)
}

func TestExtractPDFCorruptBytesWithRealEngines(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())

	_, err := extractor.ExtractText(models.DocumentTypePDF, []byte("%PDF-1.7\nthis is not a real pdf body"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentUnreadable)
}
