package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validReply = `{
	"vendor": {"value": "Globex Industrial Supply", "confidence": 0.95, "reasoning": "Letterhead names the vendor."},
	"invoice_number": {"value": "INV-2024-0042", "confidence": 0.9, "reasoning": "Printed under the header."},
	"invoice_date": {"value": "2024-03-01", "confidence": 0.9, "reasoning": "Labeled as issue date."},
	"due_date": {"value": "2024-03-31", "confidence": 0.85, "reasoning": "Net 30 terms."},
	"total_amount": {"value": "61250.00", "confidence": 0.98, "reasoning": "Amount due line."},
	"summary": "Invoice from Globex Industrial Supply for 61250.00, due 2024-03-31."
}`

// completionStub records every chat completion request and replies with a
// fixed message body.
type completionStub struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
}

func (s *completionStub) Requests() []openai.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), s.requests...)
}

func newCompletionStub(t *testing.T, reply string) *completionStub {
	t.Helper()
	stub := &completionStub{}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		stub.mu.Lock()
		stub.requests = append(stub.requests, req)
		stub.mu.Unlock()

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-stub",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: reply,
				},
			}},
			Usage: openai.Usage{TotalTokens: 128},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

func newTestClient(t *testing.T, baseURL string, cfg Config) *Client {
	t.Helper()
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL + "/v1"
	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestExtractParsesValidResponse(t *testing.T) {
	stub := newCompletionStub(t, validReply)
	client := newTestClient(t, stub.srv.URL, Config{Model: "gemini-2.0-flash"})

	result, err := client.Extract(context.Background(), Input{
		DocumentText: "INVOICE INV-2024-0042 from Globex Industrial Supply, total due $61,250.00 by 2024-03-31.",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.Equal(t, "Globex Industrial Supply", result.Record.Vendor.Value)
	assert.Equal(t, "INV-2024-0042", result.Record.InvoiceNumber.Value)
	assert.Equal(t, "2024-03-01", result.Record.InvoiceDate.Value)
	assert.Equal(t, "2024-03-31", result.Record.DueDate.Value)
	assert.Equal(t, "61250.00", result.Record.TotalAmount.Value)
	assert.InDelta(t, 0.98, result.Record.TotalAmount.Confidence, 1e-9)
	assert.NotEmpty(t, result.Summary)
	assert.Empty(t, result.Answer)

	require.Len(t, stub.Requests(), 1)
	req := stub.Requests()[0]
	assert.Equal(t, "gemini-2.0-flash", req.Model)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[1].Content, "Globex Industrial Supply")
}

func TestExtractSendsNearZeroTemperature(t *testing.T) {
	stub := newCompletionStub(t, validReply)
	client := newTestClient(t, stub.srv.URL, Config{})

	_, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
	require.NoError(t, err)

	require.Len(t, stub.Requests(), 1)
	temp := stub.Requests()[0].Temperature
	assert.Greater(t, temp, float32(0), "temperature must survive JSON encoding")
	assert.Less(t, temp, float32(1e-6))
}

func TestExtractDeterministicAcrossCalls(t *testing.T) {
	stub := newCompletionStub(t, validReply)
	client := newTestClient(t, stub.srv.URL, Config{})

	in := Input{DocumentText: "INVOICE INV-7 total 12.50"}
	first, err := client.Extract(context.Background(), in)
	require.NoError(t, err)
	second, err := client.Extract(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, stub.Requests(), 2)
	assert.Equal(t, stub.Requests()[0].Messages, stub.Requests()[1].Messages)
	assert.Equal(t, stub.Requests()[0].Temperature, stub.Requests()[1].Temperature)
}

func TestExtractAcceptsFencedResponse(t *testing.T) {
	stub := newCompletionStub(t, "```json\n"+validReply+"\n```")
	client := newTestClient(t, stub.srv.URL, Config{})

	result, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
	require.NoError(t, err)
	assert.Equal(t, "Globex Industrial Supply", result.Record.Vendor.Value)
}

func TestExtractAcceptsProseWrappedResponse(t *testing.T) {
	stub := newCompletionStub(t, "Here is the structured record you asked for:\n"+validReply+"\nLet me know if you need more.")
	client := newTestClient(t, stub.srv.URL, Config{})

	result, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-0042", result.Record.InvoiceNumber.Value)
}

func TestExtractRejectsMalformedOutput(t *testing.T) {
	stub := newCompletionStub(t, "I could not find any structured data in this document.")
	client := newTestClient(t, stub.srv.URL, Config{})

	result, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Nil(t, result, "no partial record may escape a failed extraction")
}

func TestExtractRejectsOutOfRangeConfidence(t *testing.T) {
	reply := `{"vendor": {"value": "Globex", "confidence": 1.5, "reasoning": "letterhead"}}`
	stub := newCompletionStub(t, reply)
	client := newTestClient(t, stub.srv.URL, Config{})

	result, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Nil(t, result)
}

func TestExtractRejectsSchemaViolatingShape(t *testing.T) {
	reply := `{"vendor": "Globex Industrial Supply"}`
	stub := newCompletionStub(t, reply)
	client := newTestClient(t, stub.srv.URL, Config{})

	_, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractAnswerOnlyWithQuestion(t *testing.T) {
	reply := `{
		"vendor": {"value": "Globex", "confidence": 0.9, "reasoning": "letterhead"},
		"summary": "An invoice.",
		"answer": "The invoice is due on 2024-03-31."
	}`

	t.Run("question asked", func(t *testing.T) {
		stub := newCompletionStub(t, reply)
		client := newTestClient(t, stub.srv.URL, Config{})

		result, err := client.Extract(context.Background(), Input{
			DocumentText: "invoice text",
			Question:     "When is this due?",
		})
		require.NoError(t, err)
		assert.Equal(t, "The invoice is due on 2024-03-31.", result.Answer)

		require.Len(t, stub.Requests(), 1)
		assert.Contains(t, stub.Requests()[0].Messages[1].Content, "When is this due?")
	})

	t.Run("no question asked", func(t *testing.T) {
		stub := newCompletionStub(t, reply)
		client := newTestClient(t, stub.srv.URL, Config{})

		result, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
		require.NoError(t, err)
		assert.Empty(t, result.Answer, "unsolicited answers are discarded")
	})
}

func TestExtractTruncatesLongDocuments(t *testing.T) {
	stub := newCompletionStub(t, validReply)
	client := newTestClient(t, stub.srv.URL, Config{MaxDocumentChars: 64})

	head := strings.Repeat("A", 64)
	tail := "TAIL-MARKER-NEVER-SENT"
	_, err := client.Extract(context.Background(), Input{DocumentText: head + tail})
	require.NoError(t, err)

	require.Len(t, stub.Requests(), 1)
	prompt := stub.Requests()[0].Messages[1].Content
	assert.Contains(t, prompt, head)
	assert.NotContains(t, prompt, tail)
}

func TestExtractEmptyDocument(t *testing.T) {
	stub := newCompletionStub(t, validReply)
	client := newTestClient(t, stub.srv.URL, Config{})

	_, err := client.Extract(context.Background(), Input{DocumentText: "   \n\t"})
	require.Error(t, err)
	assert.Empty(t, stub.Requests(), "no request should be sent for empty text")
}

func TestExtractTransportErrorIsNotExtractionFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "upstream unavailable"}}`, http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	client := newTestClient(t, srv.URL, Config{})

	_, err := client.Extract(context.Background(), Input{DocumentText: "invoice text"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExtractionFailed)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{}, zap.NewNop())
	require.Error(t, err)
}
