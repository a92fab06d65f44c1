// Package extraction turns raw document text into a structured invoice
// record by calling an OpenAI-compatible chat completion endpoint and
// validating the model's JSON output against a local schema.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/pkg/utils"
)

const (
	// DefaultBaseURL targets Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

	// DefaultModel is the model used when the config names none.
	DefaultModel = "gemini-2.0-flash"

	defaultMaxTokens        = 1500
	defaultTimeout          = 60 * time.Second
	defaultMaxDocumentChars = 30000
)

// Config holds the connection settings for the completion endpoint.
type Config struct {
	APIKey           string
	BaseURL          string
	Model            string
	MaxTokens        int
	Timeout          time.Duration
	MaxDocumentChars int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxDocumentChars <= 0 {
		c.MaxDocumentChars = defaultMaxDocumentChars
	}
	return c
}

// Client performs structured extraction against a chat completion API.
type Client struct {
	api    *openai.Client
	cfg    Config
	logger *zap.Logger
}

var _ FieldExtractor = (*Client)(nil)

// NewClient builds a Client from cfg, filling unset fields with defaults.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	cfg = cfg.withDefaults()

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	apiConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	apiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:    openai.NewClientWithConfig(apiConfig),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Extract sends the document text (and optional question) to the model and
// returns the validated record. Decoding runs at the lowest representable
// temperature so repeated calls over the same document return stable output.
func (c *Client) Extract(ctx context.Context, in Input) (*models.ExtractionResult, error) {
	if strings.TrimSpace(in.DocumentText) == "" {
		return nil, fmt.Errorf("document text is empty")
	}

	requestID := uuid.New().String()
	text := in.DocumentText
	if utf8.RuneCountInString(text) > c.cfg.MaxDocumentChars {
		text = utils.TruncateRunes(text, c.cfg.MaxDocumentChars)
		c.logger.Warn("document text truncated for extraction",
			zap.String("request_id", requestID),
			zap.Int("limit_chars", c.cfg.MaxDocumentChars),
			zap.Int("original_chars", utf8.RuneCountInString(in.DocumentText)))
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(text, in.Question)},
		},
		MaxTokens: c.cfg.MaxTokens,
		// A literal 0 is dropped by omitempty and the service substitutes
		// its own default, so send the smallest encodable positive value.
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	c.logger.Debug("requesting structured extraction",
		zap.String("request_id", requestID),
		zap.String("model", c.cfg.Model),
		zap.Int("document_chars", utf8.RuneCountInString(text)),
		zap.Bool("has_question", strings.TrimSpace(in.Question) != ""))

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", ErrExtractionFailed)
	}

	result, dropped, err := parseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("extraction output rejected",
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, err
	}

	// The answer key only exists in response to a question.
	if strings.TrimSpace(in.Question) == "" {
		result.Answer = ""
	}

	c.logger.Info("extraction completed",
		zap.String("request_id", requestID),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Strings("dropped_keys", dropped))

	return result, nil
}

// parseExtraction turns raw model output into a validated ExtractionResult.
// Fenced or prose-wrapped JSON is tolerated; anything that fails the record
// schema is rejected whole.
func parseExtraction(content string) (*models.ExtractionResult, []string, error) {
	raw := stripCodeFences(content)
	if !json.Valid([]byte(raw)) {
		raw = extractJSON(raw)
		if raw == "" {
			return nil, nil, fmt.Errorf("%w: no JSON object in model output", ErrExtractionFailed)
		}
	}

	normalized, dropped, err := normalizeRecordJSON([]byte(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if err := ValidateRecordJSON(normalized); err != nil {
		return nil, dropped, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var payload struct {
		models.InvoiceRecord
		Summary string `json:"summary"`
		Answer  string `json:"answer"`
	}
	if err := json.Unmarshal(normalized, &payload); err != nil {
		return nil, dropped, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	return &models.ExtractionResult{
		Record:  &payload.InvoiceRecord,
		Summary: payload.Summary,
		Answer:  payload.Answer,
	}, dropped, nil
}
