// Package automation forwards high-risk invoices to an n8n-style webhook
// for downstream alerting. Low and medium tiers never leave the process.
package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/risk"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/pkg/utils"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxDocumentChars = 50000

	// maxResponseBytes caps how much of the workflow reply is read.
	maxResponseBytes = 1 << 20
)

// AlertRequest carries everything the downstream workflow needs to compose
// and route an alert.
type AlertRequest struct {
	FileName     string
	DocumentText string
	Record       *models.InvoiceRecord
	Summary      string
	RiskTier     risk.Tier
	Question     string
	Recipient    string
}

// Dispatcher is the interface the pipeline and HTTP layer depend on.
type Dispatcher interface {
	Dispatch(ctx context.Context, req AlertRequest) (*models.AutomationResult, error)
}

// WebhookConfig holds the webhook connection settings.
type WebhookConfig struct {
	// WebhookURL is treated as a credential and never logged.
	WebhookURL       string
	Timeout          time.Duration
	MaxDocumentChars int
}

// WebhookDispatcher posts high-risk alerts to the configured webhook.
// Each alert gets exactly one delivery attempt.
type WebhookDispatcher struct {
	cfg        WebhookConfig
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Dispatcher = (*WebhookDispatcher)(nil)

// NewWebhookDispatcher creates a dispatcher. A missing webhook URL is
// allowed at construction time; Dispatch reports it when a high-risk alert
// actually needs to be sent.
func NewWebhookDispatcher(cfg WebhookConfig, logger *zap.Logger) *WebhookDispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxDocumentChars <= 0 {
		cfg.MaxDocumentChars = defaultMaxDocumentChars
	}

	return &WebhookDispatcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// alertPayload is the JSON body posted to the webhook.
type alertPayload struct {
	FileName       string                `json:"file_name"`
	RiskTier       string                `json:"risk_tier"`
	Summary        string                `json:"summary,omitempty"`
	Record         *models.InvoiceRecord `json:"record"`
	UserQuestion   string                `json:"user_question,omitempty"`
	RecipientEmail string                `json:"recipient_email"`
	DocumentText   string                `json:"document_text,omitempty"`
}

// Dispatch routes an alert according to the risk tier. Tiers below HIGH are
// skipped without touching the network. A HIGH alert is posted once; a
// failed post is reported, never retried.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, req AlertRequest) (*models.AutomationResult, error) {
	result := &models.AutomationResult{
		Status:    models.AutomationSkipped,
		Recipient: req.Recipient,
	}

	if req.RiskTier != risk.TierHigh {
		d.logger.Info("automation skipped",
			zap.String("file_name", req.FileName),
			zap.String("risk_tier", string(req.RiskTier)))
		return result, nil
	}

	if err := utils.ValidateEmail(req.Recipient); err != nil {
		result.Status = models.AutomationFailed
		return result, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	if d.cfg.WebhookURL == "" {
		result.Status = models.AutomationFailed
		return result, ErrWebhookNotConfigured
	}

	payload := alertPayload{
		FileName:       req.FileName,
		RiskTier:       string(req.RiskTier),
		Summary:        req.Summary,
		Record:         req.Record,
		UserQuestion:   req.Question,
		RecipientEmail: req.Recipient,
		DocumentText:   utils.TruncateRunes(req.DocumentText, d.cfg.MaxDocumentChars),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		result.Status = models.AutomationFailed
		return result, fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	d.logger.Debug("dispatching high-risk alert",
		zap.String("file_name", req.FileName),
		zap.String("recipient", req.Recipient))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		result.Status = models.AutomationFailed
		return result, fmt.Errorf("failed to create webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		result.Status = models.AutomationFailed
		d.logger.Error("webhook call failed",
			zap.String("file_name", req.FileName),
			zap.Error(err))
		return result, fmt.Errorf("%w: %v", ErrAutomationFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		respBody = nil
	}
	result.WebhookStatus = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Status = models.AutomationFailed
		d.logger.Error("webhook returned non-success status",
			zap.String("file_name", req.FileName),
			zap.Int("status", resp.StatusCode),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return result, fmt.Errorf("%w: webhook returned status %d", ErrAutomationFailed, resp.StatusCode)
	}

	result.Status = models.AutomationSent
	result.FinalAnswer, result.EmailBody, result.WorkflowStatus = parseWorkflowResponse(respBody)

	d.logger.Info("high-risk alert dispatched",
		zap.String("file_name", req.FileName),
		zap.String("recipient", req.Recipient),
		zap.Int("status", resp.StatusCode),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return result, nil
}
