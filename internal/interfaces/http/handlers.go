package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/automation"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/pipeline"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/report"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/risk"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	pipeline       PipelineRunner
	dispatcher     automation.Dispatcher
	reports        *report.Writer
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	runner PipelineRunner,
	dispatcher automation.Dispatcher,
	reports *report.Writer,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		pipeline:       runner,
		dispatcher:     dispatcher,
		reports:        reports,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// DispatchAlertRequest is the body for POST /api/v1/alerts: a user-triggered
// dispatch of an already-analyzed record.
type DispatchAlertRequest struct {
	FileName       string                `json:"file_name"`
	DocumentText   string                `json:"document_text"`
	Record         *models.InvoiceRecord `json:"record" binding:"required"`
	Summary        string                `json:"summary"`
	RiskTier       string                `json:"risk_tier" binding:"required"`
	Question       string                `json:"question"`
	RecipientEmail string                `json:"recipient_email" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Service:   "invoice-orchestrator",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// AnalyzeInvoice handles POST /api/v1/invoices/analyze. It accepts a
// multipart form with a required "file" part plus optional "question",
// "recipient_email" and "dispatch" fields.
func (h *Handlers) AnalyzeInvoice(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, Response{
				Success: false,
				Error:   fmt.Sprintf("upload exceeds the %d byte limit", h.maxUploadBytes),
			})
			return
		}
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "a document file is required",
		})
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, Response{
			Success: false,
			Error:   fmt.Sprintf("upload exceeds the %d byte limit", h.maxUploadBytes),
		})
		return
	}

	docType, err := documentTypeFromName(fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "failed to read uploaded file",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "failed to read uploaded file",
		})
		return
	}

	req := pipeline.Request{
		FileName:     filepath.Base(fileHeader.Filename),
		DocumentType: docType,
		Content:      content,
		Question:     c.PostForm("question"),
		Recipient:    c.PostForm("recipient_email"),
		AutoDispatch: parseFormBool(c.PostForm("dispatch")),
	}

	result, err := h.pipeline.Process(c.Request.Context(), req)
	if err != nil {
		status := statusForPipelineError(err)
		h.logger.Warn("analyze request failed",
			zap.String("file_name", req.FileName),
			zap.Int("status", status),
			zap.Error(err))
		c.JSON(status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// DispatchAlert handles POST /api/v1/alerts
func (h *Handlers) DispatchAlert(c *gin.Context) {
	var req DispatchAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid alert request: " + err.Error(),
		})
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), automation.AlertRequest{
		FileName:     req.FileName,
		DocumentText: req.DocumentText,
		Record:       req.Record,
		Summary:      req.Summary,
		RiskTier:     risk.Tier(strings.ToUpper(strings.TrimSpace(req.RiskTier))),
		Question:     req.Question,
		Recipient:    req.RecipientEmail,
	})
	if err != nil {
		h.logger.Warn("alert dispatch failed",
			zap.String("file_name", req.FileName),
			zap.Error(err))
		c.JSON(statusForDispatchError(err), Response{
			Success: false,
			Data:    result,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// GenerateReport handles POST /api/v1/reports. It turns a pipeline result
// back into an XLSX attachment; nothing is stored server-side.
func (h *Handlers) GenerateReport(c *gin.Context) {
	var result models.PipelineResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid result payload: " + err.Error(),
		})
		return
	}

	data, err := h.reports.Build(&result)
	if err != nil {
		h.logger.Error("report build failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to build report",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFileName(result.FileName)))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// documentTypeFromName maps a file extension onto a document type.
func documentTypeFromName(name string) (models.DocumentType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return models.DocumentTypePDF, nil
	case ".txt":
		return models.DocumentTypeTXT, nil
	default:
		return "", fmt.Errorf("unsupported file type %q: upload a .pdf or .txt document", filepath.Ext(name))
	}
}

// statusForPipelineError maps stage errors onto status codes: an unreadable
// document is the client's problem, a failed model call is upstream's.
func statusForPipelineError(err error) int {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case pipeline.StageDocument:
			return http.StatusUnprocessableEntity
		case pipeline.StageExtraction:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

func statusForDispatchError(err error) int {
	switch {
	case errors.Is(err, automation.ErrInvalidRecipient):
		return http.StatusBadRequest
	case errors.Is(err, automation.ErrWebhookNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr) ||
		strings.Contains(err.Error(), "request body too large")
}

func parseFormBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}

// reportFileName derives the attachment name from the analyzed file.
func reportFileName(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "invoice"
	}
	return base + "-analysis.xlsx"
}
