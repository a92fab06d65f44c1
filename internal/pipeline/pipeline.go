// Package pipeline chains document reading, structured extraction, risk
// classification and automation dispatch for a single uploaded document.
package pipeline

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/automation"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/extraction"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/risk"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/pkg/utils"
)

// Stage names surfaced in failure messages.
const (
	StageDocument   = "document"
	StageExtraction = "extraction"
	StageRisk       = "risk"
	StageAutomation = "automation"
)

// previewRunes is how much of the extracted text the result echoes back.
const previewRunes = 500

// Request describes one document to process.
type Request struct {
	FileName     string
	DocumentType models.DocumentType
	Content      []byte
	Question     string
	Recipient    string
	AutoDispatch bool
}

// TextExtractor reads raw document bytes into plain text.
type TextExtractor interface {
	ExtractText(docType models.DocumentType, data []byte) (string, error)
}

// StageError tags an error with the pipeline stage that produced it. It is
// returned when a stage failed before any usable output existed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline wires the four stages together.
type Pipeline struct {
	documents  TextExtractor
	extractor  extraction.FieldExtractor
	classifier *risk.Classifier
	dispatcher automation.Dispatcher
	logger     *zap.Logger
}

// New creates a Pipeline.
func New(
	documents TextExtractor,
	extractor extraction.FieldExtractor,
	classifier *risk.Classifier,
	dispatcher automation.Dispatcher,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		documents:  documents,
		extractor:  extractor,
		classifier: classifier,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Process runs the stages in order. Document and extraction failures abort
// with a StageError since nothing useful exists yet. Once a record is in
// hand, later failures are recorded on the result instead: a risk failure
// keeps the record and skips automation, and an automation failure keeps
// everything it managed to produce.
func (p *Pipeline) Process(ctx context.Context, req Request) (*models.PipelineResult, error) {
	p.logger.Info("processing document",
		zap.String("file_name", req.FileName),
		zap.String("document_type", string(req.DocumentType)),
		zap.Bool("has_question", req.Question != ""),
		zap.Bool("auto_dispatch", req.AutoDispatch))

	text, err := p.documents.ExtractText(req.DocumentType, req.Content)
	if err != nil {
		p.logger.Warn("document stage failed",
			zap.String("file_name", req.FileName),
			zap.Error(err))
		return nil, &StageError{Stage: StageDocument, Err: err}
	}

	result := &models.PipelineResult{
		FileName:  req.FileName,
		Preview:   utils.TruncateRunes(text, previewRunes),
		CharCount: utf8.RuneCountInString(text),
	}

	ext, err := p.extractor.Extract(ctx, extraction.Input{
		DocumentText: text,
		Question:     req.Question,
	})
	if err != nil {
		p.logger.Warn("extraction stage failed",
			zap.String("file_name", req.FileName),
			zap.Error(err))
		return nil, &StageError{Stage: StageExtraction, Err: err}
	}

	result.Record = ext.Record
	result.Summary = ext.Summary
	result.Answer = ext.Answer

	tier, err := p.classifier.ClassifyRecord(ext.Record)
	if err != nil {
		p.logger.Warn("risk stage failed",
			zap.String("file_name", req.FileName),
			zap.Error(err))
		result.Failures = append(result.Failures, models.StageFailure{
			Stage:   StageRisk,
			Message: err.Error(),
		})
		// No tier means no automation decision can be made.
		return result, nil
	}
	result.RiskTier = string(tier)

	if !req.AutoDispatch {
		p.logger.Info("document processed",
			zap.String("file_name", req.FileName),
			zap.String("risk_tier", result.RiskTier),
			zap.Bool("auto_dispatch", false))
		return result, nil
	}

	autoResult, err := p.dispatcher.Dispatch(ctx, automation.AlertRequest{
		FileName:     req.FileName,
		DocumentText: text,
		Record:       ext.Record,
		Summary:      ext.Summary,
		RiskTier:     tier,
		Question:     req.Question,
		Recipient:    req.Recipient,
	})
	result.Automation = autoResult
	if err != nil {
		p.logger.Error("automation stage failed",
			zap.String("file_name", req.FileName),
			zap.Error(err))
		result.Failures = append(result.Failures, models.StageFailure{
			Stage:   StageAutomation,
			Message: err.Error(),
		})
		return result, nil
	}

	p.logger.Info("document processed",
		zap.String("file_name", req.FileName),
		zap.String("risk_tier", result.RiskTier),
		zap.String("automation_status", string(autoResult.Status)))

	return result, nil
}
