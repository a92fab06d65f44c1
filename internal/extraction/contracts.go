package extraction

import (
	"context"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
)

// Input carries the document text plus the optional user question.
type Input struct {
	DocumentText string
	Question     string
}

// FieldExtractor is the interface the pipeline depends on for structured
// extraction.
type FieldExtractor interface {
	Extract(ctx context.Context, in Input) (*models.ExtractionResult, error)
}
