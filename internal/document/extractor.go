// Package document turns uploaded invoice files into plain text.
//
// PDF text extraction runs through an ordered engine chain: the pure-Go
// reader first, MuPDF as fallback for files the native parser rejects. Plain
// text uploads are validated as UTF-8 and passed through untouched.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
	"go.uber.org/zap"
)

// pdfEngine extracts plain text from raw PDF bytes.
type pdfEngine interface {
	Name() string
	ExtractText(data []byte) (string, error)
}

// Extractor converts uploaded documents to plain text.
type Extractor struct {
	engines []pdfEngine
	logger  *zap.Logger
}

// NewExtractor creates an extractor with the default PDF engine chain.
func NewExtractor(logger *zap.Logger) *Extractor {
	return newExtractorWithEngines([]pdfEngine{nativeEngine{}, fitzEngine{}}, logger)
}

func newExtractorWithEngines(engines []pdfEngine, logger *zap.Logger) *Extractor {
	return &Extractor{
		engines: engines,
		logger:  logger,
	}
}

// ExtractText returns the plain text content of a document. Output is text
// only: no layout, no images, nothing written to disk.
func (e *Extractor) ExtractText(docType models.DocumentType, data []byte) (string, error) {
	switch docType {
	case models.DocumentTypePDF:
		return e.extractPDF(data)
	case models.DocumentTypeTXT:
		return e.extractTXT(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, docType)
	}
}

// extractPDF tries each engine in order on the same bytes. An engine counts
// as failed when it errors, panics, or yields only whitespace.
func (e *Extractor) extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrDocumentUnreadable)
	}

	for _, engine := range e.engines {
		text, err := runEngine(engine, data)
		if err != nil {
			e.logger.Warn("PDF engine failed",
				zap.String("engine", engine.Name()),
				zap.Error(err))
			continue
		}

		if strings.TrimSpace(text) == "" {
			e.logger.Warn("PDF engine produced no text",
				zap.String("engine", engine.Name()))
			continue
		}

		e.logger.Info("PDF text extracted",
			zap.String("engine", engine.Name()),
			zap.Int("chars", len(text)))
		return text, nil
	}

	return "", fmt.Errorf("%w: all PDF engines failed", ErrDocumentUnreadable)
}

// extractTXT validates encoding and returns the content as-is, minus a UTF-8
// BOM if one is present.
func (e *Extractor) extractTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrDocumentUnreadable)
	}

	text := strings.TrimPrefix(string(data), "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text file is empty", ErrDocumentUnreadable)
	}

	return text, nil
}

// runEngine isolates a single engine attempt. Native PDF parsers panic on
// some malformed cross-reference tables; a panic counts as that engine's
// failure, not ours.
func runEngine(engine pdfEngine, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panicked: %v", r)
		}
	}()
	return engine.ExtractText(data)
}
