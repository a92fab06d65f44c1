// Package report renders pipeline results as XLSX workbooks.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
)

const defaultSheetName = "Invoice Analysis"

// Writer renders a processed document as a one-sheet spreadsheet.
type Writer struct {
	sheetName string
	logger    *zap.Logger
}

// NewWriter creates a Writer. An empty sheetName selects the default.
func NewWriter(sheetName string, logger *zap.Logger) *Writer {
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	return &Writer{sheetName: sheetName, logger: logger}
}

// Build renders the result into a workbook and returns its bytes. Nothing
// is written to disk.
func (w *Writer) Build(result *models.PipelineResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("result is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	row := 1
	w.writeRow(f, row, "Field", "Value", "Confidence", "Reasoning")
	row++

	for _, nf := range result.Record.Fields() {
		if nf.Field == nil {
			w.writeRow(f, row, nf.Name, "(not found)")
			row++
			continue
		}
		w.writeRow(f, row, nf.Name, nf.Field.Value,
			fmt.Sprintf("%.2f", nf.Field.Confidence), nf.Field.Reasoning)
		row++
	}

	// Spacer before the outcome block.
	row++
	if result.Summary != "" {
		w.writeRow(f, row, "summary", result.Summary)
		row++
	}
	if result.RiskTier != "" {
		w.writeRow(f, row, "risk_tier", result.RiskTier)
		row++
	}
	if result.Answer != "" {
		w.writeRow(f, row, "answer", result.Answer)
		row++
	}
	if result.Automation != nil {
		w.writeRow(f, row, "automation_status", string(result.Automation.Status))
	}

	w.setColWidth(f, "A", "A", 18)
	w.setColWidth(f, "B", "B", 48)
	w.setColWidth(f, "C", "C", 12)
	w.setColWidth(f, "D", "D", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	w.logger.Debug("report rendered",
		zap.String("file_name", result.FileName),
		zap.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

// writeRow fills one row left to right starting at column A.
func (w *Writer) writeRow(f *excelize.File, row int, values ...string) {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			w.logger.Warn("failed to compute cell name",
				zap.Int("col", i+1),
				zap.Int("row", row),
				zap.Error(err))
			continue
		}
		w.setCell(f, cell, value)
	}
}

// setCell sets a cell value, logging instead of failing the export.
func (w *Writer) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(w.sheetName, cell, value); err != nil {
		w.logger.Warn("failed to set cell value",
			zap.String("sheet", w.sheetName),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func (w *Writer) setColWidth(f *excelize.File, start, end string, width float64) {
	if err := f.SetColWidth(w.sheetName, start, end, width); err != nil {
		w.logger.Warn("failed to set column width",
			zap.String("col", start),
			zap.Error(err))
	}
}
