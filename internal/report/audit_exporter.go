// Package report generates audit exports of a draft's transition history.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// AuditExporter writes a draft's transition history to an Excel workbook
type AuditExporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewAuditExporter creates a new audit exporter
func NewAuditExporter(outputDir string, logger *zap.Logger) *AuditExporter {
	return &AuditExporter{
		outputDir: outputDir,
		logger:    logger,
	}
}

const auditSheet = "Audit Trail"

var auditHeaders = []string{
	"#", "From", "To", "Actor", "Role", "Comments", "Metadata", "Timestamp",
}

// Export writes the workbook and returns the output path
func (e *AuditExporter) Export(draft *entity.Draft, history []*entity.HistoryEntry) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(auditSheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Warn("Failed to remove default sheet", zap.Error(err))
	}

	e.setCell(f, "A1", "Draft")
	e.setCell(f, "B1", draft.ID)
	e.setCell(f, "A2", "Listing")
	e.setCell(f, "B2", draft.ListingID)
	e.setCell(f, "A3", "Current status")
	e.setCell(f, "B3", draft.Status)
	e.setCell(f, "A4", "Revisions")
	e.setCell(f, "B4", fmt.Sprintf("%d", draft.RevisionCount))

	headerRow := 6
	for col, h := range auditHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return "", fmt.Errorf("failed to compute cell name: %w", err)
		}
		e.setCell(f, cell, h)
	}

	for i, entry := range history {
		row := headerRow + 1 + i
		values := []string{
			fmt.Sprintf("%d", i+1),
			entry.FromStatus,
			entry.ToStatus,
			entry.ActorID,
			entry.ActorRole,
			entry.Comments,
			entry.Metadata,
			entry.Timestamp.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return "", fmt.Errorf("failed to compute cell name: %w", err)
			}
			e.setCell(f, cell, v)
		}
	}

	outputPath := filepath.Join(e.outputDir, fmt.Sprintf("audit_%s_%s.xlsx", draft.ID, time.Now().Format("20060102_150405")))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	e.logger.Info("Audit report written",
		zap.String("draft_id", draft.ID),
		zap.String("output_path", outputPath),
		zap.Int("entries", len(history)))

	return outputPath, nil
}

// setCell sets a cell value, logging rather than failing on error
func (e *AuditExporter) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(auditSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
