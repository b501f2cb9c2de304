// Package export produces the downloadable approvals register workbook.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/bizsuite/approval-engine/internal/application/port"
	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

const registerSheet = "Approvals"

var registerHeaders = []string{
	"ID", "Entity Type", "Reference", "Title", "Amount",
	"Level", "Status", "Priority", "Requested By", "Requested At",
	"Due At", "SLA",
}

// ExcelExporter renders the full approval registry as an xlsx workbook
type ExcelExporter struct {
	repo   port.ApprovalRepository
	nowFn  func() time.Time
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(repo port.ApprovalRepository, logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{
		repo:   repo,
		nowFn:  time.Now,
		logger: logger,
	}
}

// ExportRegister builds the workbook from the current registry snapshot
func (e *ExcelExporter) ExportRegister(ctx context.Context) ([]byte, error) {
	items, err := e.repo.ListAll(ctx)
	if err != nil {
		e.logger.Error("Failed to load registry for export", zap.Error(err))
		return nil, fmt.Errorf("load registry: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), registerSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, header := range registerHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(registerSheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	now := e.nowFn()
	for row, item := range items {
		values := []interface{}{
			item.ID,
			item.EntityType.Label(),
			item.Reference,
			item.Title,
			item.Amount,
			item.Level.String(),
			item.Status.String(),
			item.Priority.String(),
			item.RequestedBy,
			item.RequestedAt.Format(time.RFC3339),
			item.SLADueAt.Format(time.RFC3339),
			e.slaCell(item, now),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(registerSheet, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		e.logger.Error("Failed to serialize workbook", zap.Error(err))
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	e.logger.Info("Approvals register exported", zap.Int("items", len(items)))
	return buf.Bytes(), nil
}

// slaCell renders the SLA column: terminal items show their outcome,
// pending items show the breach bucket label
func (e *ExcelExporter) slaCell(item *approval.ApprovalItem, now time.Time) string {
	if item.Status.IsTerminal() {
		return "resolved"
	}
	return approval.BreachLabel(now, item.SLADueAt, item.IsSLABreached(now))
}
