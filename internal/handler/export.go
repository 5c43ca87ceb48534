// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// ExportHandler serves the quotation workbook download. The route is
// mounted behind the manager-only group.
type ExportHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(db *sql.DB, renderer *render.Renderer) *ExportHandler {
	return &ExportHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Quotations streams all quotations as an xlsx workbook.
func (h *ExportHandler) Quotations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.queries.ListQuotations(r.Context())
	if err != nil {
		logAndInternalError(w, "list quotations for export", "error", err)
		return
	}

	const sheet = "Quotations"
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		logAndInternalError(w, "create export sheet", "error", err)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		logAndInternalError(w, "create export style", "error", err)
		return
	}

	headers := []string{"Number", "Title", "Customer", "Owner", "Status", "Total", "Summary", "Created"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, q := range rows {
		values := []any{
			q.Number,
			q.Title,
			q.CustomerName,
			q.OwnerName,
			q.Status,
			h.renderer.Money(q.TotalAmount),
			q.AISummary.String,
			q.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell := fmt.Sprintf("%s%d", string(rune('A'+col)), i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		width := 15.0
		if headers[i] == "Summary" {
			width = 60
		}
		f.SetColWidth(sheet, col, col, width)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="quotations.xlsx"`)

	if err := f.Write(w); err != nil {
		slog.Error("write export workbook", "error", err)
	}
}
