// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jung-kurt/gofpdf"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/middleware"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// PDFHandler renders a quotation as a printable PDF document.
type PDFHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewPDFHandler creates a new PDFHandler.
func NewPDFHandler(db *sql.DB, renderer *render.Renderer) *PDFHandler {
	return &PDFHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Quotation streams the PDF for one quotation. Sales reps may only
// download their own quotations.
func (h *PDFHandler) Quotation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}

	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	quotation, err := h.queries.GetQuotationByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "get quotation", "error", err, "id", id)
		return
	}

	if !model.CanViewQuotation(user.Role, user.ID, quotation.OwnerID) {
		http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	customer, err := h.queries.GetCustomerByID(r.Context(), quotation.CustomerID)
	if err != nil {
		logAndInternalError(w, "get quotation customer", "error", err, "id", id)
		return
	}

	items, err := h.queries.ListQuotationItems(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "list quotation items", "error", err, "id", id)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(10, 10, 10)

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, "Reliant Windows - Quotation")
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, "Quotation No: "+quotation.Number)
	pdf.Cell(95, 6, "Date: "+quotation.CreatedAt.Format("02-Jan-2006"))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, "Customer: "+customer.Name)
	pdf.Cell(95, 6, "Status: "+quotation.Status)
	pdf.Ln(6)
	if customer.Address != "" {
		pdf.Cell(190, 6, "Address: "+customer.Address)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(70, 8, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Size (ft)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Line Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range items {
		size := "N/A"
		if item.WidthFt > 0 && item.HeightFt > 0 {
			size = fmt.Sprintf("%.2f x %.2f", item.WidthFt, item.HeightFt)
		}
		pdf.CellFormat(70, 8, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, size, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, h.renderer.Money(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, h.renderer.Money(item.LineTotal), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(155, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, h.renderer.Money(quotation.TotalAmount), "1", 1, "R", true, 0, "")
	pdf.Ln(6)

	if quotation.AISummary.Valid && quotation.AISummary.String != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(190, 6, "Summary")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, quotation.AISummary.String, "", "L", false)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.pdf"`, quotation.Number))

	if err := pdf.Output(w); err != nil {
		slog.Error("write quotation pdf", "error", err, "quotation_id", id)
	}
}
