// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/middleware"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/summary"
)

// maxQuotationLines bounds how many line rows the creation form accepts.
const maxQuotationLines = 50

// QuotationHandler handles quotation routes.
type QuotationHandler struct {
	db        *sql.DB
	queries   *store.Queries
	renderer  *render.Renderer
	summaries *summary.Generator
}

// NewQuotationHandler creates a new QuotationHandler.
func NewQuotationHandler(db *sql.DB, renderer *render.Renderer, summaries *summary.Generator) *QuotationHandler {
	return &QuotationHandler{
		db:        db,
		queries:   store.New(db),
		renderer:  renderer,
		summaries: summaries,
	}
}

// List renders quotations. Managers see every quotation; sales reps see
// only their own.
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}

	var (
		quotations []store.QuotationListRow
		err        error
	)
	if user.Role == model.RoleManager {
		quotations, err = h.queries.ListQuotations(r.Context())
	} else {
		quotations, err = h.queries.ListQuotationsByOwner(r.Context(), user.ID)
	}
	if err != nil {
		logAndInternalError(w, "list quotations", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "app/quotations", render.TemplateData{
		Title: "Quotations",
		Data:  quotations,
	}); err != nil {
		logAndInternalError(w, "render quotations", "error", err)
	}
}

type quotationFormData struct {
	Customers []store.Customer
	Products  []store.Product
}

// New renders the quotation creation form.
func (h *QuotationHandler) New(w http.ResponseWriter, r *http.Request) {
	customers, err := h.queries.ListCustomersByName(r.Context())
	if err != nil {
		logAndInternalError(w, "list customers", "error", err)
		return
	}

	products, err := h.queries.ListProducts(r.Context())
	if err != nil {
		logAndInternalError(w, "list products", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "app/quotation_form", render.TemplateData{
		Title: "New Quotation",
		Data: quotationFormData{
			Customers: customers,
			Products:  products,
		},
	}); err != nil {
		logAndInternalError(w, "render quotation form", "error", err)
	}
}

type quotationLine struct {
	product   store.Product
	quantity  int64
	widthFt   float64
	heightFt  float64
	unitPrice float64
}

// Create handles the quotation form submission. The header, lines, and
// total are written in one transaction; the summary is generated after
// commit and saved best-effort.
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}

	formURL := RouteQuotations + RouteSuffixNew
	if !parseFormOrRedirect(w, r, h.renderer, formURL) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		flashError(w, r, h.renderer, formURL, "Quotation title is required")
		return
	}

	customerID, err := strconv.ParseInt(r.FormValue("customer_id"), 10, 64)
	if err != nil || customerID <= 0 {
		flashError(w, r, h.renderer, formURL, "Please select a customer")
		return
	}

	customer, err := h.queries.GetCustomerByID(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			flashError(w, r, h.renderer, formURL, "Unknown customer")
			return
		}
		logAndInternalError(w, "get customer", "error", err, "id", customerID)
		return
	}

	lines, err := h.parseLines(r)
	if err != nil {
		flashError(w, r, h.renderer, formURL, err.Error())
		return
	}
	if len(lines) == 0 {
		flashError(w, r, h.renderer, formURL, "At least one line item is required")
		return
	}

	number := newQuotationNumber()

	var quotation store.Quotation
	err = store.InTx(r.Context(), h.db, func(q *store.Queries) error {
		quotation, err = q.CreateQuotation(r.Context(), store.CreateQuotationParams{
			Number:     number,
			Title:      title,
			CustomerID: customerID,
			OwnerID:    user.ID,
			Status:     model.StatusDraft,
		})
		if err != nil {
			return err
		}

		var total float64
		for _, l := range lines {
			lineTotal := round2(float64(l.quantity) * l.unitPrice)
			if err := q.CreateQuotationItem(r.Context(), store.CreateQuotationItemParams{
				QuotationID: quotation.ID,
				ProductID:   l.product.ID,
				Quantity:    l.quantity,
				WidthFt:     l.widthFt,
				HeightFt:    l.heightFt,
				UnitPrice:   l.unitPrice,
				LineTotal:   lineTotal,
			}); err != nil {
				return err
			}
			total += lineTotal
		}

		return q.UpdateQuotationTotal(r.Context(), quotation.ID, round2(total))
	})
	if err != nil {
		logAndInternalError(w, "create quotation", "error", err)
		return
	}

	h.attachSummary(r, quotation.ID, customer.Name, lines)

	slog.Info("quotation created",
		"quotation_id", quotation.ID, "number", number, "owner_id", user.ID)

	flashSuccess(w, r, h.renderer,
		fmt.Sprintf("%s/%d", RouteQuotations, quotation.ID),
		"Quotation "+number+" created")
}

// attachSummary generates and stores the quotation summary. Generation
// always yields text (the generator falls back to a template), so only
// the save can fail, and that failure is logged rather than surfaced.
func (h *QuotationHandler) attachSummary(r *http.Request, quotationID int64, customerName string, lines []quotationLine) {
	items := make([]summary.QuoteItem, 0, len(lines))
	var total float64
	for _, l := range lines {
		items = append(items, summary.QuoteItem{
			Name:     l.product.Name,
			Category: l.product.Category,
			Quantity: l.quantity,
			WidthFt:  l.widthFt,
			HeightFt: l.heightFt,
		})
		total += round2(float64(l.quantity) * l.unitPrice)
	}

	text := h.summaries.Generate(r.Context(), customerName, items, round2(total))
	if err := h.queries.UpdateQuotationSummary(r.Context(), quotationID, text); err != nil {
		slog.Error("save quotation summary", "error", err, "quotation_id", quotationID)
	}
}

// parseLines reads the repeated product_id/quantity/width_ft/height_ft/
// unit_price form fields. Rows with an empty product selection are
// skipped; an empty unit price falls back to the product's base cost.
func (h *QuotationHandler) parseLines(r *http.Request) ([]quotationLine, error) {
	productIDs := r.Form["product_id"]
	quantities := r.Form["quantity"]
	widths := r.Form["width_ft"]
	heights := r.Form["height_ft"]
	unitPrices := r.Form["unit_price"]

	if len(productIDs) > maxQuotationLines {
		return nil, fmt.Errorf("too many line items (max %d)", maxQuotationLines)
	}

	var lines []quotationLine
	for i, raw := range productIDs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		productID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || productID <= 0 {
			return nil, fmt.Errorf("line %d: invalid product", i+1)
		}

		product, err := h.queries.GetProductByID(r.Context(), productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("line %d: unknown product", i+1)
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		quantity := int64(1)
		if i < len(quantities) && strings.TrimSpace(quantities[i]) != "" {
			quantity, err = strconv.ParseInt(quantities[i], 10, 64)
			if err != nil || quantity <= 0 {
				return nil, fmt.Errorf("line %d: quantity must be a positive number", i+1)
			}
		}

		widthFt, err := parseDimension(widths, i)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid width", i+1)
		}
		heightFt, err := parseDimension(heights, i)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid height", i+1)
		}

		unitPrice := product.BaseCostPerSqft
		if i < len(unitPrices) && strings.TrimSpace(unitPrices[i]) != "" {
			unitPrice, err = strconv.ParseFloat(unitPrices[i], 64)
			if err != nil || unitPrice <= 0 {
				return nil, fmt.Errorf("line %d: unit price must be a positive number", i+1)
			}
		}

		lines = append(lines, quotationLine{
			product:   product,
			quantity:  quantity,
			widthFt:   widthFt,
			heightFt:  heightFt,
			unitPrice: unitPrice,
		})
	}
	return lines, nil
}

func parseDimension(values []string, i int) (float64, error) {
	if i >= len(values) || strings.TrimSpace(values[i]) == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(values[i], 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid dimension")
	}
	return v, nil
}

type quotationDetailData struct {
	Quotation store.Quotation
	Customer  store.Customer
	Items     []store.QuotationItemDetail
}

// Detail renders one quotation with its line items. Sales reps may only
// open their own quotations.
func (h *QuotationHandler) Detail(w http.ResponseWriter, r *http.Request) {
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
		slog.Warn("quotation access denied",
			"user_id", user.ID, "quotation_id", id, "owner_id", quotation.OwnerID)
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

	if err := h.renderer.Render(w, r, "app/quotation_detail", render.TemplateData{
		Title: quotation.Number,
		Data: quotationDetailData{
			Quotation: quotation,
			Customer:  customer,
			Items:     items,
		},
	}); err != nil {
		logAndInternalError(w, "render quotation detail", "error", err)
	}
}

// UpdateStatus handles the status change form on the detail page.
func (h *QuotationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	detailURL := fmt.Sprintf("%s/%d", RouteQuotations, id)
	if !parseFormOrRedirect(w, r, h.renderer, detailURL) {
		return
	}

	status := r.FormValue("status")
	if !model.IsValidStatus(status) {
		flashError(w, r, h.renderer, detailURL, "Unknown status")
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

	if err := h.queries.UpdateQuotationStatus(r.Context(), id, status); err != nil {
		logAndInternalError(w, "update quotation status", "error", err, "id", id)
		return
	}

	flashSuccess(w, r, h.renderer, detailURL, "Status updated to "+status)
}

// newQuotationNumber builds a reference like Q-3F2A1B9C.
func newQuotationNumber() string {
	id := uuid.New().String()
	return "Q-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
