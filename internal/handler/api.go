// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/middleware"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/predictor"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/summary"
)

// APIHandler serves the JSON endpoints used by the quotation form.
type APIHandler struct {
	queries   *store.Queries
	predictor *predictor.Service
	summaries *summary.Generator
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(db *sql.DB, pred *predictor.Service, summaries *summary.Generator) *APIHandler {
	return &APIHandler{
		queries:   store.New(db),
		predictor: pred,
		summaries: summaries,
	}
}

type predictPriceRequest struct {
	Items []predictor.RequestItem `json:"items"`
}

// PredictPrice returns a suggested total for the posted line items.
func (h *APIHandler) PredictPrice(w http.ResponseWriter, r *http.Request) {
	var req predictPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	if len(req.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "items is required")
		return
	}
	for i, item := range req.Items {
		if err := item.Validate(); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("item %d: %s", i+1, err))
			return
		}
	}

	total, err := h.predictor.Predict(r.Context(), req.Items)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONSuccess(w, map[string]any{"suggested_total": total})
}

type generateSummaryRequest struct {
	QuotationID int64 `json:"quotation_id"`
}

// GenerateSummary regenerates and stores the summary for a quotation.
// Sales reps may only summarize their own quotations.
func (h *APIHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req generateSummaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if req.QuotationID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "quotation_id is required")
		return
	}

	quotation, err := h.queries.GetQuotationByID(r.Context(), req.QuotationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "quotation not found")
			return
		}
		slog.Error("get quotation", "error", err, "quotation_id", req.QuotationID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !model.CanViewQuotation(user.Role, user.ID, quotation.OwnerID) {
		slog.Warn("summary access denied",
			"user_id", user.ID, "quotation_id", quotation.ID, "owner_id", quotation.OwnerID)
		writeJSONError(w, http.StatusForbidden, "permission denied")
		return
	}

	customer, err := h.queries.GetCustomerByID(r.Context(), quotation.CustomerID)
	if err != nil {
		slog.Error("get quotation customer", "error", err, "quotation_id", quotation.ID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	details, err := h.queries.ListQuotationItems(r.Context(), quotation.ID)
	if err != nil {
		slog.Error("list quotation items", "error", err, "quotation_id", quotation.ID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]summary.QuoteItem, 0, len(details))
	for _, d := range details {
		items = append(items, summary.QuoteItem{
			Name:     d.ProductName,
			Category: d.ProductCategory,
			Quantity: d.Quantity,
			WidthFt:  d.WidthFt,
			HeightFt: d.HeightFt,
		})
	}

	text := h.summaries.Generate(r.Context(), customer.Name, items, quotation.TotalAmount)

	if err := h.queries.UpdateQuotationSummary(r.Context(), quotation.ID, text); err != nil {
		slog.Error("save quotation summary", "error", err, "quotation_id", quotation.ID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSONSuccess(w, map[string]any{"summary": text})
}
