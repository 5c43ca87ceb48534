// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/middleware"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// recentQuotationLimit caps the dashboard's recent activity list.
const recentQuotationLimit = 8

// DashboardHandler renders the landing page after login.
type DashboardHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *sql.DB, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

type dashboardData struct {
	CustomerCount  int
	QuotationCount int64
	ProductCount   int
	PipelineValue  float64
	Recent         []store.QuotationListRow
}

// Show renders the dashboard. Sales reps see only their own quotations;
// managers see the whole pipeline.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}

	ctx := r.Context()

	var ownerID int64
	if user.Role != model.RoleManager {
		ownerID = user.ID
	}

	quotationCount, err := h.queries.CountQuotations(ctx, ownerID)
	if err != nil {
		logAndInternalError(w, "count quotations", "error", err)
		return
	}

	var quotations []store.QuotationListRow
	if user.Role == model.RoleManager {
		quotations, err = h.queries.ListQuotations(ctx)
	} else {
		quotations, err = h.queries.ListQuotationsByOwner(ctx, user.ID)
	}
	if err != nil {
		logAndInternalError(w, "list quotations", "error", err)
		return
	}

	var pipeline float64
	for _, q := range quotations {
		pipeline += q.TotalAmount
	}
	recent := quotations
	if len(recent) > recentQuotationLimit {
		recent = recent[:recentQuotationLimit]
	}

	customers, err := h.queries.ListCustomers(ctx)
	if err != nil {
		logAndInternalError(w, "list customers", "error", err)
		return
	}

	products, err := h.queries.ListProducts(ctx)
	if err != nil {
		logAndInternalError(w, "list products", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "app/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data: dashboardData{
			CustomerCount:  len(customers),
			QuotationCount: quotationCount,
			ProductCount:   len(products),
			PipelineValue:  pipeline,
			Recent:         recent,
		},
	}); err != nil {
		logAndInternalError(w, "render dashboard", "error", err)
	}
}
