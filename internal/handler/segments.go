// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/segment"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// segmentClusters is the number of customer segments reported.
const segmentClusters = 3

// SegmentHandler renders the customer segmentation report. The route is
// mounted behind the manager-only group.
type SegmentHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewSegmentHandler creates a new SegmentHandler.
func NewSegmentHandler(db *sql.DB, renderer *render.Renderer) *SegmentHandler {
	return &SegmentHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Show computes segments over all customers and renders the report.
func (h *SegmentHandler) Show(w http.ResponseWriter, r *http.Request) {
	rows, err := segment.Compute(r.Context(), h.queries, segmentClusters)
	if err != nil {
		logAndInternalError(w, "compute customer segments", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "app/segments", render.TemplateData{
		Title: "Customer Segments",
		Data:  rows,
	}); err != nil {
		logAndInternalError(w, "render segments", "error", err)
	}
}
