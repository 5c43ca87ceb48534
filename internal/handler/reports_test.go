// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

func TestDashboard_ManagerSeesEverything(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewDashboardHandler(db, testRenderer(t, sm))

	if err := store.Seed(context.Background(), store.New(db), testHash); err != nil {
		t.Fatalf("seed: %v", err)
	}
	manager, err := store.New(db).GetUserByEmail(context.Background(), "manager@reliant.com")
	if err != nil {
		t.Fatalf("get manager: %v", err)
	}

	r := requestWithUser(requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteDashboard, nil)), manager)
	w := httptest.NewRecorder()
	h.Show(w, r)

	assertStatus(t, w.Code, http.StatusOK)
}

func TestDashboard_Unauthenticated(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewDashboardHandler(db, testRenderer(t, sm))

	w := httptest.NewRecorder()
	h.Show(w, httptest.NewRequest(http.MethodGet, RouteDashboard, nil))

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != RouteLogin {
		t.Errorf("redirect = %q; want %q", loc, RouteLogin)
	}
}

func TestSegments_Show(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewSegmentHandler(db, testRenderer(t, sm))

	if err := store.Seed(context.Background(), store.New(db), testHash); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteSegments, nil))
	w := httptest.NewRecorder()
	h.Show(w, r)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "segments: 12") {
		t.Errorf("body = %q; want segment rows for all seeded customers", w.Body.String())
	}
}

func TestSegments_EmptyDatabase(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewSegmentHandler(db, testRenderer(t, sm))

	r := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteSegments, nil))
	w := httptest.NewRecorder()
	h.Show(w, r)

	assertStatus(t, w.Code, http.StatusOK)
}

func TestExportQuotations(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewExportHandler(db, testRenderer(t, sm))

	if err := store.Seed(context.Background(), store.New(db), testHash); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := httptest.NewRecorder()
	h.Quotations(w, httptest.NewRequest(http.MethodGet, RouteExportQuotations, nil))

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q; want xlsx", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected workbook bytes")
	}
	// xlsx files are zip archives.
	if body := w.Body.Bytes(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Error("expected a zip signature at the start of the workbook")
	}
}

func TestPDFQuotation(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPDFHandler(db, testRenderer(t, sm))

	sales := createTestUser(t, db, testUser{Email: "sales@reliant.com", Name: "Sales Rep", Role: model.RoleSales})
	quotation := setupSummaryQuotation(t, db, sales)
	id := strconv.FormatInt(quotation.ID, 10)

	r := httptest.NewRequest(http.MethodGet, "/quotations/"+id+"/pdf", nil)
	r = requestWithUser(requestWithURLParams(r, map[string]string{"id": id}), sales)
	w := httptest.NewRecorder()
	h.Quotation(w, r)

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q; want application/pdf", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Error("expected a PDF header")
	}
}

func TestPDFQuotation_OwnershipEnforced(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPDFHandler(db, testRenderer(t, sm))

	owner := createTestUser(t, db, testUser{Email: "owner@reliant.com", Name: "Owner Rep", Role: model.RoleSales})
	other := createTestUser(t, db, testUser{Email: "other@reliant.com", Name: "Other Rep", Role: model.RoleSales})
	quotation := setupSummaryQuotation(t, db, owner)
	id := strconv.FormatInt(quotation.ID, 10)

	r := httptest.NewRequest(http.MethodGet, "/quotations/"+id+"/pdf", nil)
	r = requestWithUser(requestWithURLParams(r, map[string]string{"id": id}), other)
	w := httptest.NewRecorder()
	h.Quotation(w, r)

	assertStatus(t, w.Code, http.StatusForbidden)
}
