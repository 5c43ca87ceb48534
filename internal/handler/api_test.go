// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/predictor"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/summary"
)

func testAPIHandler(t *testing.T, db *sql.DB) (*APIHandler, *predictor.Service) {
	t.Helper()

	pred := predictor.NewService(db, filepath.Join(t.TempDir(), "price_model.json"))
	return NewAPIHandler(db, pred, summary.New(summary.Config{})), pred
}

func jsonRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestPredictPrice_ModelUnavailable(t *testing.T) {
	db := testDB(t)
	h, _ := testAPIHandler(t, db)

	product := createTestProduct(t, db, "Casement Model A", "Casement Window", 50)

	body := `{"items":[{"product_id":` + jsonInt(product.ID) + `,"width_ft":4,"height_ft":5,"quantity":1}]}`
	w := httptest.NewRecorder()
	h.PredictPrice(w, jsonRequest(http.MethodPost, RouteAPIPredictPrice, body))

	assertStatus(t, w.Code, http.StatusServiceUnavailable)
	resp := decodeResponse(t, w)
	if resp["ok"] != false {
		t.Errorf("ok = %v; want false", resp["ok"])
	}
}

func TestPredictPrice_AfterTraining(t *testing.T) {
	db := testDB(t)
	h, pred := testAPIHandler(t, db)

	if err := store.Seed(context.Background(), store.New(db), testHash); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := pred.Retrain(context.Background()); err != nil {
		t.Fatalf("retrain: %v", err)
	}

	products, err := store.New(db).ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}

	body := `{"items":[{"product_id":` + jsonInt(products[0].ID) + `,"width_ft":4,"height_ft":5,"quantity":2}]}`
	w := httptest.NewRecorder()
	h.PredictPrice(w, jsonRequest(http.MethodPost, RouteAPIPredictPrice, body))

	assertStatus(t, w.Code, http.StatusOK)
	resp := decodeResponse(t, w)
	total, ok := resp["suggested_total"].(float64)
	if !ok {
		t.Fatalf("response = %v; want suggested_total", resp)
	}
	if total < 0 {
		t.Errorf("suggested_total = %v; want non-negative", total)
	}
}

func TestPredictPrice_Validation(t *testing.T) {
	db := testDB(t)
	h, _ := testAPIHandler(t, db)

	tests := []struct {
		name string
		body string
	}{
		{"empty items", `{"items":[]}`},
		{"missing product", `{"items":[{"width_ft":4,"height_ft":5,"quantity":1}]}`},
		{"zero quantity", `{"items":[{"product_id":1,"width_ft":4,"height_ft":5,"quantity":0}]}`},
		{"negative width", `{"items":[{"product_id":1,"width_ft":-1,"height_ft":5,"quantity":1}]}`},
		{"malformed JSON", `{"items":`},
		{"unknown field", `{"items":[],"bogus":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.PredictPrice(w, jsonRequest(http.MethodPost, RouteAPIPredictPrice, tt.body))
			assertStatus(t, w.Code, http.StatusBadRequest)
		})
	}
}

func TestPredictPrice_UnknownProduct(t *testing.T) {
	db := testDB(t)
	h, pred := testAPIHandler(t, db)

	if err := store.Seed(context.Background(), store.New(db), testHash); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := pred.Retrain(context.Background()); err != nil {
		t.Fatalf("retrain: %v", err)
	}

	w := httptest.NewRecorder()
	h.PredictPrice(w, jsonRequest(http.MethodPost, RouteAPIPredictPrice,
		`{"items":[{"product_id":99999,"width_ft":4,"height_ft":5,"quantity":1}]}`))

	assertStatus(t, w.Code, http.StatusNotFound)
}

func setupSummaryQuotation(t *testing.T, db *sql.DB, owner store.User) store.Quotation {
	t.Helper()

	customer := createTestCustomer(t, db, "Acme Construction")
	product := createTestProduct(t, db, "Casement Model A", "Casement Window", 50)

	queries := store.New(db)
	quotation, err := queries.CreateQuotation(context.Background(), store.CreateQuotationParams{
		Number:     "Q-TEST0001",
		Title:      "Acme Replacement Quote",
		CustomerID: customer.ID,
		OwnerID:    owner.ID,
		Status:     model.StatusDraft,
	})
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if err := queries.CreateQuotationItem(context.Background(), store.CreateQuotationItemParams{
		QuotationID: quotation.ID,
		ProductID:   product.ID,
		Quantity:    2,
		WidthFt:     4,
		HeightFt:    5,
		UnitPrice:   50,
		LineTotal:   100,
	}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if err := queries.UpdateQuotationTotal(context.Background(), quotation.ID, 100); err != nil {
		t.Fatalf("update total: %v", err)
	}
	return quotation
}

func TestGenerateSummary_Owner(t *testing.T) {
	db := testDB(t)
	h, _ := testAPIHandler(t, db)

	sales := createTestUser(t, db, testUser{Email: "sales@reliant.com", Name: "Sales Rep", Role: model.RoleSales})
	quotation := setupSummaryQuotation(t, db, sales)

	body := `{"quotation_id":` + jsonInt(quotation.ID) + `}`
	r := requestWithUser(jsonRequest(http.MethodPost, RouteAPIGenerateSummary, body), sales)
	w := httptest.NewRecorder()
	h.GenerateSummary(w, r)

	assertStatus(t, w.Code, http.StatusOK)
	resp := decodeResponse(t, w)
	text, _ := resp["summary"].(string)
	if !strings.Contains(text, "Acme Construction") {
		t.Errorf("summary = %q; want customer name", text)
	}

	stored, err := store.New(db).GetQuotationByID(context.Background(), quotation.ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if !stored.AISummary.Valid || stored.AISummary.String != text {
		t.Errorf("stored summary = %+v; want %q", stored.AISummary, text)
	}
}

func TestGenerateSummary_OtherSalesRepForbidden(t *testing.T) {
	db := testDB(t)
	h, _ := testAPIHandler(t, db)

	owner := createTestUser(t, db, testUser{Email: "owner@reliant.com", Name: "Owner Rep", Role: model.RoleSales})
	other := createTestUser(t, db, testUser{Email: "other@reliant.com", Name: "Other Rep", Role: model.RoleSales})
	quotation := setupSummaryQuotation(t, db, owner)

	body := `{"quotation_id":` + jsonInt(quotation.ID) + `}`
	r := requestWithUser(jsonRequest(http.MethodPost, RouteAPIGenerateSummary, body), other)
	w := httptest.NewRecorder()
	h.GenerateSummary(w, r)

	assertStatus(t, w.Code, http.StatusForbidden)

	stored, err := store.New(db).GetQuotationByID(context.Background(), quotation.ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if stored.AISummary.Valid {
		t.Error("summary must not be written on a forbidden request")
	}
}

func TestGenerateSummary_ManagerCanRegenerate(t *testing.T) {
	db := testDB(t)
	h, _ := testAPIHandler(t, db)

	owner := createTestUser(t, db, testUser{Email: "owner@reliant.com", Name: "Owner Rep", Role: model.RoleSales})
	manager := createTestUser(t, db, testUser{Email: "manager@reliant.com", Name: "Manager", Role: model.RoleManager})
	quotation := setupSummaryQuotation(t, db, owner)

	body := `{"quotation_id":` + jsonInt(quotation.ID) + `}`
	r := requestWithUser(jsonRequest(http.MethodPost, RouteAPIGenerateSummary, body), manager)
	w := httptest.NewRecorder()
	h.GenerateSummary(w, r)

	assertStatus(t, w.Code, http.StatusOK)
}

func TestGenerateSummary_NotFound(t *testing.T) {
	db := testDB(t)
	h, _ := testAPIHandler(t, db)

	sales := createTestUser(t, db, testUser{Email: "sales@reliant.com", Name: "Sales Rep", Role: model.RoleSales})

	r := requestWithUser(jsonRequest(http.MethodPost, RouteAPIGenerateSummary, `{"quotation_id":9999}`), sales)
	w := httptest.NewRecorder()
	h.GenerateSummary(w, r)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestGenerateSummary_Unauthenticated(t *testing.T) {
	db := testDB(t)
	h, _ := testAPIHandler(t, db)

	w := httptest.NewRecorder()
	h.GenerateSummary(w, jsonRequest(http.MethodPost, RouteAPIGenerateSummary, `{"quotation_id":1}`))

	assertStatus(t, w.Code, http.StatusUnauthorized)
}
