// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/summary"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/web"
)

func testQuotationHandler(t *testing.T) (*QuotationHandler, *store.Queries, *testFixtures) {
	t.Helper()

	db := testDB(t)
	sm := testSessionManager(t)
	h := NewQuotationHandler(db, testRenderer(t, sm), summary.New(summary.Config{}))

	f := &testFixtures{
		sm:       sm,
		manager:  createTestUser(t, db, testUser{Email: "manager@reliant.com", Name: "Manager", Role: model.RoleManager}),
		sales:    createTestUser(t, db, testUser{Email: "sales@reliant.com", Name: "Sales Rep", Role: model.RoleSales}),
		customer: createTestCustomer(t, db, "Acme Construction"),
		product:  createTestProduct(t, db, "Casement Model A", "Casement Window", 50),
	}
	return h, store.New(db), f
}

type testFixtures struct {
	sm       *scs.SessionManager
	manager  store.User
	sales    store.User
	customer store.Customer
	product  store.Product
}

func createQuotationForm(f *testFixtures, quantity int) url.Values {
	form := url.Values{}
	form.Set("title", "Acme Replacement Quote")
	form.Set("customer_id", strconv.FormatInt(f.customer.ID, 10))
	form.Add("product_id", strconv.FormatInt(f.product.ID, 10))
	form.Add("quantity", strconv.Itoa(quantity))
	form.Add("width_ft", "4")
	form.Add("height_ft", "5")
	return form
}

func postQuotation(t *testing.T, h *QuotationHandler, f *testFixtures, user store.User, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, RouteQuotations, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithUser(requestWithSession(f.sm, r), user)

	w := httptest.NewRecorder()
	h.Create(w, r)
	return w
}

func TestQuotationCreate_LineTotalIsQuantityTimesUnitPrice(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	// Unit price 65 overrides the base cost of 50; the stored line must
	// use the submitted price.
	form := createQuotationForm(f, 2)
	form.Add("unit_price", "65")
	w := postQuotation(t, h, f, f.sales, form)
	assertStatus(t, w.Code, http.StatusSeeOther)

	rows, err := queries.ListQuotations(context.Background())
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("quotations = %d; want 1", len(rows))
	}

	// Quantity 2 at 65: dimensions do not enter the stored price.
	if rows[0].TotalAmount != 130 {
		t.Errorf("total = %v; want 130", rows[0].TotalAmount)
	}

	items, err := queries.ListQuotationItems(context.Background(), rows[0].ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].LineTotal != 130 || items[0].UnitPrice != 65 {
		t.Errorf("items = %+v; want one line of 2 x 65 = 130", items)
	}
	if items[0].WidthFt != 4 || items[0].HeightFt != 5 {
		t.Errorf("dimensions = %v x %v; want 4 x 5", items[0].WidthFt, items[0].HeightFt)
	}
}

func TestQuotationCreate_UnitPriceDefaultsToBaseCost(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	w := postQuotation(t, h, f, f.sales, createQuotationForm(f, 2))
	assertStatus(t, w.Code, http.StatusSeeOther)

	rows, err := queries.ListQuotations(context.Background())
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("quotations = %d; want 1", len(rows))
	}
	if rows[0].TotalAmount != 100 {
		t.Errorf("total = %v; want 100 (2 x base cost 50)", rows[0].TotalAmount)
	}

	items, err := queries.ListQuotationItems(context.Background(), rows[0].ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].UnitPrice != 50 {
		t.Errorf("items = %+v; want unit price from base cost", items)
	}
}

func TestQuotationCreate_RejectsInvalidUnitPrice(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	for _, bad := range []string{"-10", "0", "free"} {
		form := createQuotationForm(f, 1)
		form.Add("unit_price", bad)
		w := postQuotation(t, h, f, f.sales, form)

		assertStatus(t, w.Code, http.StatusSeeOther)
		if loc := w.Header().Get("Location"); loc != RouteQuotations+RouteSuffixNew {
			t.Errorf("unit_price=%q: redirect = %q; want back to the form", bad, loc)
		}
	}

	rows, err := queries.ListQuotations(context.Background())
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("quotations = %d; want none created", len(rows))
	}
}

func TestQuotationCreate_AttachesSummary(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	w := postQuotation(t, h, f, f.sales, createQuotationForm(f, 2))
	assertStatus(t, w.Code, http.StatusSeeOther)

	rows, err := queries.ListQuotations(context.Background())
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("quotations = %d; want 1", len(rows))
	}

	// The generator falls back to the template when no API key is set,
	// so a summary is always present after creation.
	if !rows[0].AISummary.Valid || rows[0].AISummary.String == "" {
		t.Fatal("expected a summary on the new quotation")
	}
	if !strings.Contains(rows[0].AISummary.String, f.customer.Name) {
		t.Errorf("summary = %q; want customer name", rows[0].AISummary.String)
	}
	if !strings.Contains(rows[0].AISummary.String, "1 item type(s)") {
		t.Errorf("summary = %q; want item type count", rows[0].AISummary.String)
	}
}

func TestQuotationCreate_NumberFormat(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	w := postQuotation(t, h, f, f.sales, createQuotationForm(f, 1))
	assertStatus(t, w.Code, http.StatusSeeOther)

	rows, err := queries.ListQuotations(context.Background())
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	number := rows[0].Number
	if !strings.HasPrefix(number, "Q-") || len(number) != 10 {
		t.Errorf("number = %q; want Q- followed by 8 characters", number)
	}
	if rows[0].Status != model.StatusDraft {
		t.Errorf("status = %q; want %q", rows[0].Status, model.StatusDraft)
	}
}

func TestQuotationCreate_RequiresLines(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	form := url.Values{}
	form.Set("title", "Empty Quote")
	form.Set("customer_id", strconv.FormatInt(f.customer.ID, 10))

	w := postQuotation(t, h, f, f.sales, form)
	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != RouteQuotations+RouteSuffixNew {
		t.Errorf("redirect = %q; want back to the form", loc)
	}

	n, err := queries.CountQuotations(context.Background(), 0)
	if err != nil {
		t.Fatalf("count quotations: %v", err)
	}
	if n != 0 {
		t.Errorf("quotations = %d; want 0", n)
	}
}

func TestQuotationCreate_RejectsUnknownProduct(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	form := createQuotationForm(f, 1)
	form.Set("product_id", "9999")

	w := postQuotation(t, h, f, f.sales, form)
	assertStatus(t, w.Code, http.StatusSeeOther)

	n, err := queries.CountQuotations(context.Background(), 0)
	if err != nil {
		t.Fatalf("count quotations: %v", err)
	}
	if n != 0 {
		t.Errorf("quotations = %d; want 0", n)
	}
}

func TestQuotationNew_RendersCatalogMarkdown(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)

	// Use the real embedded templates so the catalog panel's markdown
	// rendering is exercised end to end.
	tmplFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("sub templates fs: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    tmplFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("create renderer: %v", err)
	}
	h := NewQuotationHandler(db, renderer, summary.New(summary.Config{}))

	sales := createTestUser(t, db, testUser{Email: "rep@reliant.com", Name: "Rep", Role: model.RoleSales})
	createTestCustomer(t, db, "Acme Construction")
	if _, err := store.New(db).CreateProduct(context.Background(), store.CreateProductParams{
		Name:            "Casement Model A",
		Description:     "Double-glazed with **argon fill** and a low-E coating.",
		Category:        "Casement Window",
		BaseCostPerSqft: 50,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, RouteQuotations+RouteSuffixNew, nil)
	r = requestWithUser(requestWithSession(sm, r), sales)
	w := httptest.NewRecorder()
	h.New(w, r)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "<strong>argon fill</strong>") {
		t.Errorf("body does not render the product description markdown")
	}
}

func TestQuotationList_ScopedByRole(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	w := postQuotation(t, h, f, f.sales, createQuotationForm(f, 1))
	assertStatus(t, w.Code, http.StatusSeeOther)

	// The manager sees the sales rep's quotation.
	r := requestWithUser(httptest.NewRequest(http.MethodGet, RouteQuotations, nil), f.manager)
	r = requestWithSession(f.sm, r)
	w = httptest.NewRecorder()
	h.List(w, r)
	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "quotations: 1") {
		t.Errorf("manager body = %q; want one quotation", w.Body.String())
	}

	// The manager's own scope query returns nothing.
	mine, err := queries.ListQuotationsByOwner(context.Background(), f.manager.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("manager-owned quotations = %d; want 0", len(mine))
	}
}

func TestQuotationDetail_OwnershipEnforced(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	w := postQuotation(t, h, f, f.sales, createQuotationForm(f, 1))
	assertStatus(t, w.Code, http.StatusSeeOther)

	rows, err := queries.ListQuotations(context.Background())
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	id := strconv.FormatInt(rows[0].ID, 10)

	otherSales := store.User{ID: f.sales.ID + 100, Role: model.RoleSales, Name: "Other Rep"}

	tests := []struct {
		name string
		user store.User
		want int
	}{
		{"owner", f.sales, http.StatusOK},
		{"manager", f.manager, http.StatusOK},
		{"other sales rep", otherSales, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/quotations/"+id, nil)
			r = requestWithUser(requestWithURLParams(requestWithSession(f.sm, r), map[string]string{"id": id}), tt.user)
			w := httptest.NewRecorder()
			h.Detail(w, r)
			assertStatus(t, w.Code, tt.want)
		})
	}
}

func TestQuotationUpdateStatus(t *testing.T) {
	h, queries, f := testQuotationHandler(t)

	w := postQuotation(t, h, f, f.sales, createQuotationForm(f, 1))
	assertStatus(t, w.Code, http.StatusSeeOther)

	rows, err := queries.ListQuotations(context.Background())
	if err != nil {
		t.Fatalf("list quotations: %v", err)
	}
	id := strconv.FormatInt(rows[0].ID, 10)

	form := url.Values{}
	form.Set("status", model.StatusSent)

	r := httptest.NewRequest(http.MethodPost, "/quotations/"+id+"/status", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithUser(requestWithURLParams(r, map[string]string{"id": id}), f.sales)
	r = requestWithSession(f.sm, r)

	w = httptest.NewRecorder()
	h.UpdateStatus(w, r)
	assertStatus(t, w.Code, http.StatusSeeOther)

	updated, err := queries.GetQuotationByID(context.Background(), rows[0].ID)
	if err != nil {
		t.Fatalf("get quotation: %v", err)
	}
	if updated.Status != model.StatusSent {
		t.Errorf("status = %q; want %q", updated.Status, model.StatusSent)
	}
}

func TestNewQuotationNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := newQuotationNumber()
		if !strings.HasPrefix(n, "Q-") || len(n) != 10 {
			t.Fatalf("number = %q; want Q- followed by 8 characters", n)
		}
		if n != strings.ToUpper(n) {
			t.Fatalf("number = %q; want uppercase", n)
		}
		if seen[n] {
			t.Fatalf("duplicate number %q", n)
		}
		seen[n] = true
	}
}
