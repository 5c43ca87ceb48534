// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/auth"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/middleware"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// testDB creates a migrated SQLite database in a temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// testSessionManager creates an in-memory session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer builds a Renderer with minimal templates so handlers can
// render without the full template tree.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	fsys := fstest.MapFS{
		"layouts/base.html":         {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
		"layouts/app.html":          {Data: []byte(``)},
		"app/dashboard.html":        {Data: []byte(`{{define "content"}}dashboard{{end}}`)},
		"app/customers.html":        {Data: []byte(`{{define "content"}}customers: {{len .Data}}{{end}}`)},
		"app/customer_form.html":    {Data: []byte(`{{define "content"}}customer form{{end}}`)},
		"app/customer_detail.html":  {Data: []byte(`{{define "content"}}{{.Data.Customer.Name}}{{range .Data.Quotations}} {{.Number}}{{end}}{{end}}`)},
		"app/quotations.html":       {Data: []byte(`{{define "content"}}quotations: {{len .Data}}{{end}}`)},
		"app/quotation_form.html":   {Data: []byte(`{{define "content"}}quotation form{{end}}`)},
		"app/quotation_detail.html": {Data: []byte(`{{define "content"}}{{.Data.Quotation.Number}}{{end}}`)},
		"app/segments.html":         {Data: []byte(`{{define "content"}}segments: {{len .Data}}{{end}}`)},
		"auth/login.html":           {Data: []byte(`{{define "content"}}login{{end}}`)},
	}

	r, err := render.New(render.Config{
		TemplatesFS:    fsys,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("failed to create test renderer: %v", err)
	}
	return r
}

// testUser describes a user to seed for a test.
type testUser struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// createTestUser creates a user row, hashing the given password.
func createTestUser(t *testing.T, db *sql.DB, user testUser) store.User {
	t.Helper()

	if user.Password == "" {
		user.Password = "password123"
	}
	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	created, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        user.Email,
		PasswordHash: hash,
		Role:         user.Role,
		Name:         user.Name,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return created
}

// createTestCustomer creates a customer row.
func createTestCustomer(t *testing.T, db *sql.DB, name string) store.Customer {
	t.Helper()

	customer, err := store.New(db).CreateCustomer(context.Background(), store.CreateCustomerParams{
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("failed to create test customer: %v", err)
	}
	return customer
}

// createTestProduct creates a product row.
func createTestProduct(t *testing.T, db *sql.DB, name, category string, baseCost float64) store.Product {
	t.Helper()

	product, err := store.New(db).CreateProduct(context.Background(), store.CreateProductParams{
		Name:            name,
		Category:        category,
		BaseCostPerSqft: baseCost,
	})
	if err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// requestWithUser attaches an authenticated user to the request context.
func requestWithUser(r *http.Request, user store.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUser, user)
	return r.WithContext(ctx)
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// testHash is a stand-in password hasher for seeding; the seeded demo
// accounts are never logged into by these tests.
func testHash(password string) (string, error) {
	return "test-hash:" + password, nil
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
