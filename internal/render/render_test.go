// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<html><body>{{template "content" .}}</body></html>{{end}}`)},
		"layouts/app.html": {Data: []byte(
			`{{define "nav"}}<nav>Reliant Windows</nav>{{end}}`)},
		"auth/login.html": {Data: []byte(
			`{{define "content"}}<h1>{{.Title}}</h1>{{end}}`)},
		"app/dashboard.html": {Data: []byte(
			`{{define "content"}}{{template "nav" .}}<p>{{money .Data}}</p>{{end}}`)},
	}
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Config{TemplatesFS: testTemplatesFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRender(t *testing.T) {
	r := testRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()

	err := r.Render(rr, req, "auth/login", TemplateData{Title: "Sign In"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.Contains(rr.Body.String(), "<h1>Sign In</h1>") {
		t.Errorf("body = %q, want rendered title", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := testRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	if err := r.Render(rr, req, "app/missing", TemplateData{}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRender_MoneyFunc(t *testing.T) {
	r := testRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	err := r.Render(rr, req, "app/dashboard", TemplateData{Data: 12345.5})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rr.Body.String(), "$12,345.50") {
		t.Errorf("body = %q, want formatted dollar amount", rr.Body.String())
	}
}

func TestMoney(t *testing.T) {
	r := testRenderer(t)

	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1250.5, "$1,250.50"},
		{999999.99, "$999,999.99"},
	}
	for _, tt := range tests {
		if got := r.Money(tt.in); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkdownFuncSanitizes(t *testing.T) {
	r := testRenderer(t)

	fn, ok := r.templateFuncs()["markdown"].(func(string) (template.HTML, error))
	if !ok {
		t.Fatal("markdown func has unexpected signature")
	}

	out, err := fn("**bold** <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("output = %q, want rendered bold text", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("output = %q, script tag should be stripped", html)
	}
}
