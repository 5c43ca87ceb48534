// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testItems() []QuoteItem {
	return []QuoteItem{
		{Name: "Casement Window Model A", Category: "Casement Window", Quantity: 2, WidthFt: 3.5, HeightFt: 4},
		{Name: "Sliding Door Model B", Category: "Sliding Door", Quantity: 1, WidthFt: 6, HeightFt: 6.5},
	}
}

func TestGenerate_DisabledUsesFallback(t *testing.T) {
	g := New(Config{}) // no API key

	got := g.Generate(context.Background(), "Alice Smith", testItems(), 2450.75)

	if !strings.Contains(got, "Alice Smith") {
		t.Errorf("summary %q missing customer name", got)
	}
	if !strings.Contains(got, "2 item type(s)") {
		t.Errorf("summary %q missing item count", got)
	}
	if !strings.Contains(got, "$2,450.75") {
		t.Errorf("summary %q missing formatted total", got)
	}
	if !strings.Contains(got, "Casement Window Model A, Sliding Door Model B") {
		t.Errorf("summary %q missing distinct product names", got)
	}
}

func TestGenerate_FallbackIsDeterministic(t *testing.T) {
	g := New(Config{})

	first := g.Generate(context.Background(), "Bob Jones", testItems(), 1000)
	second := g.Generate(context.Background(), "Bob Jones", testItems(), 1000)

	if first != second {
		t.Errorf("fallback not deterministic:\nfirst  = %q\nsecond = %q", first, second)
	}
}

func TestGenerate_FallbackTruncatesNames(t *testing.T) {
	g := New(Config{})

	var items []QuoteItem
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		items = append(items, QuoteItem{Name: n, Quantity: 1})
	}

	got := g.Generate(context.Background(), "Carol", items, 10)

	if !strings.Contains(got, "A, B, C, D, E, F...") {
		t.Errorf("summary %q should list first six names with ellipsis", got)
	}
	if !strings.Contains(got, "8 item type(s)") {
		t.Errorf("summary %q should count all items", got)
	}
}

func TestGenerate_FallbackEmptyItems(t *testing.T) {
	g := New(Config{})

	got := g.Generate(context.Background(), "Dana", nil, 0)

	if !strings.Contains(got, "the specified products") {
		t.Errorf("summary %q should use placeholder for empty item list", got)
	}
	if !strings.Contains(got, "0 item type(s)") {
		t.Errorf("summary %q should report zero items", got)
	}
}

func TestGenerate_KeylessBaseURLUsesModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Self-hosted summary."}}]
		}`))
	}))
	defer srv.Close()

	// Self-hosted endpoints are configured with a base URL and no key;
	// the model path must still be taken.
	g := New(Config{BaseURL: srv.URL, Model: "local-llm", Timeout: 2 * time.Second})

	if !g.Enabled() {
		t.Fatal("generator should be enabled with only a base URL")
	}
	got := g.Generate(context.Background(), "Hana", testItems(), 600)
	if got != "Self-hosted summary." {
		t.Errorf("Generate = %q, want model output", got)
	}
}

func TestGenerate_UsesModelResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "A short model summary."}}]
		}`))
	}))
	defer srv.Close()

	g := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"})

	got := g.Generate(context.Background(), "Eve", testItems(), 500)
	if got != "A short model summary." {
		t.Errorf("Generate = %q, want model output", got)
	}
}

func TestGenerate_T5ModelGetsTaskPrefix(t *testing.T) {
	var captured struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Prefixed summary."}}]
		}`))
	}))
	defer srv.Close()

	g := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "t5-small", Timeout: 2 * time.Second})

	got := g.Generate(context.Background(), "Helen", testItems(), 900)
	if got != "Prefixed summary." {
		t.Fatalf("Generate = %q, want model output", got)
	}

	var user string
	for _, m := range captured.Messages {
		if m.Role == "user" {
			user = m.Content
		}
	}
	if !strings.HasPrefix(user, "summarize: ") {
		t.Errorf("user message = %q, want the summarize task prefix", user)
	}
	if !strings.Contains(user, "Helen") {
		t.Errorf("user message = %q, want source text after the prefix", user)
	}
}

func TestGenerate_NonT5ModelHasNoTaskPrefix(t *testing.T) {
	var userMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			for _, m := range req.Messages {
				if m.Role == "user" {
					userMessage = m.Content
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Plain summary."}}]
		}`))
	}))
	defer srv.Close()

	g := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", Timeout: 2 * time.Second})

	if got := g.Generate(context.Background(), "Ivan", testItems(), 450); got != "Plain summary." {
		t.Fatalf("Generate = %q, want model output", got)
	}
	if strings.HasPrefix(userMessage, "summarize: ") {
		t.Errorf("user message = %q, must not carry the task prefix", userMessage)
	}
}

func TestGenerate_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", Timeout: 2 * time.Second})

	got := g.Generate(context.Background(), "Frank", testItems(), 750)

	if !strings.Contains(got, "This quotation for Frank") {
		t.Errorf("Generate = %q, want template fallback", got)
	}
}

func TestGenerate_EmptyChoicesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	g := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", Timeout: 2 * time.Second})

	got := g.Generate(context.Background(), "Grace", testItems(), 300)
	if !strings.Contains(got, "This quotation for Grace") {
		t.Errorf("Generate = %q, want template fallback", got)
	}
}

func TestBuildSourceText(t *testing.T) {
	g := New(Config{})

	src := g.buildSourceText("Hank Miller", testItems(), 2450.75)

	for _, want := range []string{
		"Customer: Hank Miller.",
		"Total quoted amount: $2,450.75.",
		"- 1. Casement Window Model A (Casement Window), Qty: 2, Size: 3.50ft x 4.00ft",
		"- 2. Sliding Door Model B (Sliding Door), Qty: 1, Size: 6.00ft x 6.50ft",
		"supply and installation to Reliant Windows standards",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("source text missing %q:\n%s", want, src)
		}
	}
}

func TestBuildSourceText_Defaults(t *testing.T) {
	g := New(Config{})

	src := g.buildSourceText("Ivy", []QuoteItem{{}}, 0)

	if !strings.Contains(src, "- 1. Item (General), Qty: 1, Size: N/A") {
		t.Errorf("source text should default missing fields:\n%s", src)
	}
}
