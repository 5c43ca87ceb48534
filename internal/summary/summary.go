// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package summary produces customer-facing quotation summaries. It
// asks a hosted language model first and falls back to a deterministic
// template whenever the model is unconfigured, unreachable, or slow,
// so callers always get usable text.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// scopeSentence closes every generated and fallback summary.
const scopeSentence = "Scope includes supply and installation to Reliant Windows standards, " +
	"final site measurements prior to fabrication, and warranty-backed workmanship."

const defaultTimeout = 20 * time.Second

// QuoteItem is one quotation line as presented to the summarizer.
type QuoteItem struct {
	Name     string
	Category string
	Quantity int64
	WidthFt  float64
	HeightFt float64
}

// Config holds generator settings. The model path is enabled when an
// APIKey or a BaseURL is set; self-hosted endpoints typically need no
// key. With neither, every request uses the template fallback.
type Config struct {
	APIKey  string
	BaseURL string // override for self-hosted OpenAI-compatible endpoints
	Model   string
	Timeout time.Duration
}

// Generator generates quotation summaries.
type Generator struct {
	client  openai.Client
	model   string
	enabled bool
	timeout time.Duration
	printer *message.Printer
}

// New creates a Generator from config.
func New(cfg Config) *Generator {
	g := &Generator{
		model:   cfg.Model,
		enabled: cfg.APIKey != "" || cfg.BaseURL != "",
		timeout: cfg.Timeout,
		printer: message.NewPrinter(language.English),
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}

	if g.enabled {
		var opts []option.RequestOption
		if cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		g.client = openai.NewClient(opts...)
	}

	return g
}

// Enabled reports whether the model path is configured.
func (g *Generator) Enabled() bool {
	return g.enabled
}

// Generate returns a summary for the quotation. It never fails: any
// model error is logged and answered with the deterministic template,
// so the summary column can be kept non-null unconditionally.
func (g *Generator) Generate(ctx context.Context, customerName string, items []QuoteItem, totalAmount float64) string {
	if !g.enabled {
		return g.fallbackSummary(customerName, items, totalAmount)
	}

	text, err := g.summarize(ctx, customerName, items, totalAmount)
	if err != nil {
		slog.Warn("summary model unavailable, using template fallback",
			"model", g.model,
			"error", err,
		)
		return g.fallbackSummary(customerName, items, totalAmount)
	}
	return text
}

func (g *Generator) summarize(ctx context.Context, customerName string, items []QuoteItem, totalAmount float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	src := g.buildSourceText(customerName, items, totalAmount)
	// T5-style models expect a task prefix on the input.
	if strings.Contains(strings.ToLower(g.model), "t5") {
		src = "summarize: " + src
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You summarize window and door quotations for customers. " +
				"Write one short paragraph, plain language, no bullet points."),
			openai.UserMessage(src),
		},
		MaxTokens:   openai.Int(200),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("empty summary returned")
	}
	return out, nil
}

// buildSourceText flattens the quotation into the text the model
// summarizes: customer, total, numbered item lines, scope sentence.
func (g *Generator) buildSourceText(customerName string, items []QuoteItem, totalAmount float64) string {
	lines := []string{
		fmt.Sprintf("Customer: %s.", customerName),
		g.printer.Sprintf("Total quoted amount: $%.2f.", totalAmount),
		"Items:",
	}
	for i, it := range items {
		name := it.Name
		if name == "" {
			name = "Item"
		}
		cat := it.Category
		if cat == "" {
			cat = "General"
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		dims := "N/A"
		if it.WidthFt > 0 && it.HeightFt > 0 {
			dims = fmt.Sprintf("%.2fft x %.2fft", it.WidthFt, it.HeightFt)
		}
		lines = append(lines, fmt.Sprintf("- %d. %s (%s), Qty: %d, Size: %s", i+1, name, cat, qty, dims))
	}
	lines = append(lines, scopeSentence)
	return strings.Join(lines, " ")
}

// fallbackSummary renders the deterministic template: same inputs,
// same text, every time.
func (g *Generator) fallbackSummary(customerName string, items []QuoteItem, totalAmount float64) string {
	seen := make(map[string]struct{})
	var names []string
	for _, it := range items {
		n := it.Name
		if n == "" {
			n = "product"
		}
		if _, ok := seen[n]; !ok {
			names = append(names, n)
			seen[n] = struct{}{}
		}
	}

	nameStr := "the specified products"
	if len(names) > 0 {
		if len(names) > 6 {
			nameStr = strings.Join(names[:6], ", ") + "..."
		} else {
			nameStr = strings.Join(names, ", ")
		}
	}

	return fmt.Sprintf(
		"This quotation for %s covers supply and installation of %d item type(s) (%s) "+
			"with a total value of %s. The scope includes site verification, fabrication to "+
			"final measurements, and installation aligned with Reliant Windows standards.",
		customerName, len(items), nameStr, g.printer.Sprintf("$%.2f", totalAmount),
	)
}
