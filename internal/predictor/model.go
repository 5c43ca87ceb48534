// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package predictor fits and serves the linear price suggestion model.
// The model predicts a line total per quotation item from the product
// category (one-hot encoded), glazed area, quantity, and the product's
// base cost per square foot. A quote-level suggestion is the sum of
// per-item predictions with negative lines clamped to zero.
package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
)

// Item is one quotation line presented for prediction.
type Item struct {
	Category        string
	WidthFt         float64
	HeightFt        float64
	Quantity        int64
	BaseCostPerSqft float64
}

// Model is a fitted linear regression over engineered item features.
// Categories and CategoryWeights are parallel slices; a category not
// seen during training contributes zero, matching a one-hot encoding
// that ignores unknown values.
type Model struct {
	Categories      []string  `json:"categories"`
	CategoryWeights []float64 `json:"category_weights"`
	AreaWeight      float64   `json:"area_weight"`
	QuantityWeight  float64   `json:"quantity_weight"`
	BaseCostWeight  float64   `json:"base_cost_weight"`
	Intercept       float64   `json:"intercept"`
	TrainedAt       time.Time `json:"trained_at"`
	TrainingRows    int       `json:"training_rows"`
	MAE             float64   `json:"mae"`
}

// predictLine returns the raw (unclamped) line total prediction.
func (m *Model) predictLine(it Item) float64 {
	y := m.Intercept
	for i, cat := range m.Categories {
		if cat == it.Category {
			y += m.CategoryWeights[i]
			break
		}
	}
	area := it.WidthFt * it.HeightFt
	y += area * m.AreaWeight
	y += float64(it.Quantity) * m.QuantityWeight
	y += it.BaseCostPerSqft * m.BaseCostWeight
	return y
}

// Predict returns the suggested total for a whole quote: per-line
// predictions clamped at zero, summed, and rounded to cents. An empty
// item list yields 0.
func (m *Model) Predict(items []Item) float64 {
	var total float64
	for _, it := range items {
		if y := m.predictLine(it); y > 0 {
			total += y
		}
	}
	return math.Round(total*100) / 100
}

// Save writes the model to path as JSON. The write goes through a
// temporary file and rename so concurrent readers never observe a
// partial model.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating model dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".price_model-*.json")
	if err != nil {
		return fmt.Errorf("creating temp model file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing model file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing model file: %w", err)
	}
	return nil
}

// Load reads a model from path. A missing or unreadable file reports
// model.ErrModelUnavailable so callers can degrade gracefully.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", model.ErrModelUnavailable, path, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", model.ErrModelUnavailable, path, err)
	}
	if len(m.Categories) != len(m.CategoryWeights) {
		return nil, fmt.Errorf("%w: %s has mismatched category weights", model.ErrModelUnavailable, path)
	}
	return &m, nil
}
