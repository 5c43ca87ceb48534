// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package predictor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// RequestItem is a prediction request line as submitted by the UI:
// a product reference plus dimensions and quantity. Product category
// and base cost are resolved from the catalog.
type RequestItem struct {
	ProductID int64   `json:"product_id"`
	WidthFt   float64 `json:"width_ft"`
	HeightFt  float64 `json:"height_ft"`
	Quantity  int64   `json:"quantity"`
}

// Validate checks a request line for out-of-range values.
func (it RequestItem) Validate() error {
	if it.ProductID <= 0 {
		return fmt.Errorf("%w: product_id is required", model.ErrValidation)
	}
	if it.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
	}
	if it.WidthFt < 0 || it.HeightFt < 0 {
		return fmt.Errorf("%w: dimensions must not be negative", model.ErrValidation)
	}
	return nil
}

// Service holds the current model and answers predictions against the
// product catalog. The model pointer is swapped wholesale on retrain,
// so readers never see a half-updated model.
type Service struct {
	queries   *store.Queries
	db        *sql.DB
	modelPath string

	mu    sync.RWMutex
	model *Model
}

// NewService creates a prediction service. The model is loaded lazily:
// call LoadModel or Retrain before serving predictions.
func NewService(db *sql.DB, modelPath string) *Service {
	return &Service{
		queries:   store.New(db),
		db:        db,
		modelPath: modelPath,
	}
}

// LoadModel reads the persisted model from disk into the service.
func (s *Service) LoadModel() error {
	m, err := Load(s.modelPath)
	if err != nil {
		return err
	}
	s.setModel(m)
	return nil
}

// Retrain fits a fresh model from the database, persists it, and swaps
// it in. The previous model keeps serving until the swap.
func (s *Service) Retrain(ctx context.Context) (*Model, error) {
	rows, err := s.queries.ListTrainingRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading training rows: %w", err)
	}

	m, err := Train(rows)
	if err != nil {
		return nil, err
	}

	if err := m.Save(s.modelPath); err != nil {
		return nil, fmt.Errorf("saving model: %w", err)
	}

	s.setModel(m)
	return m, nil
}

func (s *Service) setModel(m *Model) {
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
}

// Current returns the active model, or model.ErrModelUnavailable when
// none is loaded.
func (s *Service) Current() (*Model, error) {
	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()

	if m == nil {
		return nil, model.ErrModelUnavailable
	}
	return m, nil
}

// Ready reports whether a model is loaded.
func (s *Service) Ready() bool {
	_, err := s.Current()
	return err == nil
}

// Predict resolves each request line against the product catalog and
// returns the suggested quote total. An unknown product reports
// model.ErrNotFound; an absent model reports model.ErrModelUnavailable.
func (s *Service) Predict(ctx context.Context, items []RequestItem) (float64, error) {
	m, err := s.Current()
	if err != nil {
		return 0, err
	}

	if len(items) == 0 {
		return 0, nil
	}

	resolved := make([]Item, 0, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return 0, err
		}
		p, err := s.queries.GetProductByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, fmt.Errorf("%w: product %d", model.ErrNotFound, it.ProductID)
			}
			return 0, err
		}
		resolved = append(resolved, Item{
			Category:        p.Category,
			WidthFt:         it.WidthFt,
			HeightFt:        it.HeightFt,
			Quantity:        it.Quantity,
			BaseCostPerSqft: p.BaseCostPerSqft,
		})
	}

	return m.Predict(resolved), nil
}
