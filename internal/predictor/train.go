// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package predictor

import (
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// ErrNoTrainingData is returned when the database holds no quotation
// items to fit against.
var ErrNoTrainingData = errors.New("predictor: no training data, seed the database first")

// damping keeps the normal equations invertible: the intercept column
// equals the sum of the one-hot columns, so the design matrix is
// rank-deficient by construction.
const damping = 1e-8

// Train fits a least-squares model on historical quotation lines.
func Train(rows []store.TrainingRow) (*Model, error) {
	if len(rows) == 0 {
		return nil, ErrNoTrainingData
	}

	catSet := make(map[string]struct{})
	for _, r := range rows {
		catSet[r.Category] = struct{}{}
	}
	categories := make([]string, 0, len(catSet))
	for c := range catSet {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	catIndex := make(map[string]int, len(categories))
	for i, c := range categories {
		catIndex[c] = i
	}

	// Columns: intercept, one-hot categories, area, quantity, base cost.
	n := len(rows)
	p := 1 + len(categories) + 3
	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)

	for i, r := range rows {
		a.Set(i, 0, 1)
		a.Set(i, 1+catIndex[r.Category], 1)
		a.Set(i, p-3, r.WidthFt*r.HeightFt)
		a.Set(i, p-2, float64(r.Quantity))
		a.Set(i, p-1, r.BaseCostPerSqft)
		b.SetVec(i, r.LineTotal)
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	for i := 0; i < p; i++ {
		ata.Set(i, i, ata.At(i, i)+damping)
	}
	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	var coef mat.VecDense
	if err := coef.SolveVec(&ata, &atb); err != nil {
		return nil, err
	}

	m := &Model{
		Categories:      categories,
		CategoryWeights: make([]float64, len(categories)),
		Intercept:       coef.AtVec(0),
		AreaWeight:      coef.AtVec(p - 3),
		QuantityWeight:  coef.AtVec(p - 2),
		BaseCostWeight:  coef.AtVec(p - 1),
		TrainedAt:       time.Now(),
		TrainingRows:    n,
	}
	for i := range categories {
		m.CategoryWeights[i] = coef.AtVec(1 + i)
	}

	var absErr float64
	for _, r := range rows {
		pred := m.predictLine(Item{
			Category:        r.Category,
			WidthFt:         r.WidthFt,
			HeightFt:        r.HeightFt,
			Quantity:        r.Quantity,
			BaseCostPerSqft: r.BaseCostPerSqft,
		})
		absErr += math.Abs(pred - r.LineTotal)
	}
	m.MAE = absErr / float64(n)

	slog.Info("trained price model",
		"rows", n,
		"categories", len(categories),
		"mae", m.MAE,
	)

	return m, nil
}
