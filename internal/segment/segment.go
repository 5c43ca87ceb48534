// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package segment clusters customers by quotation activity into a
// small set of named segments for the manager report.
package segment

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// inactiveDays stands in for "never quoted" recency so dormant
// customers land far from active ones.
const inactiveDays = 10000

// Row is one customer with its computed segment.
type Row struct {
	CustomerID    int64   `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	Segment       string  `json:"segment"`
	TotalQuotes   int64   `json:"total_quotes"`
	TotalValue    float64 `json:"total_value"`
	AvgValue      float64 `json:"avg_value"`
	DaysSinceLast int     `json:"days_since_last"`
}

// Compute builds per-customer activity features, clusters them with
// k-means (k capped at the customer count), and attaches friendly
// segment labels. Returns nil when there are no customers.
func Compute(ctx context.Context, q *store.Queries, k int) ([]Row, error) {
	activity, err := q.ListCustomerActivity(ctx)
	if err != nil {
		return nil, err
	}
	if len(activity) == 0 {
		return nil, nil
	}

	rows := make([]Row, len(activity))
	features := make([][]float64, len(activity))
	for i, a := range activity {
		days := int(a.DaysSinceLast)
		if a.DaysSinceLast < 0 {
			days = inactiveDays
		}
		rows[i] = Row{
			CustomerID:    a.CustomerID,
			CustomerName:  a.CustomerName,
			TotalQuotes:   a.TotalQuotes,
			TotalValue:    math.Round(a.TotalValue*100) / 100,
			AvgValue:      math.Round(a.AvgValue*100) / 100,
			DaysSinceLast: days,
		}
		features[i] = []float64{
			float64(a.TotalQuotes),
			a.TotalValue,
			a.AvgValue,
			float64(days),
		}
	}

	standardize(features)

	if k > len(rows) {
		k = len(rows)
	}
	if k < 1 {
		k = 1
	}
	clusters := kmeans(features, k)

	labels := labelClusters(rows, clusters, k)
	for i := range rows {
		rows[i].Segment = labels[clusters[i]]
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Segment != rows[j].Segment {
			return rows[i].Segment < rows[j].Segment
		}
		return rows[i].TotalValue > rows[j].TotalValue
	})
	return rows, nil
}

// standardize scales each feature column to zero mean and unit
// variance in place. Zero-variance columns are left centered.
func standardize(features [][]float64) {
	if len(features) == 0 {
		return
	}
	dims := len(features[0])
	n := float64(len(features))

	for d := 0; d < dims; d++ {
		var mean float64
		for _, f := range features {
			mean += f[d]
		}
		mean /= n

		var variance float64
		for _, f := range features {
			variance += (f[d] - mean) * (f[d] - mean)
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1
		}

		for _, f := range features {
			f[d] = (f[d] - mean) / std
		}
	}
}

// kmeans assigns each feature vector to one of k clusters. Several
// seeded restarts keep the result stable across runs.
func kmeans(features [][]float64, k int) []int {
	const (
		restarts = 10
		maxIters = 100
	)

	bestAssign := make([]int, len(features))
	bestInertia := math.Inf(1)
	rng := rand.New(rand.NewSource(42))

	for r := 0; r < restarts; r++ {
		assign, inertia := kmeansOnce(features, k, rng, maxIters)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestAssign, assign)
		}
	}
	return bestAssign
}

func kmeansOnce(features [][]float64, k int, rng *rand.Rand, maxIters int) ([]int, float64) {
	dims := len(features[0])

	// Initialize centroids from distinct random points.
	perm := rng.Perm(len(features))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), features[perm[i]]...)
	}

	assign := make([]int, len(features))
	for iter := 0; iter < maxIters; iter++ {
		changed := false
		for i, f := range features {
			best, bestDist := 0, math.Inf(1)
			for c, cent := range centroids {
				if d := floats.Distance(f, cent, 2); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; empty clusters keep their position.
		counts := make([]int, k)
		sums := make([][]float64, k)
		for i := range sums {
			sums[i] = make([]float64, dims)
		}
		for i, f := range features {
			counts[assign[i]]++
			floats.Add(sums[assign[i]], f)
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < dims; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	var inertia float64
	for i, f := range features {
		d := floats.Distance(f, centroids[assign[i]], 2)
		inertia += d * d
	}
	return assign, inertia
}

// labelClusters ranks clusters by mean value, frequency, and recency
// and maps them to friendly names, best first.
func labelClusters(rows []Row, clusters []int, k int) map[int]string {
	type stats struct {
		cluster int
		value   float64
		quotes  float64
		recency float64
		members int
	}

	agg := make([]stats, k)
	for i := range agg {
		agg[i].cluster = i
	}
	for i, r := range rows {
		c := clusters[i]
		agg[c].value += r.TotalValue
		agg[c].quotes += float64(r.TotalQuotes)
		agg[c].recency += float64(r.DaysSinceLast)
		agg[c].members++
	}
	var present []stats
	for _, a := range agg {
		if a.members == 0 {
			continue
		}
		a.value /= float64(a.members)
		a.quotes /= float64(a.members)
		a.recency /= float64(a.members)
		present = append(present, a)
	}

	// Weighted score: value dominates, then frequency, then recency.
	score := func(s stats) float64 {
		return s.value*0.6 + s.quotes*0.3 - s.recency*0.1
	}
	sort.Slice(present, func(i, j int) bool {
		return score(present[i]) > score(present[j])
	})

	baseLabels := []string{"High-Value Frequent", "Occasional", "Dormant/Low"}
	labels := make(map[int]string, len(present))
	for i, s := range present {
		if i < len(baseLabels) {
			labels[s.cluster] = baseLabels[i]
		} else {
			labels[s.cluster] = "Segment " + strconv.Itoa(i+1)
		}
	}
	return labels
}
