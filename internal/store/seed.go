// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
)

// Seed populates an empty database with demo users, customers, the
// product catalog, and historical quotations for model training. It is
// a no-op when users already exist.
func Seed(ctx context.Context, q *Queries, hashPassword func(string) (string, error)) error {
	n, err := q.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	managerHash, err := hashPassword("manager123")
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}
	salesHash, err := hashPassword("sales123")
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	manager, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "manager@reliant.com",
		PasswordHash: managerHash,
		Role:         "manager",
		Name:         "Manager",
	})
	if err != nil {
		return fmt.Errorf("seed: create manager: %w", err)
	}
	sales, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "sales@reliant.com",
		PasswordHash: salesHash,
		Role:         "sales",
		Name:         "Sales Rep",
	})
	if err != nil {
		return fmt.Errorf("seed: create sales: %w", err)
	}

	rng := rand.New(rand.NewSource(42)) // stable demo data across runs

	firstNames := []string{"Alice", "Bob", "Carol", "David", "Eve", "Frank",
		"Grace", "Hank", "Ivy", "Jack", "Karen", "Leo"}
	lastNames := []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller",
		"Davis", "Garcia", "Rodriguez", "Wilson", "Martinez", "Anderson"}
	companies := []string{"Homeowner", "Reliant Corp", "Window World", "Bright Homes"}

	var customers []Customer
	for i := 0; i < 12; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		c, err := q.CreateCustomer(ctx, CreateCustomerParams{
			Name:        first + " " + last,
			Email:       fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
			Phone:       fmt.Sprintf("+44 7%09d", rng.Intn(900000000)+100000000),
			CompanyName: companies[rng.Intn(len(companies))],
			Address:     fmt.Sprintf("%d High Street, Birmingham, UK", rng.Intn(200)+1),
		})
		if err != nil {
			return fmt.Errorf("seed: create customer: %w", err)
		}
		customers = append(customers, c)
	}

	categories := []string{
		"Double-Hung Window",
		"Casement Window",
		"Bay Window",
		"Picture Window",
		"Sliding Door",
		"French Door",
	}
	var products []Product
	for _, cat := range categories {
		for i := 0; i < 3; i++ {
			base := 20.0 + rng.Float64()*35.0
			p, err := q.CreateProduct(ctx, CreateProductParams{
				Name:            fmt.Sprintf("%s Model %c", cat, 'A'+i),
				Description:     fmt.Sprintf("High-efficiency %s with low-E glass and sturdy frame.", strings.ToLower(cat)),
				Category:        cat,
				BaseCostPerSqft: round2(base),
			})
			if err != nil {
				return fmt.Errorf("seed: create product: %w", err)
			}
			products = append(products, p)
		}
	}

	owners := []User{manager, sales}
	kinds := []string{"Replacement", "Installation", "Upgrade"}
	statuses := []string{model.StatusDraft, model.StatusSent, model.StatusAccepted}
	seq := 0

	for _, cust := range customers {
		quotes := 2 + rng.Intn(3)
		for j := 0; j < quotes; j++ {
			seq++
			owner := owners[rng.Intn(len(owners))]
			qt, err := q.CreateQuotation(ctx, CreateQuotationParams{
				Number:     fmt.Sprintf("Q-SEED-%04d", seq),
				Title:      fmt.Sprintf("%s - %s Quote", cust.Name, kinds[rng.Intn(len(kinds))]),
				CustomerID: cust.ID,
				OwnerID:    owner.ID,
				Status:     statuses[rng.Intn(len(statuses))],
			})
			if err != nil {
				return fmt.Errorf("seed: create quotation: %w", err)
			}

			var total float64
			items := 1 + rng.Intn(3)
			for k := 0; k < items; k++ {
				prod := products[rng.Intn(len(products))]
				quantity := int64(1 + rng.Intn(5))
				width := round2(2.0 + rng.Float64()*4.0)
				height := round2(2.0 + rng.Float64()*4.0)
				area := width * height
				if area < 1.0 {
					area = 1.0
				}
				unitPrice := round2(prod.BaseCostPerSqft * (1.5 + rng.Float64()))
				// Historical lines carry the area factor so the trained
				// model can recover the dimension coefficients.
				lineTotal := round2(unitPrice * float64(quantity) * area)
				if err := q.CreateQuotationItem(ctx, CreateQuotationItemParams{
					QuotationID: qt.ID,
					ProductID:   prod.ID,
					Quantity:    quantity,
					WidthFt:     width,
					HeightFt:    height,
					UnitPrice:   unitPrice,
					LineTotal:   lineTotal,
				}); err != nil {
					return fmt.Errorf("seed: create quotation item: %w", err)
				}
				total += lineTotal
			}
			if err := q.UpdateQuotationTotal(ctx, qt.ID, round2(total)); err != nil {
				return fmt.Errorf("seed: update quotation total: %w", err)
			}
		}
	}
	return nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
