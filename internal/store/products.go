// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

// Product is a window or door model in the catalog.
type Product struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	BaseCostPerSqft float64 `json:"base_cost_per_sqft"`
}

const productColumns = `id, name, description, category, base_cost_per_sqft`

func scanProduct(row *sql.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.BaseCostPerSqft)
	return p, err
}

// GetProductByID returns a product by primary key.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// ListProducts returns the full catalog ordered by category then name.
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.BaseCostPerSqft); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProductCategories returns the distinct product categories in
// alphabetical order.
func (q *Queries) ListProductCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateProductParams holds parameters for CreateProduct.
type CreateProductParams struct {
	Name            string
	Description     string
	Category        string
	BaseCostPerSqft float64
}

// CreateProduct inserts a catalog entry and returns the created row.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO products (name, description, category, base_cost_per_sqft)
		 VALUES (?, ?, ?, ?)`,
		arg.Name, arg.Description, arg.Category, arg.BaseCostPerSqft)
	if err != nil {
		return Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Product{}, err
	}
	return q.GetProductByID(ctx, id)
}
