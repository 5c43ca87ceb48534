// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Customer represents a CRM customer record.
type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CompanyName string    `json:"company_name"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
}

const customerColumns = `id, name, email, phone, company_name, address, created_at`

func scanCustomer(row *sql.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CompanyName, &c.Address, &c.CreatedAt)
	return c, err
}

// GetCustomerByID returns a customer by primary key.
func (q *Queries) GetCustomerByID(ctx context.Context, id int64) (Customer, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	return scanCustomer(row)
}

// ListCustomers returns all customers, newest first.
func (q *Queries) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone,
			&c.CompanyName, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ListCustomersByName returns all customers ordered alphabetically, for
// selection lists.
func (q *Queries) ListCustomersByName(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone,
			&c.CompanyName, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CreateCustomerParams holds parameters for CreateCustomer.
type CreateCustomerParams struct {
	Name        string
	Email       string
	Phone       string
	CompanyName string
	Address     string
}

// CreateCustomer inserts a new customer and returns the created row.
func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO customers (name, email, phone, company_name, address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Email, arg.Phone, arg.CompanyName, arg.Address, time.Now())
	if err != nil {
		return Customer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Customer{}, err
	}
	return q.GetCustomerByID(ctx, id)
}

// UpdateCustomerParams holds parameters for UpdateCustomer.
type UpdateCustomerParams struct {
	ID          int64
	Name        string
	Email       string
	Phone       string
	CompanyName string
	Address     string
}

// UpdateCustomer updates an existing customer's contact fields.
func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, email = ?, phone = ?, company_name = ?, address = ?
		 WHERE id = ?`,
		arg.Name, arg.Email, arg.Phone, arg.CompanyName, arg.Address, arg.ID)
	return err
}

// CustomerActivity aggregates a customer's quotation history for the
// segmentation report.
type CustomerActivity struct {
	CustomerID    int64
	CustomerName  string
	TotalQuotes   int64
	TotalValue    float64
	AvgValue      float64
	DaysSinceLast float64 // -1 when the customer has no quotations
}

// ListCustomerActivity returns per-customer quotation aggregates.
// Customers with no quotations are included with zero counts. Recency
// is computed in Go from the scanned timestamp; the driver stores
// created_at in a text format sqlite's date functions cannot parse.
func (q *Queries) ListCustomerActivity(ctx context.Context) ([]CustomerActivity, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.name,
		       COUNT(qt.id),
		       COALESCE(SUM(qt.total_amount), 0),
		       COALESCE(AVG(qt.total_amount), 0),
		       MAX(qt.created_at)
		FROM customers c
		LEFT JOIN quotations qt ON qt.customer_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	now := time.Now()
	var activity []CustomerActivity
	for rows.Next() {
		var (
			a    CustomerActivity
			last sql.NullString
		)
		if err := rows.Scan(&a.CustomerID, &a.CustomerName, &a.TotalQuotes,
			&a.TotalValue, &a.AvgValue, &last); err != nil {
			return nil, err
		}
		a.DaysSinceLast = -1
		if last.Valid {
			t, err := time.Parse(time.RFC3339Nano, last.String)
			if err != nil {
				return nil, err
			}
			a.DaysSinceLast = now.Sub(t).Hours() / 24
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}
