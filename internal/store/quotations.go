// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Quotation is a priced offer for a customer, owned by the sales user
// who created it.
type Quotation struct {
	ID          int64          `json:"id"`
	Number      string         `json:"number"`
	Title       string         `json:"title"`
	CustomerID  int64          `json:"customer_id"`
	OwnerID     int64          `json:"owner_id"`
	Status      string         `json:"status"`
	TotalAmount float64        `json:"total_amount"`
	AISummary   sql.NullString `json:"ai_summary"`
	CreatedAt   time.Time      `json:"created_at"`
}

// QuotationItem is one line of a quotation.
type QuotationItem struct {
	ID          int64   `json:"id"`
	QuotationID int64   `json:"quotation_id"`
	ProductID   int64   `json:"product_id"`
	Quantity    int64   `json:"quantity"`
	WidthFt     float64 `json:"width_ft"`
	HeightFt    float64 `json:"height_ft"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// QuotationItemDetail is an item joined with its product for display
// and summary generation.
type QuotationItemDetail struct {
	QuotationItem
	ProductName     string `json:"product_name"`
	ProductCategory string `json:"product_category"`
}

// QuotationListRow is a quotation joined with customer and owner names
// for list views.
type QuotationListRow struct {
	Quotation
	CustomerName string `json:"customer_name"`
	OwnerName    string `json:"owner_name"`
}

const quotationColumns = `id, number, title, customer_id, owner_id, status, total_amount, ai_summary, created_at`

func scanQuotation(row *sql.Row) (Quotation, error) {
	var qt Quotation
	err := row.Scan(&qt.ID, &qt.Number, &qt.Title, &qt.CustomerID, &qt.OwnerID,
		&qt.Status, &qt.TotalAmount, &qt.AISummary, &qt.CreatedAt)
	return qt, err
}

// GetQuotationByID returns a quotation by primary key.
func (q *Queries) GetQuotationByID(ctx context.Context, id int64) (Quotation, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE id = ?`, id)
	return scanQuotation(row)
}

func scanQuotationListRows(rows *sql.Rows) ([]QuotationListRow, error) {
	defer func() { _ = rows.Close() }()

	var out []QuotationListRow
	for rows.Next() {
		var r QuotationListRow
		if err := rows.Scan(&r.ID, &r.Number, &r.Title, &r.CustomerID, &r.OwnerID,
			&r.Status, &r.TotalAmount, &r.AISummary, &r.CreatedAt,
			&r.CustomerName, &r.OwnerName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const quotationListQuery = `
	SELECT qt.id, qt.number, qt.title, qt.customer_id, qt.owner_id,
	       qt.status, qt.total_amount, qt.ai_summary, qt.created_at,
	       c.name, u.name
	FROM quotations qt
	JOIN customers c ON c.id = qt.customer_id
	JOIN users u ON u.id = qt.owner_id`

// ListQuotations returns every quotation, newest first. Manager view.
func (q *Queries) ListQuotations(ctx context.Context) ([]QuotationListRow, error) {
	rows, err := q.db.QueryContext(ctx,
		quotationListQuery+` ORDER BY qt.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanQuotationListRows(rows)
}

// ListQuotationsByOwner returns quotations owned by one user, newest
// first. Sales view.
func (q *Queries) ListQuotationsByOwner(ctx context.Context, ownerID int64) ([]QuotationListRow, error) {
	rows, err := q.db.QueryContext(ctx,
		quotationListQuery+` WHERE qt.owner_id = ? ORDER BY qt.created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return scanQuotationListRows(rows)
}

// ListQuotationsByCustomer returns a customer's quotations, newest first.
func (q *Queries) ListQuotationsByCustomer(ctx context.Context, customerID int64) ([]QuotationListRow, error) {
	rows, err := q.db.QueryContext(ctx,
		quotationListQuery+` WHERE qt.customer_id = ? ORDER BY qt.created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return scanQuotationListRows(rows)
}

// ListQuotationsByCustomerAndOwner returns one owner's quotations for a
// customer, newest first.
func (q *Queries) ListQuotationsByCustomerAndOwner(ctx context.Context, customerID, ownerID int64) ([]QuotationListRow, error) {
	rows, err := q.db.QueryContext(ctx,
		quotationListQuery+` WHERE qt.customer_id = ? AND qt.owner_id = ? ORDER BY qt.created_at DESC`,
		customerID, ownerID)
	if err != nil {
		return nil, err
	}
	return scanQuotationListRows(rows)
}

// ListQuotationItems returns a quotation's items joined with product
// name and category, in insertion order.
func (q *Queries) ListQuotationItems(ctx context.Context, quotationID int64) ([]QuotationItemDetail, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT qi.id, qi.quotation_id, qi.product_id, qi.quantity,
		       qi.width_ft, qi.height_ft, qi.unit_price, qi.line_total,
		       p.name, p.category
		FROM quotation_items qi
		JOIN products p ON p.id = qi.product_id
		WHERE qi.quotation_id = ?
		ORDER BY qi.id`, quotationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []QuotationItemDetail
	for rows.Next() {
		var it QuotationItemDetail
		if err := rows.Scan(&it.ID, &it.QuotationID, &it.ProductID, &it.Quantity,
			&it.WidthFt, &it.HeightFt, &it.UnitPrice, &it.LineTotal,
			&it.ProductName, &it.ProductCategory); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateQuotationParams holds parameters for CreateQuotation.
type CreateQuotationParams struct {
	Number     string
	Title      string
	CustomerID int64
	OwnerID    int64
	Status     string
}

// CreateQuotation inserts a quotation header with a zero total. Items
// and the total are added by the caller, normally inside InTx.
func (q *Queries) CreateQuotation(ctx context.Context, arg CreateQuotationParams) (Quotation, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO quotations (number, title, customer_id, owner_id, status, total_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		arg.Number, arg.Title, arg.CustomerID, arg.OwnerID, arg.Status, time.Now())
	if err != nil {
		return Quotation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Quotation{}, err
	}
	return q.GetQuotationByID(ctx, id)
}

// CreateQuotationItemParams holds parameters for CreateQuotationItem.
type CreateQuotationItemParams struct {
	QuotationID int64
	ProductID   int64
	Quantity    int64
	WidthFt     float64
	HeightFt    float64
	UnitPrice   float64
	LineTotal   float64
}

// CreateQuotationItem inserts one quotation line.
func (q *Queries) CreateQuotationItem(ctx context.Context, arg CreateQuotationItemParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO quotation_items (quotation_id, product_id, quantity, width_ft, height_ft, unit_price, line_total)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.QuotationID, arg.ProductID, arg.Quantity, arg.WidthFt, arg.HeightFt,
		arg.UnitPrice, arg.LineTotal)
	return err
}

// UpdateQuotationTotal sets the quotation's total amount.
func (q *Queries) UpdateQuotationTotal(ctx context.Context, id int64, total float64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE quotations SET total_amount = ? WHERE id = ?`, total, id)
	return err
}

// UpdateQuotationStatus moves a quotation through its lifecycle.
func (q *Queries) UpdateQuotationStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE quotations SET status = ? WHERE id = ?`, status, id)
	return err
}

// UpdateQuotationSummary stores the generated summary text.
func (q *Queries) UpdateQuotationSummary(ctx context.Context, id int64, summary string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE quotations SET ai_summary = ? WHERE id = ?`, summary, id)
	return err
}

// CountQuotations returns the number of quotations, optionally scoped
// to one owner. ownerID zero means all.
func (q *Queries) CountQuotations(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	var err error
	if ownerID == 0 {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotations`).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM quotations WHERE owner_id = ?`, ownerID).Scan(&n)
	}
	return n, err
}

// TrainingRow is one historical quotation line with its product
// attributes, used to fit the price model.
type TrainingRow struct {
	Quantity        int64
	WidthFt         float64
	HeightFt        float64
	LineTotal       float64
	Category        string
	BaseCostPerSqft float64
}

// ListTrainingRows returns every quotation item joined with its
// product, for model training.
func (q *Queries) ListTrainingRows(ctx context.Context) ([]TrainingRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT qi.quantity, qi.width_ft, qi.height_ft, qi.line_total,
		       p.category, p.base_cost_per_sqft
		FROM quotation_items qi
		JOIN products p ON p.id = qi.product_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []TrainingRow
	for rows.Next() {
		var r TrainingRow
		if err := rows.Scan(&r.Quantity, &r.WidthFt, &r.HeightFt, &r.LineTotal,
			&r.Category, &r.BaseCostPerSqft); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
