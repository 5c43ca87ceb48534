// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/middleware"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/model"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/render"
	"github.com/nagasriramnani/Reliant-Windows-ERP-CRM-Prototype/internal/store"
)

// CustomerHandler handles customer management routes. Listing and detail
// views are open to all authenticated users; create and edit are mounted
// behind the manager-only route group.
type CustomerHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(db *sql.DB, renderer *render.Renderer) *CustomerHandler {
	return &CustomerHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// List renders the customer list.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.queries.ListCustomers(r.Context())
	if err != nil {
		logAndInternalError(w, "list customers", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "app/customers", render.TemplateData{
		Title: "Customers",
		Data:  customers,
	}); err != nil {
		logAndInternalError(w, "render customers", "error", err)
	}
}

type customerDetailData struct {
	Customer   store.Customer
	Quotations []store.QuotationListRow
}

// Detail renders a single customer with its quotation history. Managers
// see every quotation for the customer; sales reps see only their own.
func (h *CustomerHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}

	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	customer, err := h.queries.GetCustomerByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "get customer", "error", err, "id", id)
		return
	}

	var quotations []store.QuotationListRow
	if user.Role == model.RoleManager {
		quotations, err = h.queries.ListQuotationsByCustomer(r.Context(), id)
	} else {
		quotations, err = h.queries.ListQuotationsByCustomerAndOwner(r.Context(), id, user.ID)
	}
	if err != nil {
		logAndInternalError(w, "list customer quotations", "error", err, "id", id)
		return
	}

	if err := h.renderer.Render(w, r, "app/customer_detail", render.TemplateData{
		Title: customer.Name,
		Data: customerDetailData{
			Customer:   customer,
			Quotations: quotations,
		},
	}); err != nil {
		logAndInternalError(w, "render customer detail", "error", err)
	}
}

// New renders the blank customer form.
func (h *CustomerHandler) New(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "app/customer_form", render.TemplateData{
		Title: "New Customer",
		Data:  store.Customer{},
	}); err != nil {
		logAndInternalError(w, "render customer form", "error", err)
	}
}

// Create handles the new-customer form submission.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteCustomers+RouteSuffixNew) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		flashError(w, r, h.renderer, RouteCustomers+RouteSuffixNew, "Customer name is required")
		return
	}

	customer, err := h.queries.CreateCustomer(r.Context(), store.CreateCustomerParams{
		Name:        name,
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		CompanyName: strings.TrimSpace(r.FormValue("company_name")),
		Address:     strings.TrimSpace(r.FormValue("address")),
	})
	if err != nil {
		logAndInternalError(w, "create customer", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteCustomers, "Customer "+customer.Name+" created")
}

// Edit renders the pre-filled customer form.
func (h *CustomerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	customer, err := h.queries.GetCustomerByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "get customer", "error", err, "id", id)
		return
	}

	if err := h.renderer.Render(w, r, "app/customer_form", render.TemplateData{
		Title: "Edit " + customer.Name,
		Data:  customer,
	}); err != nil {
		logAndInternalError(w, "render customer form", "error", err)
	}
}

// Update handles the edit-customer form submission.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, RouteCustomers) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		flashError(w, r, h.renderer, RouteCustomers, "Customer name is required")
		return
	}

	if _, err := h.queries.GetCustomerByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "get customer", "error", err, "id", id)
		return
	}

	if err := h.queries.UpdateCustomer(r.Context(), store.UpdateCustomerParams{
		ID:          id,
		Name:        name,
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		CompanyName: strings.TrimSpace(r.FormValue("company_name")),
		Address:     strings.TrimSpace(r.FormValue("address")),
	}); err != nil {
		logAndInternalError(w, "update customer", "error", err, "id", id)
		return
	}

	flashSuccess(w, r, h.renderer, RouteCustomers, "Customer updated")
}
