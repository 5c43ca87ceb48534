// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteDashboard is the dashboard route.
	RouteDashboard = "/dashboard"

	// RouteCustomers is the customers list route.
	RouteCustomers = "/customers"
	// RouteQuotations is the quotations list route.
	RouteQuotations = "/quotations"
	// RouteSegments is the customer segments report route.
	RouteSegments = "/segments"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit routes.
	RouteSuffixEdit = "/{id}/edit"
	// RouteSuffixPDF is the suffix for quotation PDF downloads.
	RouteSuffixPDF = "/{id}/pdf"

	// RouteAPIPredictPrice is the price suggestion API route.
	RouteAPIPredictPrice = "/api/predict_price"
	// RouteAPIGenerateSummary is the summary generation API route.
	RouteAPIGenerateSummary = "/api/generate_summary"

	// RouteExportQuotations is the spreadsheet export route.
	RouteExportQuotations = "/export/quotations.xlsx"
)
