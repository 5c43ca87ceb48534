// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event log levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event log categories.
const (
	EventCategoryAuth      = "auth"
	EventCategoryCustomer  = "customer"
	EventCategoryQuotation = "quotation"
	EventCategoryPricing   = "pricing"
	EventCategorySystem    = "system"
)
