// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "errors"

// Domain error kinds. Handlers translate these into HTTP status codes
// (400/404/403/503) and flash messages; everything else is a 500.
var (
	// ErrValidation indicates a bad or missing reference in a request.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates an unknown product or quotation id.
	ErrNotFound = errors.New("not found")

	// ErrPermission indicates a role or ownership violation.
	ErrPermission = errors.New("permission denied")

	// ErrModelUnavailable indicates the price model failed to load. Fatal at
	// startup unless degraded mode is allowed, in which case the predict
	// endpoint answers service-unavailable.
	ErrModelUnavailable = errors.New("price model unavailable")
)
