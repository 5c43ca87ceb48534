// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Quotation statuses.
const (
	StatusDraft    = "Draft"
	StatusSent     = "Sent"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

// ValidStatuses contains all valid quotation statuses.
var ValidStatuses = []string{StatusDraft, StatusSent, StatusAccepted, StatusRejected}

// IsValidStatus reports whether status is a known quotation status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
