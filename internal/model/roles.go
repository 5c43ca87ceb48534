// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain-level types shared across the application:
// user roles, permission checks, and the error kinds surfaced by the
// store and handlers.
package model

// User roles. Roles are a plain two-variant tag checked explicitly at each
// operation; there is no role hierarchy.
const (
	RoleManager = "manager"
	RoleSales   = "sales"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleManager, RoleSales}

// IsValidRole reports whether role is a known user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if role == r {
			return true
		}
	}
	return false
}

// CanViewQuotation reports whether a user may read or act on a quotation.
// Managers see every quotation; sales users only their own.
func CanViewQuotation(role string, userID, ownerID int64) bool {
	if role == RoleManager {
		return true
	}
	return userID == ownerID
}
