// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access holds the authenticated caller identity and the
// authorization predicates applied to content mutations.
package access

import (
	"errors"

	"localgame/internal/models"
)

var (
	// ErrUnauthorized means no authenticated caller was supplied.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the caller is authenticated but not allowed.
	ErrForbidden = errors.New("permission denied")
)

// Caller is the resolved identity of the user making a request.
type Caller struct {
	UserID   string
	Email    string
	Username string
	Folder   string
	Role     models.Role
}

// FromUser builds a Caller from a stored user.
func FromUser(u *models.User) *Caller {
	return &Caller{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Folder:   u.Folder,
		Role:     u.Role,
	}
}

// IsAdmin returns true if the caller holds the admin role.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == models.RoleAdmin
}

// Owns reports whether the caller is the owner identified by userID.
func (c *Caller) Owns(userID string) bool {
	return c != nil && c.UserID != "" && c.UserID == userID
}

// RequireCaller fails with ErrUnauthorized when c is nil.
func RequireCaller(c *Caller) error {
	if c == nil {
		return ErrUnauthorized
	}
	return nil
}

// RequireOwner fails closed unless c owns the item authored by ownerID.
func RequireOwner(c *Caller, ownerID string) error {
	if c == nil {
		return ErrUnauthorized
	}
	if !c.Owns(ownerID) {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin fails unless c is the administrator.
func RequireAdmin(c *Caller) error {
	if c == nil {
		return ErrUnauthorized
	}
	if !c.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
