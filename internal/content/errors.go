// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"errors"

	"localgame/internal/access"
)

var (
	// ErrNotFound is returned when the item is absent from the collections
	// the transition looks in.
	ErrNotFound = errors.New("content not found")
	// ErrForbidden is returned when the caller does not own the item.
	ErrForbidden = access.ErrForbidden
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid input")
	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries a message safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid returns a *ValidationError with msg.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}
