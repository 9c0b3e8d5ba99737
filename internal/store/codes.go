// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"localgame/internal/models"
)

const (
	// CodeTTL is how long an emailed code stays valid.
	CodeTTL = 5 * time.Minute
	// MaxCodeAttempts is the number of wrong guesses allowed per code.
	MaxCodeAttempts = 3
)

// CodeStore keeps at most one pending verification code per email.
type CodeStore struct {
	codes *Collection[models.VerificationCode]
	now   func() time.Time
}

// NewCodeStore creates a CodeStore for the collection at path.
func NewCodeStore(path, key string) *CodeStore {
	return &CodeStore{
		codes: NewCollection[models.VerificationCode](path, key),
		now:   time.Now,
	}
}

// Issue stores code for email, replacing any earlier one.
func (s *CodeStore) Issue(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	now := s.now()
	err := s.codes.Update(ctx, func(codes []models.VerificationCode) ([]models.VerificationCode, error) {
		kept := codes[:0]
		for _, c := range codes {
			if normalizeEmail(c.Email) != email {
				kept = append(kept, c)
			}
		}
		return append(kept, models.VerificationCode{
			Email:     email,
			Code:      code,
			CreatedAt: models.FormatTime(now),
			ExpiresAt: models.FormatTime(now.Add(CodeTTL)),
		}), nil
	})
	if err != nil {
		return fmt.Errorf("issue code: %w", err)
	}
	return nil
}

// Verify checks code for email. A match consumes the code; a miss counts
// as an attempt. Expired codes and codes with too many attempts never
// match.
func (s *CodeStore) Verify(ctx context.Context, email, code string) (bool, error) {
	email = normalizeEmail(email)
	now := s.now()
	ok := false
	err := s.codes.Update(ctx, func(codes []models.VerificationCode) ([]models.VerificationCode, error) {
		for i := range codes {
			c := &codes[i]
			if normalizeEmail(c.Email) != email {
				continue
			}
			if expired(c, now) || c.Attempts >= MaxCodeAttempts {
				return codes, nil
			}
			if subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) == 1 {
				ok = true
				return append(codes[:i], codes[i+1:]...), nil
			}
			c.Attempts++
			return codes, nil
		}
		return codes, nil
	})
	if err != nil {
		return false, fmt.Errorf("verify code: %w", err)
	}
	return ok, nil
}

// PurgeExpired drops expired codes and returns how many were removed.
func (s *CodeStore) PurgeExpired(ctx context.Context) (int, error) {
	now := s.now()
	removed := 0
	err := s.codes.Update(ctx, func(codes []models.VerificationCode) ([]models.VerificationCode, error) {
		kept := codes[:0]
		for _, c := range codes {
			if expired(&c, now) {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		return kept, nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge codes: %w", err)
	}
	return removed, nil
}

func expired(c *models.VerificationCode, now time.Time) bool {
	at, err := models.ParseTime(c.ExpiresAt)
	if err != nil {
		return true
	}
	return at.Before(now)
}
