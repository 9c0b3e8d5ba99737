// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements the account flows: registration by emailed
// code, login by password or emailed code, password and display-name
// changes, and account deletion.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"unicode/utf8"

	"localgame/internal/access"
	"localgame/internal/models"
	"localgame/internal/session"
	"localgame/internal/store"
)

const (
	minPasswordLen = 8
	minUsernameLen = 2
	adminUsername  = "管理员"
)

// EmailLimiter throttles verification emails.
type EmailLimiter interface {
	Allow(ctx context.Context, email string) error
}

// CodeMailer delivers verification codes.
type CodeMailer interface {
	SendRegistrationCode(ctx context.Context, email, code string) error
	SendLoginCode(ctx context.Context, email, code string) error
}

// Result is a successful login or registration.
type Result struct {
	Token string
	User  *models.User
}

// Service runs the auth flows.
type Service struct {
	users         *store.UserStore
	registrations *store.CodeStore
	logins        *store.CodeStore
	sessions      *session.Store
	limiter       EmailLimiter
	mailer        CodeMailer
	newCode       func() (string, error)
}

// New wires the auth flows to their collaborators.
func New(users *store.UserStore, registrations, logins *store.CodeStore, sessions *session.Store, limiter EmailLimiter, mailer CodeMailer) *Service {
	return &Service{
		users:         users,
		registrations: registrations,
		logins:        logins,
		sessions:      sessions,
		limiter:       limiter,
		mailer:        mailer,
		newCode:       generateCode,
	}
}

// generateCode returns a random six-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *Service) issue(ctx context.Context, user *models.User) (*Result, error) {
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	token, err := s.sessions.Create(ctx, &session.Data{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, User: user}, nil
}

// SendRegistrationCode emails a registration code to an unregistered email.
func (s *Service) SendRegistrationCode(ctx context.Context, rawEmail string) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return s.sendCode(ctx, email, s.registrations, s.mailer.SendRegistrationCode)
}

func (s *Service) sendCode(ctx context.Context, email string, codes *store.CodeStore, send func(context.Context, string, string) error) error {
	if err := s.limiter.Allow(ctx, email); err != nil {
		return err
	}
	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := codes.Issue(ctx, email, code); err != nil {
		return err
	}
	if err := send(ctx, email, code); err != nil {
		return ErrSendFailed
	}
	return nil
}

// Register creates an account after checking the emailed code. The admin
// email registers without a password.
func (s *Service) Register(ctx context.Context, rawEmail, code, password, username string) (*Result, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	ok, err := s.registrations.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBadCode
	}

	if s.users.IsAdminEmail(email) {
		password = ""
	} else if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	user, err := s.users.Create(ctx, email, password, strings.TrimSpace(username))
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	return s.issue(ctx, user)
}

// LoginPassword logs in with email and password. The admin must use codes.
func (s *Service) LoginPassword(ctx context.Context, rawEmail, password string) (*Result, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if s.users.IsAdminEmail(email) {
		return nil, ErrAdminCodeOnly
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.users.CheckPassword(user, password) {
		return nil, ErrBadCredentials
	}
	if !user.IsActive {
		return nil, ErrDisabled
	}
	return s.issue(ctx, user)
}

// SendLoginCode emails a login code. Unregistered emails are refused
// except the admin email, whose account is created on first login.
func (s *Service) SendLoginCode(ctx context.Context, rawEmail string) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}
	if !s.users.IsAdminEmail(email) {
		user, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotRegistered
		}
	}
	return s.sendCode(ctx, email, s.logins, s.mailer.SendLoginCode)
}

// LoginCode logs in with an emailed code.
func (s *Service) LoginCode(ctx context.Context, rawEmail, code string) (*Result, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	ok, err := s.logins.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBadCode
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil && s.users.IsAdminEmail(email) {
		slog.Info("creating admin account on first login", "email", email)
		user, err = s.users.Create(ctx, email, "", adminUsername)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrNotRegistered
	}
	if !user.IsActive {
		return nil, ErrDisabled
	}
	return s.issue(ctx, user)
}

// ChangePassword sets a new password after checking a login code.
func (s *Service) ChangePassword(ctx context.Context, rawEmail, code, newPassword string) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}
	if s.users.IsAdminEmail(email) {
		return ErrAdminNoPassword
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotRegistered
	}
	ok, err := s.logins.Verify(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadCode
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}
	if err := s.users.SetPassword(ctx, email, newPassword); err != nil {
		if errors.Is(err, store.ErrAdminPassword) {
			return ErrAdminNoPassword
		}
		return err
	}
	slog.Info("password changed", "user_id", user.ID)
	return nil
}

// ChangeUsername updates the caller's display name.
func (s *Service) ChangeUsername(ctx context.Context, caller *access.Caller, username string) (*models.User, error) {
	if err := access.RequireCaller(caller); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameEmpty
	}
	if utf8.RuneCountInString(username) < minUsernameLen {
		return nil, ErrUsernameShort
	}
	return s.users.SetUsername(ctx, caller.UserID, username)
}

// DeleteAccount removes the caller's account and all their files.
func (s *Service) DeleteAccount(ctx context.Context, caller *access.Caller) error {
	if err := access.RequireCaller(caller); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, caller.UserID); err != nil {
		return err
	}
	slog.Info("account deleted", "user_id", caller.UserID)
	return nil
}

// Logout ends the session for token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// Resolve returns the active user behind token, or nil when the token is
// unknown, the user is gone or the account is disabled.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	data, err := s.sessions.Get(ctx, token)
	if err != nil || data == nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, data.UserID)
	if err != nil || user == nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}
