// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the records persisted in the data directory and
// the core types used throughout the application.
package models

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a registered account. The Folder token names the user's
// private directory under data/users and is never shown to other users.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	PasswordHash  string `json:"password_hash"`
	Role          Role   `json:"role"`
	Folder        string `json:"folder"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at"`
	LastLogin     string `json:"last_login"`
	IsActive      bool   `json:"is_active"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword reports whether the account can log in with a password.
// The admin account never has one and must use emailed codes.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// PublicUser is the subset of User returned by the API.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Public strips private fields for API responses.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

// Profile is written to each user's folder as profile.json.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Role          Role   `json:"role"`
	Folder        string `json:"folder"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at"`
	LastLogin     string `json:"last_login"`
	IsActive      bool   `json:"is_active"`
}

// VerificationCode is a six-digit code emailed for registration, login or
// password change.
type VerificationCode struct {
	Email     string `json:"email"`
	Code      string `json:"code"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
	Attempts  int    `json:"attempts"`
}

// ChatMessage is one guestbook entry.
type ChatMessage struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
