// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"localgame/internal/models"
)

var (
	// ErrEmailTaken is returned by Create when the email is registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound is returned by mutations on an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrAdminPassword is returned when setting a password on the admin
	// account, which only logs in with emailed codes.
	ErrAdminPassword = errors.New("admin account cannot have a password")
)

// UserStore handles user records in users.json and the per-user folders.
type UserStore struct {
	layout     Layout
	users      *Collection[models.User]
	adminEmail string
	now        func() time.Time
}

// NewUserStore creates a UserStore rooted at layout. adminEmail decides
// which account is created with the admin role.
func NewUserStore(layout Layout, adminEmail string) *UserStore {
	return &UserStore{
		layout:     layout,
		users:      NewCollection[models.User](layout.UsersFile(), KeyUsers),
		adminEmail: normalizeEmail(adminEmail),
		now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdminEmail reports whether email is the configured administrator email.
func (s *UserStore) IsAdminEmail(email string) bool {
	return s.adminEmail != "" && normalizeEmail(email) == s.adminEmail
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	email = normalizeEmail(email)
	for i := range users {
		if normalizeEmail(users[i].Email) == email {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindByID retrieves a user by id. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// ResolveFolder returns the private folder token of a user.
func (s *UserStore) ResolveFolder(ctx context.Context, id string) (string, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	return u.Folder, nil
}

// List returns all users in creation order.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create registers a new user, provisions their folder and writes their
// profile. An empty password leaves the account code-only. An empty
// username gets a generated display name.
func (s *UserStore) Create(ctx context.Context, email, password, username string) (*models.User, error) {
	email = normalizeEmail(email)

	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}

	var created models.User
	err := s.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		maxID := 0
		for _, u := range users {
			if normalizeEmail(u.Email) == email {
				return nil, ErrEmailTaken
			}
			if n, err := strconv.Atoi(u.ID); err == nil && n > maxID {
				maxID = n
			}
		}

		id := fmt.Sprintf("%03d", maxID+1)
		if username == "" {
			username = "用户" + id
		}
		role := models.RoleUser
		if s.IsAdminEmail(email) {
			role = models.RoleAdmin
		}
		now := models.FormatTime(s.now())

		created = models.User{
			ID:            id,
			Email:         email,
			Username:      username,
			PasswordHash:  hash,
			Role:          role,
			Folder:        strings.ReplaceAll(uuid.NewString(), "-", ""),
			EmailVerified: true,
			CreatedAt:     now,
			LastLogin:     now,
			IsActive:      true,
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.layout.Provision(created.Folder); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.writeProfile(&created); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

func (s *UserStore) writeProfile(u *models.User) error {
	data, err := Marshal(models.Profile{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Role:          u.Role,
		Folder:        u.Folder,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastLogin:     u.LastLogin,
		IsActive:      u.IsActive,
	})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return WriteFileAtomic(s.layout.ProfileFile(u.Folder), data)
}

// modify applies fn to the user with id and saves the list.
func (s *UserStore) modify(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	var updated models.User
	err := s.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID == id {
				if err := fn(&users[i]); err != nil {
					return nil, err
				}
				updated = users[i]
				return users, nil
			}
		}
		return nil, ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// TouchLastLogin stamps the user's last login time.
func (s *UserStore) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.modify(ctx, id, func(u *models.User) error {
		u.LastLogin = models.FormatTime(s.now())
		return nil
	})
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// SetPassword replaces the password of the user with email. The admin
// account is refused.
func (s *UserStore) SetPassword(ctx context.Context, email, password string) error {
	if s.IsAdminEmail(email) {
		return ErrAdminPassword
	}
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.modify(ctx, u.ID, func(u *models.User) error {
		u.PasswordHash = string(hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// SetUsername changes the display name of a user.
func (s *UserStore) SetUsername(ctx context.Context, id, username string) (*models.User, error) {
	u, err := s.modify(ctx, id, func(u *models.User) error {
		u.Username = username
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set username: %w", err)
	}
	return u, nil
}

// Delete removes the user record and their whole folder tree. Deleting an
// unknown user is a no-op.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	var folder string
	err := s.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		kept := users[:0]
		for _, u := range users {
			if u.ID == id {
				folder = u.Folder
				continue
			}
			kept = append(kept, u)
		}
		return kept, nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if folder != "" && ValidFolder(folder) {
		if err := os.RemoveAll(s.layout.UserDir(folder)); err != nil {
			return fmt.Errorf("delete user folder: %w", err)
		}
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored
// hash. Accounts migrated from the legacy store carry a hex SHA-256 digest
// instead of a bcrypt hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	if user.PasswordHash == "" || password == "" {
		return false
	}
	if isLegacyDigest(user.PasswordHash) {
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(user.PasswordHash)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func isLegacyDigest(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
