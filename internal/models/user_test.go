package models

import "testing"

// TestUserIsAdmin verifies that IsAdmin returns true only for the admin role.
func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "user role", role: RoleUser, want: false},
		{name: "empty role", role: Role(""), want: false},
		{name: "unknown role", role: Role("superadmin"), want: false},
		{name: "uppercase ADMIN", role: Role("ADMIN"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			got := u.IsAdmin()
			if got != tt.want {
				t.Errorf("User{Role: %q}.IsAdmin() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

// TestUserHasPassword verifies password detection for code-only accounts.
func TestUserHasPassword(t *testing.T) {
	if (&User{}).HasPassword() {
		t.Error("empty hash should report no password")
	}
	if !(&User{PasswordHash: "$2a$10$abc"}).HasPassword() {
		t.Error("non-empty hash should report a password")
	}
}

// TestUserPublic verifies that private fields are not exposed.
func TestUserPublic(t *testing.T) {
	u := &User{
		ID:           "007",
		Email:        "bond@example.com",
		Username:     "bond",
		PasswordHash: "secret",
		Role:         RoleUser,
		Folder:       "0123456789abcdef0123456789abcdef",
	}
	p := u.Public()
	want := PublicUser{ID: "007", Email: "bond@example.com", Username: "bond", Role: RoleUser}
	if p != want {
		t.Errorf("Public() = %+v, want %+v", p, want)
	}
}
