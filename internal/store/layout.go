// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// folderPattern matches the 32-hex folder tokens issued to users.
var folderPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ValidFolder reports whether s looks like an issued folder token.
func ValidFolder(s string) bool {
	return folderPattern.MatchString(s)
}

// Layout resolves paths inside the data directory.
type Layout struct {
	Root string
}

// SystemDir holds the shared collections: users, codes and notices.
func (l Layout) SystemDir() string { return filepath.Join(l.Root, "system") }

// UsersDir holds one folder per user.
func (l Layout) UsersDir() string { return filepath.Join(l.Root, "users") }

// ChatDir holds the guestbook.
func (l Layout) ChatDir() string { return filepath.Join(l.Root, "chat") }

// UsersFile is the user directory collection (key "users").
func (l Layout) UsersFile() string { return filepath.Join(l.SystemDir(), "users.json") }

// PendingFile holds the registration codes waiting to be confirmed.
func (l Layout) PendingFile() string {
	return filepath.Join(l.SystemDir(), "pending_registrations.json")
}

// LoginCodesFile holds the emailed login codes.
func (l Layout) LoginCodesFile() string { return filepath.Join(l.SystemDir(), "login_codes.json") }

// ChatFile is the guestbook collection (key "messages").
func (l Layout) ChatFile() string { return filepath.Join(l.ChatDir(), "messages.json") }

// NoticeDrafts returns the drafts collection of a notice kind
// ("announcement" or "bulletin").
func (l Layout) NoticeDrafts(kind string) string {
	return filepath.Join(l.SystemDir(), kind+"_drafts.json")
}

// NoticePublished returns the published collection of a notice kind.
func (l Layout) NoticePublished(kind string) string {
	return filepath.Join(l.SystemDir(), kind+"_published.json")
}

// UserDir returns the private folder of one user.
func (l Layout) UserDir(folder string) string { return filepath.Join(l.UsersDir(), folder) }

// DraftGames returns the collection of a user's draft games, including
// the draft mirrors of published ones.
func (l Layout) DraftGames(folder string) string {
	return filepath.Join(l.UserDir(folder), "drafts", "game.json")
}

// PublishedGames returns the collection of a user's live games.
func (l Layout) PublishedGames(folder string) string {
	return filepath.Join(l.UserDir(folder), "published", "game.json")
}

// GamesDir holds a user's uploaded game pages, served under /media/games.
func (l Layout) GamesDir(folder string) string { return filepath.Join(l.UserDir(folder), "games") }

// ImagesDir holds a user's thumbnails, served under /media/images.
func (l Layout) ImagesDir(folder string) string { return filepath.Join(l.UserDir(folder), "images") }

// ProfileFile is the per-user copy of the user's public profile.
func (l Layout) ProfileFile(folder string) string {
	return filepath.Join(l.UserDir(folder), "profile.json")
}

// Init creates the top-level directories of the data root.
func (l Layout) Init() error {
	for _, dir := range []string{l.SystemDir(), l.UsersDir(), l.ChatDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Provision creates the folder tree of a new user with empty game
// collections.
func (l Layout) Provision(folder string) error {
	base := l.UserDir(folder)
	for _, sub := range []string{"drafts", "published", "games", "images"} {
		if err := os.MkdirAll(filepath.Join(base, sub), 0o755); err != nil {
			return fmt.Errorf("provision %s: %w", sub, err)
		}
	}
	empty, err := Marshal(map[string][]any{KeyPosts: {}})
	if err != nil {
		return err
	}
	for _, path := range []string{l.DraftGames(folder), l.PublishedGames(folder)} {
		if err := WriteFileAtomic(path, empty); err != nil {
			return err
		}
	}
	return nil
}

// Folders lists the user folders present on disk. A missing users
// directory yields no folders.
func (l Layout) Folders() ([]string, error) {
	entries, err := os.ReadDir(l.UsersDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list user folders: %w", err)
	}

	var folders []string
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	return folders, nil
}
