// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContentStatus represents the publishing state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// TimeLayout is the on-disk timestamp format. Values compare correctly as
// plain strings, which the listing code relies on.
const TimeLayout = "2006-01-02T15:04:05.000000"

// FormatTime renders t in the on-disk timestamp format (local time, no zone).
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// ParseTime reads a timestamp written by FormatTime. Fractional seconds
// are optional so older files without them still parse.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
}

// Record is the lifecycle surface shared by every content kind. The
// draft/publish workflow only touches items through these methods.
type Record interface {
	RecordID() string
	RecordStatus() ContentStatus
	CreatedStamp() string
	PublishedStamp() string
	MarkPublished(at string)
	MarkDraft()
	Touch(at string)
}

// Game is an uploaded HTML game with a thumbnail, owned by one user.
// Field order matches the persisted JSON layout.
type Game struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Thumbnail   string        `json:"thumbnail"`
	GameFile    string        `json:"game_file"`
	AuthorID    string        `json:"author_id"`
	AuthorName  string        `json:"author_name"`
	Status      ContentStatus `json:"status"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
	PublishedAt *string       `json:"published_at"`
}

func (g *Game) RecordID() string            { return g.ID }
func (g *Game) RecordStatus() ContentStatus { return g.Status }
func (g *Game) CreatedStamp() string        { return g.CreatedAt }
func (g *Game) PublishedStamp() string      { return deref(g.PublishedAt) }
func (g *Game) Touch(at string)             { g.UpdatedAt = at }

func (g *Game) MarkPublished(at string) {
	g.Status = ContentStatusPublished
	g.PublishedAt = &at
}

func (g *Game) MarkDraft() {
	g.Status = ContentStatusDraft
	g.PublishedAt = nil
}

// IsPublished returns true if the game is in published status.
func (g *Game) IsPublished() bool {
	return g.Status == ContentStatusPublished
}

// Notice is an admin-authored text post. Announcements (popup) and
// bulletins (list page) share this record shape but live in separate
// collections.
type Notice struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Status      ContentStatus `json:"status"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
	PublishedAt *string       `json:"published_at"`
}

func (n *Notice) RecordID() string            { return n.ID }
func (n *Notice) RecordStatus() ContentStatus { return n.Status }
func (n *Notice) CreatedStamp() string        { return n.CreatedAt }
func (n *Notice) PublishedStamp() string      { return deref(n.PublishedAt) }
func (n *Notice) Touch(at string)             { n.UpdatedAt = at }

func (n *Notice) MarkPublished(at string) {
	n.Status = ContentStatusPublished
	n.PublishedAt = &at
}

func (n *Notice) MarkDraft() {
	n.Status = ContentStatusDraft
	n.PublishedAt = nil
}

// IsPublished returns true if the notice is in published status.
func (n *Notice) IsPublished() bool {
	return n.Status == ContentStatusPublished
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
