// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"testing"
	"time"
)

// TestGameIsPublished verifies that IsPublished returns true only for
// the "published" status.
func TestGameIsPublished(t *testing.T) {
	tests := []struct {
		name   string
		status ContentStatus
		want   bool
	}{
		{name: "published", status: ContentStatusPublished, want: true},
		{name: "draft", status: ContentStatusDraft, want: false},
		{name: "empty status", status: ContentStatus(""), want: false},
		{name: "unknown status", status: ContentStatus("archived"), want: false},
		{name: "uppercase PUBLISHED", status: ContentStatus("PUBLISHED"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Game{Status: tt.status}
			if got := g.IsPublished(); got != tt.want {
				t.Errorf("Game{Status: %q}.IsPublished() = %v, want %v", tt.status, got, tt.want)
			}
			n := &Notice{Status: tt.status}
			if got := n.IsPublished(); got != tt.want {
				t.Errorf("Notice{Status: %q}.IsPublished() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

// TestContentStatusConstants verifies that content status string constants
// have the expected values.
func TestContentStatusConstants(t *testing.T) {
	tests := []struct {
		name     string
		cs       ContentStatus
		expected string
	}{
		{name: "draft status", cs: ContentStatusDraft, expected: "draft"},
		{name: "published status", cs: ContentStatusPublished, expected: "published"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.cs) != tt.expected {
				t.Errorf("ContentStatus %s = %q, want %q", tt.name, string(tt.cs), tt.expected)
			}
		})
	}
}

// TestMarkPublishedAndDraft checks that published_at follows the status.
func TestMarkPublishedAndDraft(t *testing.T) {
	records := map[string]Record{
		"game":   &Game{ID: "1", Status: ContentStatusDraft},
		"notice": &Notice{ID: "1", Status: ContentStatusDraft},
	}

	for name, r := range records {
		t.Run(name, func(t *testing.T) {
			if r.PublishedStamp() != "" {
				t.Fatalf("fresh record has published stamp %q", r.PublishedStamp())
			}
			r.MarkPublished("2026-01-02T03:04:05.000000")
			if r.RecordStatus() != ContentStatusPublished {
				t.Errorf("status = %q, want published", r.RecordStatus())
			}
			if r.PublishedStamp() != "2026-01-02T03:04:05.000000" {
				t.Errorf("published stamp = %q", r.PublishedStamp())
			}
			r.MarkDraft()
			if r.RecordStatus() != ContentStatusDraft {
				t.Errorf("status = %q, want draft", r.RecordStatus())
			}
			if r.PublishedStamp() != "" {
				t.Errorf("published stamp = %q after MarkDraft, want empty", r.PublishedStamp())
			}
		})
	}
}

// TestFormatTimeRoundTrip verifies the on-disk layout and that it parses back
// to the same second.
func TestFormatTimeRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 123456000, time.Local)
	s := FormatTime(at)
	if s != "2026-03-04T05:06:07.123456" {
		t.Fatalf("FormatTime = %q", s)
	}
	got, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime(%q): %v", s, err)
	}
	if !got.Equal(at) {
		t.Errorf("ParseTime = %v, want %v", got, at)
	}

	legacy, err := ParseTime("2026-03-04T05:06:07")
	if err != nil {
		t.Fatalf("ParseTime without fraction: %v", err)
	}
	if legacy.Second() != 7 {
		t.Errorf("legacy second = %d, want 7", legacy.Second())
	}
}

// TestFormatTimeSortsLexically checks that string order equals time order.
func TestFormatTimeSortsLexically(t *testing.T) {
	earlier := FormatTime(time.Date(2026, 1, 9, 23, 59, 59, 0, time.Local))
	later := FormatTime(time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local))
	if !(earlier < later) {
		t.Errorf("%q should sort before %q", earlier, later)
	}
}
