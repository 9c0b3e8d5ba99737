// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"localgame/internal/access"
	"localgame/internal/metrics"
	"localgame/internal/models"
	"localgame/internal/store"
)

// NoticeKind names one of the admin-authored notice collections.
type NoticeKind string

const (
	KindAnnouncement NoticeKind = "announcement"
	KindBulletin     NoticeKind = "bulletin"
)

// Notices manages one notice kind. All items share a single collection
// pair and only the admin may change them.
type Notices struct {
	kind  NoticeKind
	cycle *lifecycle[models.Notice, *models.Notice]
	ids   *IDGenerator
}

// NewNotices creates the service for kind on layout.
func NewNotices(layout store.Layout, kind NoticeKind, ids *IDGenerator) *Notices {
	return &Notices{
		kind: kind,
		cycle: newLifecycle[models.Notice, *models.Notice](
			layout.NoticeDrafts(string(kind)),
			layout.NoticePublished(string(kind)),
			time.Now,
		),
		ids: ids,
	}
}

// Kind returns the notice kind served.
func (s *Notices) Kind() NoticeKind { return s.kind }

func adminOnly(caller *access.Caller) func(*models.Notice) error {
	return func(*models.Notice) error { return access.RequireAdmin(caller) }
}

func (s *Notices) logTransition(action, id string, caller *access.Caller) {
	metrics.ObserveTransition(string(s.kind), action)
	slog.Info(string(s.kind)+" "+action, "kind", string(s.kind), "id", id, "owner", caller.UserID)
}

// Create adds a new draft notice.
func (s *Notices) Create(ctx context.Context, caller *access.Caller, title, body string) (*models.Notice, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Invalid("标题不能为空")
	}
	n, err := s.cycle.insert(ctx, s.ids, func(id, at string) models.Notice {
		return models.Notice{ID: id, Title: title, Content: body, CreatedAt: at, UpdatedAt: at}
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}
	s.logTransition("create", n.ID, caller)
	return n, nil
}

// Update changes the supplied fields. The notice always returns to draft.
func (s *Notices) Update(ctx context.Context, caller *access.Caller, id string, title, body *string) (*models.Notice, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, Invalid("标题不能为空")
	}
	n, err := s.cycle.edit(ctx, id, adminOnly(caller), func(n *models.Notice) error {
		if title != nil {
			n.Title = strings.TrimSpace(*title)
		}
		if body != nil {
			n.Content = *body
		}
		n.MarkDraft()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", s.kind, id, err)
	}
	s.logTransition("edit", id, caller)
	return n, nil
}

// Publish makes a draft notice public.
func (s *Notices) Publish(ctx context.Context, caller *access.Caller, id string) (*models.Notice, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	n, err := s.cycle.publish(ctx, id, adminOnly(caller))
	if err != nil {
		return nil, fmt.Errorf("publish %s %s: %w", s.kind, id, err)
	}
	s.logTransition("publish", id, caller)
	return n, nil
}

// Unpublish takes a notice offline.
func (s *Notices) Unpublish(ctx context.Context, caller *access.Caller, id string) (*models.Notice, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	n, err := s.cycle.unpublish(ctx, id, adminOnly(caller))
	if err != nil {
		return nil, fmt.Errorf("unpublish %s %s: %w", s.kind, id, err)
	}
	s.logTransition("unpublish", id, caller)
	return n, nil
}

// Delete removes a notice from both collections.
func (s *Notices) Delete(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.RequireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.cycle.remove(ctx, id, adminOnly(caller)); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.kind, id, err)
	}
	s.logTransition("delete", id, caller)
	return nil
}

// ListPublished returns the live notices, most recently published first.
func (s *Notices) ListPublished(ctx context.Context) ([]models.Notice, error) {
	list, err := s.cycle.listPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return list, nil
}

// Latest returns the most recently published notice, or nil when none is
// live.
func (s *Notices) Latest(ctx context.Context) (*models.Notice, error) {
	list, err := s.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// ListAll returns drafts and live notices for the admin view.
func (s *Notices) ListAll(ctx context.Context, caller *access.Caller) ([]models.Notice, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	list, err := s.cycle.listAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all %s: %w", s.kind, err)
	}
	return list, nil
}
