// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package chat stores the public guestbook: a single capped collection of
// short messages posted by signed-in users.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"localgame/internal/access"
	"localgame/internal/content"
	"localgame/internal/models"
	"localgame/internal/store"
)

const (
	// MaxMessages is the number of messages kept; older ones are dropped.
	MaxMessages = 200
	// DefaultLimit is the page size used when no limit is requested.
	DefaultLimit = 100
	// MaxTextLength bounds a single message in runes.
	MaxTextLength = 500
)

// ErrMessageNotFound is returned by Delete for an unknown id.
var ErrMessageNotFound = fmt.Errorf("chat message: %w", content.ErrNotFound)

// Store is the guestbook backed by data/chat/messages.json.
type Store struct {
	messages *store.Collection[models.ChatMessage]
	policy   *bluemonday.Policy
	now      func() time.Time
}

// NewStore creates the guestbook on layout.
func NewStore(layout store.Layout) *Store {
	return &Store{
		messages: store.NewCollection[models.ChatMessage](layout.ChatFile(), store.KeyMessages),
		policy:   bluemonday.StrictPolicy(),
		now:      time.Now,
	}
}

// List returns the most recent messages, oldest first. A limit of zero or
// less selects DefaultLimit.
func (s *Store) List(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	msgs, err := s.messages.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// Post appends a message from caller. Markup is stripped from the text.
func (s *Store) Post(ctx context.Context, caller *access.Caller, text string) (*models.ChatMessage, error) {
	if err := access.RequireCaller(caller); err != nil {
		return nil, err
	}
	clean := strings.TrimSpace(s.policy.Sanitize(text))
	if clean == "" {
		return nil, content.Invalid("消息内容不能为空")
	}
	if utf8.RuneCountInString(clean) > MaxTextLength {
		return nil, content.Invalid(fmt.Sprintf("消息不能超过%d个字符", MaxTextLength))
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    caller.UserID,
		Username:  caller.Username,
		Email:     caller.Email,
		Text:      clean,
		Timestamp: models.FormatTime(s.now()),
	}
	err := s.messages.Update(ctx, func(msgs []models.ChatMessage) ([]models.ChatMessage, error) {
		msgs = append(msgs, msg)
		if len(msgs) > MaxMessages {
			msgs = msgs[len(msgs)-MaxMessages:]
		}
		return msgs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("post chat message: %w", err)
	}
	return &msg, nil
}

// Delete removes the message with id. Admin only.
func (s *Store) Delete(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.RequireAdmin(caller); err != nil {
		return err
	}
	err := s.messages.Update(ctx, func(msgs []models.ChatMessage) ([]models.ChatMessage, error) {
		for i := range msgs {
			if msgs[i].ID == id {
				return append(msgs[:i], msgs[i+1:]...), nil
			}
		}
		return nil, ErrMessageNotFound
	})
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete chat message %s: %w", id, err)
	}
	slog.Info("chat message deleted", "id", id, "owner", caller.UserID)
	return nil
}

// Clear drops every message. Admin only.
func (s *Store) Clear(ctx context.Context, caller *access.Caller) error {
	if err := access.RequireAdmin(caller); err != nil {
		return err
	}
	if err := s.messages.Save(ctx, []models.ChatMessage{}); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	slog.Info("chat cleared", "owner", caller.UserID)
	return nil
}
