// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog aggregates the published games of every user into the
// public listing and keyword search.
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"localgame/internal/content"
	"localgame/internal/models"
	"localgame/internal/store"
)

// Catalog scans per-user published collections. Nothing is cached; every
// call reads the files again.
type Catalog struct {
	layout store.Layout
}

// New creates a Catalog over layout.
func New(layout store.Layout) *Catalog {
	return &Catalog{layout: layout}
}

// scan calls visit with the published games of each user folder. Folders
// whose collection cannot be read are logged and skipped.
func (c *Catalog) scan(ctx context.Context, visit func(models.Game)) error {
	folders, err := c.layout.Folders()
	if err != nil {
		return err
	}
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		coll := store.NewCollection[models.Game](c.layout.PublishedGames(folder), store.KeyPosts)
		games, err := coll.Load(ctx)
		if err != nil {
			slog.Warn("skipping unreadable published games", "folder", folder, "error", err)
			continue
		}
		for _, g := range games {
			visit(g)
		}
	}
	return nil
}

func sortByPublished(games []models.Game) {
	slices.SortStableFunc(games, func(a, b models.Game) int {
		return cmp.Compare(b.PublishedStamp(), a.PublishedStamp())
	})
}

// Published returns every published game, most recently published first.
func (c *Catalog) Published(ctx context.Context) ([]models.Game, error) {
	games := []models.Game{}
	if err := c.scan(ctx, func(g models.Game) { games = append(games, g) }); err != nil {
		return nil, fmt.Errorf("list published games: %w", err)
	}
	sortByPublished(games)
	return games, nil
}

// Search returns published games whose title, description or author name
// contains keyword, ignoring case.
func (c *Catalog) Search(ctx context.Context, keyword string) ([]models.Game, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, content.Invalid("搜索关键词不能为空")
	}

	fold := cases.Fold()
	needle := fold.String(keyword)
	matches := func(s string) bool {
		return s != "" && strings.Contains(fold.String(s), needle)
	}

	games := []models.Game{}
	err := c.scan(ctx, func(g models.Game) {
		if !g.IsPublished() {
			return
		}
		if matches(g.Title) || matches(g.Content) || matches(g.AuthorName) {
			games = append(games, g)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	sortByPublished(games)
	return games, nil
}

// Find returns the published game with id.
func (c *Catalog) Find(ctx context.Context, id string) (*models.Game, error) {
	var found *models.Game
	err := c.scan(ctx, func(g models.Game) {
		if found == nil && g.ID == id {
			found = &g
		}
	})
	if err != nil {
		return nil, fmt.Errorf("find game %s: %w", id, err)
	}
	if found == nil {
		return nil, content.ErrNotFound
	}
	return found, nil
}
