// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"localgame/internal/access"
	"localgame/internal/metrics"
	"localgame/internal/models"
	"localgame/internal/store"
)

const kindGame = "game"

// GameInput carries the fields of a new game.
type GameInput struct {
	Title     string
	Content   string
	GameFile  *Upload
	Thumbnail *Upload
}

// GameEdit carries the optional fields of a game edit. An empty Title and
// nil pointers leave the stored values unchanged.
type GameEdit struct {
	Title     string
	Content   *string
	GameFile  *Upload
	Thumbnail *Upload
}

// Games manages the games of every user. Each user's games live in their
// own folder.
type Games struct {
	layout store.Layout
	ids    *IDGenerator
	now    func() time.Time
}

// NewGames creates a Games service on layout.
func NewGames(layout store.Layout, ids *IDGenerator) *Games {
	return &Games{layout: layout, ids: ids, now: time.Now}
}

func (s *Games) cycle(folder string) *lifecycle[models.Game, *models.Game] {
	return newLifecycle[models.Game, *models.Game](
		s.layout.DraftGames(folder),
		s.layout.PublishedGames(folder),
		s.now,
	)
}

func ownedBy(caller *access.Caller) func(*models.Game) error {
	return func(g *models.Game) error {
		return access.RequireOwner(caller, g.AuthorID)
	}
}

// Create stores the uploaded assets and appends a new draft to the
// caller's collection.
func (s *Games) Create(ctx context.Context, caller *access.Caller, in GameInput) (*models.Game, error) {
	if err := access.RequireCaller(caller); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, Invalid("游戏标题不能为空")
	}
	gExt, err := gameExt(in.GameFile)
	if err != nil {
		return nil, err
	}
	iExt, err := imageExt(in.Thumbnail)
	if err != nil {
		return nil, err
	}

	gamesDir := s.layout.GamesDir(caller.Folder)
	imagesDir := s.layout.ImagesDir(caller.Folder)
	gameName, err := writeAsset(gamesDir, gExt, in.GameFile.Body)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	thumbName, err := writeAsset(imagesDir, iExt, in.Thumbnail.Body)
	if err != nil {
		_ = removeAsset(gamesDir, gameName)
		return nil, fmt.Errorf("create game: %w", err)
	}

	g, err := s.cycle(caller.Folder).insert(ctx, s.ids, func(id, at string) models.Game {
		return models.Game{
			ID:         id,
			Title:      title,
			Content:    in.Content,
			Thumbnail:  ImageRef(caller.Folder, thumbName),
			GameFile:   GameRef(caller.Folder, gameName),
			AuthorID:   caller.UserID,
			AuthorName: caller.Username,
			CreatedAt:  at,
			UpdatedAt:  at,
		}
	})
	if err != nil {
		_ = removeAsset(gamesDir, gameName)
		_ = removeAsset(imagesDir, thumbName)
		return nil, fmt.Errorf("create game: %w", err)
	}

	metrics.ObserveTransition(kindGame, "create")
	slog.Info("game created", "kind", kindGame, "id", g.ID, "owner", caller.UserID)
	return g, nil
}

// Edit updates the caller's game. Supplied assets replace the old files.
// Editing a published game takes it offline until published again.
func (s *Games) Edit(ctx context.Context, caller *access.Caller, id string, in GameEdit) (*models.Game, error) {
	if err := access.RequireCaller(caller); err != nil {
		return nil, err
	}
	var gExt, iExt string
	var err error
	if in.GameFile != nil {
		if gExt, err = gameExt(in.GameFile); err != nil {
			return nil, err
		}
	}
	if in.Thumbnail != nil {
		if iExt, err = imageExt(in.Thumbnail); err != nil {
			return nil, err
		}
	}

	gamesDir := s.layout.GamesDir(caller.Folder)
	imagesDir := s.layout.ImagesDir(caller.Folder)

	// New files are staged before the record changes. The replaced files are
	// only removed once the record no longer points at them.
	var newGame, newThumb string
	discard := func() {
		discardAsset(gamesDir, newGame)
		discardAsset(imagesDir, newThumb)
	}
	if in.GameFile != nil {
		if newGame, err = writeAsset(gamesDir, gExt, in.GameFile.Body); err != nil {
			return nil, fmt.Errorf("edit game %s: %w", id, err)
		}
	}
	if in.Thumbnail != nil {
		if newThumb, err = writeAsset(imagesDir, iExt, in.Thumbnail.Body); err != nil {
			discard()
			return nil, fmt.Errorf("edit game %s: %w", id, err)
		}
	}

	var oldGame, oldThumb string
	g, err := s.cycle(caller.Folder).edit(ctx, id, ownedBy(caller), func(g *models.Game) error {
		if title := strings.TrimSpace(in.Title); title != "" {
			g.Title = title
		}
		if in.Content != nil {
			g.Content = *in.Content
		}
		if newGame != "" {
			oldGame = g.GameFile
			g.GameFile = GameRef(caller.Folder, newGame)
		}
		if newThumb != "" {
			oldThumb = g.Thumbnail
			g.Thumbnail = ImageRef(caller.Folder, newThumb)
		}
		return nil
	})
	if err != nil {
		discard()
		return nil, fmt.Errorf("edit game %s: %w", id, s.gate(ctx, caller, id, err))
	}
	discardAsset(gamesDir, oldGame)
	discardAsset(imagesDir, oldThumb)

	metrics.ObserveTransition(kindGame, "edit")
	slog.Info("game edited", "kind", kindGame, "id", id, "owner", caller.UserID)
	return g, nil
}

// Publish makes the caller's draft game public.
func (s *Games) Publish(ctx context.Context, caller *access.Caller, id string) (*models.Game, error) {
	if err := access.RequireCaller(caller); err != nil {
		return nil, err
	}
	g, err := s.cycle(caller.Folder).publish(ctx, id, ownedBy(caller))
	if err != nil {
		return nil, fmt.Errorf("publish game %s: %w", id, s.gate(ctx, caller, id, err))
	}
	metrics.ObserveTransition(kindGame, "publish")
	slog.Info("game published", "kind", kindGame, "id", id, "owner", caller.UserID)
	return g, nil
}

// Unpublish takes the caller's game offline, keeping it as a draft.
func (s *Games) Unpublish(ctx context.Context, caller *access.Caller, id string) (*models.Game, error) {
	if err := access.RequireCaller(caller); err != nil {
		return nil, err
	}
	g, err := s.cycle(caller.Folder).unpublish(ctx, id, ownedBy(caller))
	if err != nil {
		return nil, fmt.Errorf("unpublish game %s: %w", id, s.gate(ctx, caller, id, err))
	}
	metrics.ObserveTransition(kindGame, "unpublish")
	slog.Info("game unpublished", "kind", kindGame, "id", id, "owner", caller.UserID)
	return g, nil
}

// Delete removes a game and its assets. Users delete their own games; the
// admin may delete any user's game, found by scanning every folder.
func (s *Games) Delete(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.RequireCaller(caller); err != nil {
		return err
	}

	if !caller.IsAdmin() {
		g, err := s.cycle(caller.Folder).remove(ctx, id, ownedBy(caller))
		if err != nil {
			return fmt.Errorf("delete game %s: %w", id, s.gate(ctx, caller, id, err))
		}
		return s.removed(caller, caller.Folder, g)
	}

	folders, err := s.layout.Folders()
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	anyone := func(*models.Game) error { return nil }
	for _, folder := range folders {
		g, err := s.cycle(folder).remove(ctx, id, anyone)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if errors.Is(err, store.ErrCorrupt) {
			slog.Warn("skipping unreadable game collection", "folder", folder, "error", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("delete game %s: %w", id, err)
		}
		return s.removed(caller, folder, g)
	}
	return fmt.Errorf("delete game %s: %w", id, ErrNotFound)
}

// gate turns a NotFound in the caller's own folder into Forbidden when the
// game exists in another user's folder.
func (s *Games) gate(ctx context.Context, caller *access.Caller, id string, err error) error {
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	folders, ferr := s.layout.Folders()
	if ferr != nil {
		return err
	}
	for _, folder := range folders {
		if folder == caller.Folder {
			continue
		}
		c := s.cycle(folder)
		for _, coll := range []*store.Collection[models.Game]{c.drafts, c.published} {
			games, lerr := coll.Load(ctx)
			if lerr != nil {
				continue
			}
			if indexOf[models.Game, *models.Game](games, id) >= 0 {
				return ErrForbidden
			}
		}
	}
	return err
}

// removed finishes a delete whose records are already gone. Asset files
// that cannot be removed are logged and left behind.
func (s *Games) removed(caller *access.Caller, folder string, g *models.Game) error {
	discardAsset(s.layout.GamesDir(folder), g.GameFile)
	discardAsset(s.layout.ImagesDir(folder), g.Thumbnail)
	metrics.ObserveTransition(kindGame, "delete")
	slog.Info("game deleted", "kind", kindGame, "id", g.ID, "owner", g.AuthorID, "by", caller.UserID)
	return nil
}

// Mine lists every game of the caller, drafts and published, newest first.
func (s *Games) Mine(ctx context.Context, caller *access.Caller) ([]models.Game, error) {
	if err := access.RequireCaller(caller); err != nil {
		return nil, err
	}
	games, err := s.cycle(caller.Folder).listAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list my games: %w", err)
	}
	return games, nil
}

// PublishedIn returns the published games of one folder, newest first.
func (s *Games) PublishedIn(ctx context.Context, folder string) ([]models.Game, error) {
	return s.cycle(folder).listPublished(ctx)
}
