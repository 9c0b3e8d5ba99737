// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localgame/internal/access"
	"localgame/internal/models"
	"localgame/internal/store"
)

func assetPath(l store.Layout, folder, ref string) string {
	if strings.HasPrefix(ref, "/media/games/") {
		return filepath.Join(l.GamesDir(folder), path.Base(ref))
	}
	return filepath.Join(l.ImagesDir(folder), path.Base(ref))
}

func findGame(games []models.Game, id string) *models.Game {
	for i := range games {
		if games[i].ID == id {
			return &games[i]
		}
	}
	return nil
}

func TestGamesCreate(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	assert.Equal(t, models.ContentStatusDraft, g.Status)
	assert.Nil(t, g.PublishedAt)
	assert.Equal(t, "001", g.AuthorID)
	assert.Equal(t, "alice", g.AuthorName)
	assert.True(t, strings.HasPrefix(g.GameFile, "/media/games/"+folderA+"/"))
	assert.True(t, strings.HasSuffix(g.GameFile, ".html"))
	assert.True(t, strings.HasSuffix(g.Thumbnail, ".png"))
	assert.FileExists(t, assetPath(l, folderA, g.GameFile))
	assert.FileExists(t, assetPath(l, folderA, g.Thumbnail))

	drafts, err := store.NewCollection[models.Game](l.DraftGames(folderA), store.KeyPosts).Load(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, g.ID, drafts[0].ID)

	published, err := s.PublishedIn(ctx, folderA)
	require.NoError(t, err)
	assert.Empty(t, published)
}

func TestGamesCreateValidation(t *testing.T) {
	s, _ := newTestGames(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   func() GameInput
	}{
		{name: "empty title", in: func() GameInput { in := gameUpload(""); return in }},
		{name: "blank title", in: func() GameInput { return gameUpload("   ") }},
		{name: "not html", in: func() GameInput {
			in := gameUpload("x")
			in.GameFile.Filename = "game.zip"
			return in
		}},
		{name: "missing game file", in: func() GameInput {
			in := gameUpload("x")
			in.GameFile = nil
			return in
		}},
		{name: "bad thumbnail", in: func() GameInput {
			in := gameUpload("x")
			in.Thumbnail.Filename = "cover.bmp"
			return in
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, ownerA, tt.in())
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := s.Create(ctx, nil, gameUpload("anon"))
	assert.ErrorIs(t, err, access.ErrUnauthorized)
}

func TestGamesPublishLifecycle(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	mine, err := s.Mine(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ContentStatusDraft, mine[0].Status)

	live, err := s.Publish(ctx, ownerA, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusPublished, live.Status)
	require.NotNil(t, live.PublishedAt)

	published, err := s.PublishedIn(ctx, folderA)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, g.ID, published[0].ID)

	// The draft copy mirrors the published record.
	drafts, err := store.NewCollection[models.Game](l.DraftGames(folderA), store.KeyPosts).Load(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, published[0], drafts[0])

	// Publishing twice keeps a single published entry.
	_, err = s.Publish(ctx, ownerA, g.ID)
	require.NoError(t, err)
	published, _ = s.PublishedIn(ctx, folderA)
	assert.Len(t, published, 1)

	back, err := s.Unpublish(ctx, ownerA, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusDraft, back.Status)
	assert.Nil(t, back.PublishedAt)

	published, _ = s.PublishedIn(ctx, folderA)
	assert.Empty(t, published)
	mine, _ = s.Mine(ctx, ownerA)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ContentStatusDraft, mine[0].Status)
	assert.Nil(t, mine[0].PublishedAt)

	_, err = s.Unpublish(ctx, ownerA, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGamesEditDemotesPublished(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)
	_, err = s.Publish(ctx, ownerA, g.ID)
	require.NoError(t, err)

	oldThumb := assetPath(l, folderA, g.Thumbnail)
	body := "new body"
	edited, err := s.Edit(ctx, ownerA, g.ID, GameEdit{
		Title:     "Pong 2",
		Content:   &body,
		Thumbnail: &Upload{Filename: "new.webp", Body: strings.NewReader("webp")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pong 2", edited.Title)
	assert.Equal(t, "new body", edited.Content)
	assert.Equal(t, models.ContentStatusDraft, edited.Status)
	assert.Nil(t, edited.PublishedAt)
	assert.Equal(t, g.GameFile, edited.GameFile, "game file kept when not supplied")
	assert.NoFileExists(t, oldThumb)
	assert.FileExists(t, assetPath(l, folderA, edited.Thumbnail))

	published, _ := s.PublishedIn(ctx, folderA)
	assert.Empty(t, published)

	mine, _ := s.Mine(ctx, ownerA)
	require.Len(t, mine, 1)
	assert.Equal(t, "Pong 2", mine[0].Title)

	// Re-publishing serves the edited draft fields.
	_, err = s.Publish(ctx, ownerA, g.ID)
	require.NoError(t, err)
	published, _ = s.PublishedIn(ctx, folderA)
	require.Len(t, published, 1)
	assert.Equal(t, "Pong 2", published[0].Title)
	assert.Equal(t, "new body", published[0].Content)
}

func TestGamesEditKeepsFieldsWhenOmitted(t *testing.T) {
	s, _ := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	edited, err := s.Edit(ctx, ownerA, g.ID, GameEdit{})
	require.NoError(t, err)
	assert.Equal(t, "Pong", edited.Title)
	assert.Equal(t, g.Content, edited.Content)
	assert.Equal(t, g.Thumbnail, edited.Thumbnail)
	assert.NotEqual(t, g.UpdatedAt, edited.UpdatedAt)

	_, err = s.Edit(ctx, ownerA, g.ID, GameEdit{GameFile: &Upload{Filename: "x.txt", Body: strings.NewReader("")}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Edit(ctx, ownerA, "nope", GameEdit{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGamesForeignOwnerForbidden(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	_, err = s.Publish(ctx, ownerB, g.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.Edit(ctx, ownerB, g.ID, GameEdit{Title: "stolen"})
	assert.ErrorIs(t, err, ErrForbidden)
	err = s.Delete(ctx, ownerB, g.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.FileExists(t, assetPath(l, folderA, g.GameFile))
}

func TestGamesDelete(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)
	_, err = s.Publish(ctx, ownerA, g.ID)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ownerA, g.ID))
	assert.NoFileExists(t, assetPath(l, folderA, g.GameFile))
	assert.NoFileExists(t, assetPath(l, folderA, g.Thumbnail))

	mine, _ := s.Mine(ctx, ownerA)
	assert.Empty(t, mine)
	published, _ := s.PublishedIn(ctx, folderA)
	assert.Empty(t, published)

	err = s.Delete(ctx, ownerA, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGamesDeleteMissingAssetIsNotAnError(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(assetPath(l, folderA, g.GameFile)))

	assert.NoError(t, s.Delete(ctx, ownerA, g.ID))
	assert.NoFileExists(t, assetPath(l, folderA, g.Thumbnail))
}

func TestGamesAdminDelete(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerB, gameUpload("Pong"))
	require.NoError(t, err)
	_, err = s.Publish(ctx, ownerB, g.ID)
	require.NoError(t, err)

	// A corrupt folder scanned first does not stop the scan.
	require.NoError(t, os.WriteFile(l.DraftGames(folderA), []byte("{"), 0o644))

	require.NoError(t, s.Delete(ctx, admin, g.ID))
	assert.NoFileExists(t, assetPath(l, folderB, g.GameFile))
	assert.NoFileExists(t, assetPath(l, folderB, g.Thumbnail))

	published, _ := s.PublishedIn(ctx, folderB)
	assert.Empty(t, published)

	assert.ErrorIs(t, s.Delete(ctx, admin, g.ID), ErrNotFound)
}

func TestGamesMineOrdering(t *testing.T) {
	s, _ := newTestGames(t)
	ctx := context.Background()

	first, err := s.Create(ctx, ownerA, gameUpload("first"))
	require.NoError(t, err)
	second, err := s.Create(ctx, ownerA, gameUpload("second"))
	require.NoError(t, err)
	_, err = s.Publish(ctx, ownerA, first.ID)
	require.NoError(t, err)

	mine, err := s.Mine(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, first.ID, mine[1].ID)

	pub := findGame(mine, first.ID)
	require.NotNil(t, pub)
	assert.Equal(t, models.ContentStatusPublished, pub.Status)
	assert.NotNil(t, pub.PublishedAt)
}

func TestPublishedAtIffPublished(t *testing.T) {
	s, _ := newTestGames(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, ownerA, gameUpload("a"))
	b, _ := s.Create(ctx, ownerA, gameUpload("b"))
	c, _ := s.Create(ctx, ownerA, gameUpload("c"))
	_, _ = s.Publish(ctx, ownerA, a.ID)
	_, _ = s.Publish(ctx, ownerA, b.ID)
	_, _ = s.Unpublish(ctx, ownerA, b.ID)
	_, _ = s.Publish(ctx, ownerA, c.ID)
	_, _ = s.Edit(ctx, ownerA, c.ID, GameEdit{Title: "c2"})

	mine, err := s.Mine(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	for _, g := range mine {
		assert.Equal(t, g.Status == models.ContentStatusPublished, g.PublishedAt != nil, "game %s", g.ID)
	}
}

// assetNames lists the files in dir.
func assetNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func newAssets() GameEdit {
	return GameEdit{
		GameFile:  &Upload{Filename: "v2.html", Body: strings.NewReader("<html>v2</html>")},
		Thumbnail: &Upload{Filename: "v2.png", Body: strings.NewReader("png2")},
	}
}

func TestGamesEditFailedThumbnailWriteKeepsOldAssets(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	// A plain file where the images directory should be makes every
	// thumbnail write fail.
	imagesDir := l.ImagesDir(folderA)
	require.NoError(t, os.RemoveAll(imagesDir))
	require.NoError(t, os.WriteFile(imagesDir, []byte("not a dir"), 0o644))

	_, err = s.Edit(ctx, ownerA, g.ID, newAssets())
	require.Error(t, err)

	drafts, err := store.NewCollection[models.Game](l.DraftGames(folderA), store.KeyPosts).Load(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, g.GameFile, drafts[0].GameFile)
	assert.FileExists(t, assetPath(l, folderA, drafts[0].GameFile))
	assert.Equal(t, []string{path.Base(g.GameFile)}, assetNames(t, l.GamesDir(folderA)))
}

func TestGamesEditFailedCommitDiscardsNewAssets(t *testing.T) {
	s, l := newTestGames(t)

	g, err := s.Create(context.Background(), ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	tests := []struct {
		name string
		ctx  func() context.Context
		id   string
	}{
		{"unknown game", context.Background, "missing"},
		{"cancelled before write", func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		}, g.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Edit(tt.ctx(), ownerA, tt.id, newAssets())
			require.Error(t, err)

			assert.Equal(t, []string{path.Base(g.GameFile)}, assetNames(t, l.GamesDir(folderA)))
			assert.Equal(t, []string{path.Base(g.Thumbnail)}, assetNames(t, l.ImagesDir(folderA)))
		})
	}
}

func TestGamesEditSwapsAssets(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	edited, err := s.Edit(ctx, ownerA, g.ID, newAssets())
	require.NoError(t, err)

	assert.NotEqual(t, g.GameFile, edited.GameFile)
	assert.NoFileExists(t, assetPath(l, folderA, g.GameFile))
	assert.NoFileExists(t, assetPath(l, folderA, g.Thumbnail))
	assert.FileExists(t, assetPath(l, folderA, edited.GameFile))
	assert.FileExists(t, assetPath(l, folderA, edited.Thumbnail))
	assert.Equal(t, []string{path.Base(edited.GameFile)}, assetNames(t, l.GamesDir(folderA)))
}

func TestGamesDeleteSucceedsWhenAssetCannotBeRemoved(t *testing.T) {
	s, l := newTestGames(t)
	ctx := context.Background()

	g, err := s.Create(ctx, ownerA, gameUpload("Pong"))
	require.NoError(t, err)

	// A non-empty directory in place of the game file cannot be removed.
	stuck := assetPath(l, folderA, g.GameFile)
	require.NoError(t, os.Remove(stuck))
	require.NoError(t, os.MkdirAll(filepath.Join(stuck, "inner"), 0o755))

	require.NoError(t, s.Delete(ctx, ownerA, g.ID))

	mine, err := s.Mine(ctx, ownerA)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.NoFileExists(t, assetPath(l, folderA, g.Thumbnail))
	assert.ErrorIs(t, s.Delete(ctx, ownerA, g.ID), ErrNotFound)
}
