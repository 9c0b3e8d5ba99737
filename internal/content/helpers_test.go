package content

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"localgame/internal/access"
	"localgame/internal/models"
	"localgame/internal/store"
)

const (
	folderA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	folderB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	folderZ = "ffffffffffffffffffffffffffffffff"
)

var (
	ownerA = &access.Caller{UserID: "001", Username: "alice", Folder: folderA, Role: models.RoleUser}
	ownerB = &access.Caller{UserID: "002", Username: "bob", Folder: folderB, Role: models.RoleUser}
	admin  = &access.Caller{UserID: "003", Username: "管理员", Folder: folderZ, Role: models.RoleAdmin}
)

// testClock hands out strictly increasing times one second apart.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestLayout(t *testing.T) store.Layout {
	t.Helper()
	l := store.Layout{Root: t.TempDir()}
	require.NoError(t, l.Init())
	for _, f := range []string{folderA, folderB, folderZ} {
		require.NoError(t, l.Provision(f))
	}
	return l
}

func newTestGames(t *testing.T) (*Games, store.Layout) {
	t.Helper()
	l := newTestLayout(t)
	clock := &testClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.Local)}
	ids := &IDGenerator{now: clock.now}
	g := NewGames(l, ids)
	g.now = clock.now
	return g, l
}

func gameUpload(title string) GameInput {
	return GameInput{
		Title:     title,
		Content:   "about " + title,
		GameFile:  &Upload{Filename: "index.html", Body: strings.NewReader("<html></html>")},
		Thumbnail: &Upload{Filename: "cover.PNG", Body: strings.NewReader("png")},
	}
}
