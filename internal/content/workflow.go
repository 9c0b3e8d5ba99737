// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content implements the draft/publish lifecycle for games,
// announcements and bulletins.
//
// Every content kind keeps two collections. The draft collection holds
// every item ever created and mirrors the published fields after each
// publish. The published collection is a projection of the items that are
// currently live. Editing a live item takes it out of the projection.
package content

import (
	"cmp"
	"context"
	"slices"
	"time"

	"localgame/internal/models"
	"localgame/internal/store"
)

// lifecycle runs the state machine over one draft/published pair. P is the
// pointer type of T implementing models.Record.
type lifecycle[T any, P interface {
	*T
	models.Record
}] struct {
	drafts    *store.Collection[T]
	published *store.Collection[T]
	now       func() time.Time
}

func newLifecycle[T any, P interface {
	*T
	models.Record
}](draftsPath, publishedPath string, now func() time.Time) *lifecycle[T, P] {
	return &lifecycle[T, P]{
		drafts:    store.NewCollection[T](draftsPath, store.KeyPosts),
		published: store.NewCollection[T](publishedPath, store.KeyPosts),
		now:       now,
	}
}

func (l *lifecycle[T, P]) stamp() string {
	return models.FormatTime(l.now())
}

func indexOf[T any, P interface {
	*T
	models.Record
}](items []T, id string) int {
	for i := range items {
		if P(&items[i]).RecordID() == id {
			return i
		}
	}
	return -1
}

func upsert[T any, P interface {
	*T
	models.Record
}](items []T, rec T) []T {
	if i := indexOf[T, P](items, P(&rec).RecordID()); i >= 0 {
		items[i] = rec
		return items
	}
	return append(items, rec)
}

func without[T any, P interface {
	*T
	models.Record
}](items []T, id string) []T {
	kept := items[:0]
	for i := range items {
		if P(&items[i]).RecordID() != id {
			kept = append(kept, items[i])
		}
	}
	return kept
}

// update runs fn on (published, drafts) under both collection locks.
func (l *lifecycle[T, P]) update(ctx context.Context, fn func(published, drafts []T) ([]T, []T, error)) error {
	return store.UpdatePair(ctx, l.published, l.drafts, fn)
}

// insert appends a new draft built by build. The identifier comes from ids
// and is unique across both collections.
func (l *lifecycle[T, P]) insert(ctx context.Context, ids *IDGenerator, build func(id, at string) T) (*T, error) {
	var created T
	err := l.update(ctx, func(published, drafts []T) ([]T, []T, error) {
		id := ids.Next(func(id string) bool {
			return indexOf[T, P](drafts, id) >= 0 || indexOf[T, P](published, id) >= 0
		})
		created = build(id, l.stamp())
		P(&created).MarkDraft()
		return published, append(drafts, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// edit applies mutate to the item, looked up in drafts first and then in
// published. check runs before any change. A live item is demoted: it is
// removed from published and its draft copy is replaced by the edited
// record with status draft.
func (l *lifecycle[T, P]) edit(ctx context.Context, id string, check func(*T) error, mutate func(*T) error) (*T, error) {
	var edited T
	err := l.update(ctx, func(published, drafts []T) ([]T, []T, error) {
		var rec T
		if i := indexOf[T, P](drafts, id); i >= 0 {
			rec = drafts[i]
		} else if i := indexOf[T, P](published, id); i >= 0 {
			rec = published[i]
		} else {
			return nil, nil, ErrNotFound
		}
		if err := check(&rec); err != nil {
			return nil, nil, err
		}
		if err := mutate(&rec); err != nil {
			return nil, nil, err
		}
		P(&rec).Touch(l.stamp())

		live := indexOf[T, P](published, id) >= 0 || P(&rec).RecordStatus() == models.ContentStatusPublished
		if live {
			published = without[T, P](published, id)
			P(&rec).MarkDraft()
		}
		edited = rec
		return published, upsert[T, P](drafts, rec), nil
	})
	if err != nil {
		return nil, err
	}
	return &edited, nil
}

// publish marks a draft live, upserts it into published and rewrites the
// draft copy in place.
func (l *lifecycle[T, P]) publish(ctx context.Context, id string, check func(*T) error) (*T, error) {
	var live T
	err := l.update(ctx, func(published, drafts []T) ([]T, []T, error) {
		i := indexOf[T, P](drafts, id)
		if i < 0 {
			return nil, nil, ErrNotFound
		}
		rec := drafts[i]
		if err := check(&rec); err != nil {
			return nil, nil, err
		}
		P(&rec).MarkPublished(l.stamp())
		drafts[i] = rec
		live = rec
		return upsert[T, P](published, rec), drafts, nil
	})
	if err != nil {
		return nil, err
	}
	return &live, nil
}

// unpublish takes a live item out of published and sets its draft mirror
// back to draft. A missing mirror is restored from the published copy.
func (l *lifecycle[T, P]) unpublish(ctx context.Context, id string, check func(*T) error) (*T, error) {
	var demoted T
	err := l.update(ctx, func(published, drafts []T) ([]T, []T, error) {
		i := indexOf[T, P](published, id)
		if i < 0 {
			return nil, nil, ErrNotFound
		}
		rec := published[i]
		if err := check(&rec); err != nil {
			return nil, nil, err
		}
		P(&rec).MarkDraft()
		demoted = rec
		return without[T, P](published, id), upsert[T, P](drafts, rec), nil
	})
	if err != nil {
		return nil, err
	}
	return &demoted, nil
}

// remove deletes the item from both collections and returns the removed
// record (the draft copy when both exist).
func (l *lifecycle[T, P]) remove(ctx context.Context, id string, check func(*T) error) (*T, error) {
	var removed T
	err := l.update(ctx, func(published, drafts []T) ([]T, []T, error) {
		if i := indexOf[T, P](drafts, id); i >= 0 {
			removed = drafts[i]
		} else if i := indexOf[T, P](published, id); i >= 0 {
			removed = published[i]
		} else {
			return nil, nil, ErrNotFound
		}
		if err := check(&removed); err != nil {
			return nil, nil, err
		}
		return without[T, P](published, id), without[T, P](drafts, id), nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// listAll merges drafts and published into one list, one entry per id.
// The draft copy's fields win. Status reflects presence in published.
// Sorted by created_at, newest first.
func (l *lifecycle[T, P]) listAll(ctx context.Context) ([]T, error) {
	drafts, err := l.drafts.Load(ctx)
	if err != nil {
		return nil, err
	}
	published, err := l.published.Load(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]T, 0, len(drafts)+len(published))
	seen := make(map[string]bool, len(drafts))
	for _, rec := range drafts {
		id := P(&rec).RecordID()
		if seen[id] {
			continue
		}
		seen[id] = true
		if j := indexOf[T, P](published, id); j >= 0 {
			if P(&rec).RecordStatus() != models.ContentStatusPublished || P(&rec).PublishedStamp() == "" {
				P(&rec).MarkPublished(P(&published[j]).PublishedStamp())
			}
		} else {
			P(&rec).MarkDraft()
		}
		all = append(all, rec)
	}
	for _, rec := range published {
		id := P(&rec).RecordID()
		if seen[id] {
			continue
		}
		seen[id] = true
		all = append(all, rec)
	}

	sortDesc[T, P](all, func(p P) string { return p.CreatedStamp() })
	return all, nil
}

// listPublished returns the published collection, newest publish first.
func (l *lifecycle[T, P]) listPublished(ctx context.Context) ([]T, error) {
	published, err := l.published.Load(ctx)
	if err != nil {
		return nil, err
	}
	sortDesc[T, P](published, func(p P) string { return p.PublishedStamp() })
	return published, nil
}

func sortDesc[T any, P interface {
	*T
	models.Record
}](items []T, key func(P) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(key(P(&b)), key(P(&a)))
	})
}
