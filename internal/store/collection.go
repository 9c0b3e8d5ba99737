// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides file-backed persistence for every LocalGame
// record. Each collection is a JSON object with a single key holding an
// array of records; files are rewritten whole on every change.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Envelope keys used by the persisted layout.
const (
	KeyPosts         = "posts"
	KeyUsers         = "users"
	KeyRegistrations = "registrations"
	KeyCodes         = "codes"
	KeyMessages      = "messages"
)

// ErrCorrupt is returned when a collection file exists but cannot be
// decoded.
var ErrCorrupt = errors.New("corrupt collection file")

// Collection is a handle on one JSON collection file holding records of T.
type Collection[T any] struct {
	path string
	key  string
}

// NewCollection returns a handle for the file at path whose envelope uses key.
func NewCollection[T any](path, key string) *Collection[T] {
	return &Collection[T]{path: absPath(path), key: key}
}

// Path returns the absolute path of the backing file.
func (c *Collection[T]) Path() string {
	return c.path
}

// Load returns every record in the collection. A missing file yields an
// empty slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mu := lockFor(c.path)
	mu.Lock()
	defer mu.Unlock()
	return c.read()
}

// Save overwrites the collection with items.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mu := lockFor(c.path)
	mu.Lock()
	defer mu.Unlock()
	return c.write(items)
}

// Update runs fn on the current records and saves the result, holding the
// collection lock for the whole cycle. If fn returns an error nothing is
// written.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mu := lockFor(c.path)
	mu.Lock()
	defer mu.Unlock()

	items, err := c.read()
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return c.write(items)
}

// UpdatePair runs fn on two collections under both locks, taken in a fixed
// order. Both files are rewritten when fn succeeds. The two writes are
// not atomic as a unit.
func UpdatePair[T any](ctx context.Context, a, b *Collection[T], fn func(a, b []T) ([]T, []T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := lockOrdered(a.path, b.path)
	defer unlock()

	itemsA, err := a.read()
	if err != nil {
		return err
	}
	itemsB, err := b.read()
	if err != nil {
		return err
	}
	itemsA, itemsB, err = fn(itemsA, itemsB)
	if err != nil {
		return err
	}
	if err := a.write(itemsA); err != nil {
		return err
	}
	return b.write(itemsB)
}

func (c *Collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", c.path, ErrCorrupt, err)
	}
	raw, ok := envelope[c.key]
	if !ok || string(raw) == "null" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", c.path, ErrCorrupt, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := Marshal(map[string][]T{c.key: items})
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}
	return WriteFileAtomic(c.path, data)
}

// Marshal encodes v with two-space indentation, without HTML escaping and
// without a trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place. Parent directories are created as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
