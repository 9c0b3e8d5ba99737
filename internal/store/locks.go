// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"path/filepath"
	"sort"
	"sync"
)

// registry hands out one mutex per absolute collection path. Every
// Collection handle on the same file shares it, so read-modify-write
// cycles never interleave within the process.
var registry sync.Map // string -> *sync.Mutex

func lockFor(path string) *sync.Mutex {
	mu, _ := registry.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// lockOrdered locks the given paths in sorted order and returns the
// matching unlock func. Duplicate paths are locked once.
func lockOrdered(paths ...string) func() {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var held []*sync.Mutex
	for i, p := range sorted {
		if i > 0 && sorted[i-1] == p {
			continue
		}
		mu := lockFor(p)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
