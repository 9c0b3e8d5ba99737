// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"
	"sync"
	"time"
)

const idLayout = "20060102150405"

// IDGenerator issues timestamp-derived identifiers at one-second
// resolution. Identifiers issued within the same second get a "-NNN"
// suffix, so they stay unique and still sort in issue order.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	base string
	seq  int
}

// NewIDGenerator returns a generator reading the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh identifier. taken, when non-nil, reports whether a
// candidate already exists in the target namespace; such candidates are
// skipped.
func (g *IDGenerator) Next(taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := g.now().Format(idLayout)
	if base == g.base {
		g.seq++
	} else {
		g.base = base
		g.seq = 0
	}

	for {
		id := base
		if g.seq > 0 {
			id = fmt.Sprintf("%s-%03d", base, g.seq)
		}
		if taken == nil || !taken(id) {
			return id
		}
		g.seq++
	}
}
