// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"sync"
	"time"
)

// Backoff tracks the reconnect delay: it doubles on every failed attempt up
// to the cap, and resets to the minimum once a connection has stayed up past
// the stability window.
type Backoff struct {
	mu sync.Mutex

	min       time.Duration
	max       time.Duration
	stability time.Duration

	current     time.Duration
	failures    int
	connectedAt time.Time
}

func NewBackoff(min, max, stabilityWindow time.Duration) *Backoff {
	return &Backoff{min: min, max: max, stability: stabilityWindow, current: min}
}

// NextDelay returns the delay to wait before the upcoming connect attempt.
func (b *Backoff) NextDelay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Failure records a failed connect attempt. The first failure keeps the
// minimum delay; every further one doubles it up to the cap, giving the
// 1s, 2s, 4s, ... 30s progression.
func (b *Backoff) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures > 0 {
		b.current *= 2
		if b.current > b.max {
			b.current = b.max
		}
	}
	b.failures++
}

// Connected records a successful handshake.
func (b *Backoff) Connected(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connectedAt = at
}

// Disconnected resets the delay to the minimum if the connection stayed up
// past the stability window; a connection that died quickly keeps escalating.
func (b *Backoff) Disconnected(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connectedAt.IsZero() && at.Sub(b.connectedAt) >= b.stability {
		b.current = b.min
		b.failures = 0
	}
	b.connectedAt = time.Time{}
}
