// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"sort"
	"sync"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

// Hub tracks the live client sessions and fans accepted changes out to every
// peer except the originator. One session per client ID: a reconnect displaces
// the previous connection.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session

	logger *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		logger:   log,
	}
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	previous := h.sessions[s.clientID]
	h.sessions[s.clientID] = s
	h.mu.Unlock()

	if previous != nil {
		previous.close("superseded by a newer connection")
	}

	h.logger.Info().Str("func", "Hub.register").Str("client_id", s.clientID).Msg("client connected")
}

// unregister removes the session unless a newer connection for the same
// client has already taken its place.
func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	if h.sessions[s.clientID] == s {
		delete(h.sessions, s.clientID)
	}
	h.mu.Unlock()

	h.logger.Info().Str("func", "Hub.unregister").Str("client_id", s.clientID).Msg("client disconnected")
}

// peers returns the sorted roster of connected client IDs, excluding the
// asking client itself.
func (h *Hub) peers(exceptClientID string) []string {
	h.mu.RLock()
	roster := make([]string, 0, len(h.sessions))
	for clientID := range h.sessions {
		if clientID != exceptClientID {
			roster = append(roster, clientID)
		}
	}
	h.mu.RUnlock()

	sort.Strings(roster)
	return roster
}

// broadcast delivers msg to every connected session except the originator.
// Delivery is best effort: a dead peer is dropped by its own read loop.
func (h *Hub) broadcast(ctx context.Context, fromClientID string, msg models.Message) {
	h.mu.RLock()
	targets := make([]*session, 0, len(h.sessions))
	for clientID, s := range h.sessions {
		if clientID != fromClientID {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, target := range targets {
		if err := target.write(ctx, msg); err != nil {
			h.logger.Warn().Err(err).
				Str("func", "Hub.broadcast").
				Str("client_id", target.clientID).
				Msg("error delivering broadcast to peer")
		}
	}
}
