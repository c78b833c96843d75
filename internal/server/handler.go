// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-stock-keeper/internal/config"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/store"
	"github.com/MKhiriev/go-stock-keeper/internal/utils"
)

// Handler owns the sync server's HTTP surface: the health probe and the
// authenticated websocket endpoint.
type Handler struct {
	records store.ServerRecords
	hub     *Hub
	auth    config.ClientAuth

	logger *logger.Logger
}

func NewHandler(records store.ServerRecords, auth config.ClientAuth, log *logger.Logger) *Handler {
	log.Info().Msg("sync handler created")
	return &Handler{
		records: records,
		hub:     NewHub(log),
		auth:    auth,
		logger:  log,
	}
}

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogger)
	router.Use(h.withLogging)

	router.Get("/health", h.health)

	router.Group(func(r chi.Router) {
		r.Use(h.withAuth)
		r.Get("/ws", h.serveWS)
	})

	return router
}

// health answers the clients' cheap pre-dial probe.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// serveWS upgrades the request and serves the sync session until the
// connection drops. The client ID was placed in the context by withAuth.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	clientID, ok := utils.GetClientIDFromContext(r.Context())
	if !ok {
		log.Error().Str("func", "Handler.serveWS").Msg("no client ID in context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	})
	if err != nil {
		log.Err(err).Str("func", "Handler.serveWS").Msg("error upgrading connection")
		return
	}

	newSession(clientID, conn, h.records, h.hub, h.logger).serve(r.Context())
}

// withAuth verifies the bearer token of the websocket upgrade and stores the
// authenticated client ID in the request context.
func (h *Handler) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseSessionToken(tokenString, h.auth.TokenSignKey, h.auth.TokenIssuer)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.ClientIDCtxKey, token.ClientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
