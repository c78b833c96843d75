// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/store"
	"github.com/MKhiriev/go-stock-keeper/models"
)

// session is one authenticated websocket connection. It owns the read loop;
// writes are serialized through writeMu because broadcasts arrive from other
// sessions' goroutines.
type session struct {
	clientID   string
	platform   string
	appVersion string

	conn    *websocket.Conn
	records store.ServerRecords
	hub     *Hub
	logger  *logger.Logger

	writeMu sync.Mutex
}

func newSession(clientID string, conn *websocket.Conn, records store.ServerRecords, hub *Hub, log *logger.Logger) *session {
	return &session{
		clientID: clientID,
		conn:     conn,
		records:  records,
		hub:      hub,
		logger:   log,
	}
}

// serve runs the handshake and then the frame loop until the connection
// drops. It blocks for the lifetime of the connection.
func (s *session) serve(ctx context.Context) {
	if err := s.handshake(ctx); err != nil {
		s.logger.Warn().Err(err).Str("func", "session.serve").Str("client_id", s.clientID).Msg("handshake failed")
		s.close("handshake failed")
		return
	}

	s.hub.register(s)
	defer s.hub.unregister(s)
	defer s.close("")

	for {
		msg, err := s.read(ctx)
		if err != nil {
			return
		}

		switch msg.Type {
		case models.MessagePing:
			err = s.handlePing(ctx, msg)
		case models.MessageMutation:
			err = s.handleMutation(ctx, msg)
		case models.MessageSyncRequest:
			err = s.handleSyncRequest(ctx, msg)
		default:
			err = s.writeError(ctx, codeBadFrame, "unexpected frame type "+string(msg.Type))
		}
		if err != nil {
			return
		}
	}
}

// handshake consumes the client's capabilities frame and answers with the
// server's, carrying the current peer roster.
func (s *session) handshake(ctx context.Context) error {
	msg, err := s.read(ctx)
	if err != nil {
		return err
	}
	if msg.Type != models.MessageCapabilities {
		return ErrHandshakeExpected
	}

	var caps models.CapabilitiesPayload
	if err = msg.DecodePayload(&caps); err != nil {
		return err
	}
	s.platform = caps.Platform
	s.appVersion = caps.AppVersion

	reply, err := models.NewMessage(models.MessageCapabilities, models.CapabilitiesPayload{
		ClientID: s.clientID,
		Peers:    s.hub.peers(s.clientID),
	})
	if err != nil {
		return err
	}

	return s.write(ctx, reply)
}

func (s *session) handlePing(ctx context.Context, msg models.Message) error {
	var ping models.PingPayload
	if err := msg.DecodePayload(&ping); err != nil {
		return s.writeError(ctx, codeBadFrame, err.Error())
	}

	pong, err := models.NewMessage(models.MessagePong, models.PongPayload{
		SentAt: ping.SentAt,
		Peers:  s.hub.peers(s.clientID),
	})
	if err != nil {
		return err
	}

	return s.write(ctx, pong)
}

func (s *session) handleMutation(ctx context.Context, msg models.Message) error {
	var mutation models.MutationPayload
	if err := msg.DecodePayload(&mutation); err != nil {
		return s.writeError(ctx, codeBadFrame, err.Error())
	}

	ack, err := s.records.ApplyMutation(ctx, s.clientID, mutation)
	if err != nil {
		s.logger.Err(err).
			Str("func", "session.handleMutation").
			Str("client_id", s.clientID).
			Str("key", mutation.IdempotencyKey).
			Msg("error applying mutation")
		return s.writeError(ctx, codeApplyFailed, "mutation "+mutation.IdempotencyKey+" failed")
	}

	reply, err := models.NewMessage(models.MessageMutationAck, ack)
	if err != nil {
		return err
	}
	if err = s.write(ctx, reply); err != nil {
		return err
	}

	if !ack.Accepted {
		return nil
	}

	// other live clients see the accepted change immediately instead of
	// waiting for their next sync request
	change, err := models.NewMessage(models.MessageServerChange, models.ServerChangePayload{
		EntityType: mutation.EntityType,
		EntityID:   mutation.EntityID,
		Data:       mutation.Data,
		Version:    ack.NewVersion,
		Deleted:    mutation.Operation == models.OperationDelete,
	})
	if err != nil {
		return err
	}
	s.hub.broadcast(ctx, s.clientID, change)

	return nil
}

func (s *session) handleSyncRequest(ctx context.Context, msg models.Message) error {
	var req models.SyncRequestPayload
	if err := msg.DecodePayload(&req); err != nil {
		return s.writeError(ctx, codeBadFrame, err.Error())
	}

	changes, err := s.records.ChangesSince(ctx, req.Since)
	if err != nil {
		s.logger.Err(err).
			Str("func", "session.handleSyncRequest").
			Str("client_id", s.clientID).
			Time("since", req.Since).
			Msg("error listing changes")
		return s.writeError(ctx, codeSyncFailed, "sync request failed")
	}

	for _, change := range changes {
		frame, frameErr := models.NewMessage(models.MessageServerChange, change)
		if frameErr != nil {
			return frameErr
		}
		if err = s.write(ctx, frame); err != nil {
			return err
		}
	}

	// the stream is terminated by a done marker carrying the server clock,
	// which becomes the client's next watermark
	done, err := models.NewMessage(models.MessageSyncRequest, models.SyncDonePayload{
		Changes:    len(changes),
		ServerTime: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.write(ctx, done)
}

func (s *session) read(ctx context.Context) (models.Message, error) {
	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return models.Message{}, err
	}

	var msg models.Message
	if err = json.Unmarshal(data, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (s *session) write(ctx context.Context, msg models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.Write(ctx, websocket.MessageText, data)
}

func (s *session) writeError(ctx context.Context, code, message string) error {
	frame, err := models.NewMessage(models.MessageError, models.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	return s.write(ctx, frame)
}

func (s *session) close(reason string) {
	s.conn.Close(websocket.StatusNormalClosure, reason)
}
