// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-stock-keeper/internal/config"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/utils"
	"github.com/MKhiriev/go-stock-keeper/models"
)

const (
	testSignKey = "test-sign-key"
	testIssuer  = "go-stock-keeper-test"
)

// recordsStub is an in-memory stand-in for the PostgreSQL record store.
type recordsStub struct {
	mu      sync.Mutex
	applied []models.MutationPayload
	ackFor  func(m models.MutationPayload) models.MutationAckPayload
	changes []models.ServerChangePayload
}

func (s *recordsStub) ApplyMutation(_ context.Context, _ string, m models.MutationPayload) (models.MutationAckPayload, error) {
	s.mu.Lock()
	s.applied = append(s.applied, m)
	s.mu.Unlock()

	if s.ackFor != nil {
		return s.ackFor(m), nil
	}
	return models.MutationAckPayload{IdempotencyKey: m.IdempotencyKey, Accepted: true, NewVersion: m.BaseVersion + 1}, nil
}

func (s *recordsStub) ChangesSince(context.Context, time.Time) ([]models.ServerChangePayload, error) {
	return s.changes, nil
}

func newTestServer(t *testing.T, records *recordsStub) *httptest.Server {
	t.Helper()

	auth := config.ClientAuth{TokenSignKey: testSignKey, TokenIssuer: testIssuer, TokenDuration: time.Hour}
	handler := NewHandler(records, auth, logger.Nop())

	srv := httptest.NewServer(handler.Init())
	t.Cleanup(srv.Close)
	return srv
}

// dialClient connects and completes the capabilities handshake, returning the
// open connection and the peer roster from the server's reply.
func dialClient(t *testing.T, srv *httptest.Server, clientID string) (*websocket.Conn, []string) {
	t.Helper()
	ctx := context.Background()

	token, err := utils.GenerateSessionToken(testIssuer, clientID, time.Hour, testSignKey)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token.SignedString)

	conn, _, err := websocket.Dial(ctx, srv.URL+"/ws", &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	writeTestFrame(t, conn, models.MessageCapabilities, models.CapabilitiesPayload{
		ClientID:   clientID,
		Platform:   "linux/amd64",
		AppVersion: "test",
	})

	reply := readTestFrame(t, conn)
	require.Equal(t, models.MessageCapabilities, reply.Type)
	var caps models.CapabilitiesPayload
	require.NoError(t, reply.DecodePayload(&caps))

	return conn, caps.Peers
}

func writeTestFrame(t *testing.T, conn *websocket.Conn, msgType models.MessageType, payload any) {
	t.Helper()

	msg, err := models.NewMessage(msgType, payload)
	require.NoError(t, err)
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, data))
}

func readTestFrame(t *testing.T, conn *websocket.Conn) models.Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg models.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHandler_Health(t *testing.T) {
	srv := newTestServer(t, &recordsStub{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_WS_RejectsMissingToken(t *testing.T) {
	srv := newTestServer(t, &recordsStub{})

	_, resp, err := websocket.Dial(context.Background(), srv.URL+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_WS_RejectsForgedToken(t *testing.T) {
	srv := newTestServer(t, &recordsStub{})

	token, err := utils.GenerateSessionToken(testIssuer, "intruder", time.Hour, "wrong-key")
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token.SignedString)

	_, resp, err := websocket.Dial(context.Background(), srv.URL+"/ws", &websocket.DialOptions{HTTPHeader: header})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_WS_HandshakeReportsPeers(t *testing.T) {
	srv := newTestServer(t, &recordsStub{})

	_, peersA := dialClient(t, srv, "desktop-a")
	assert.Empty(t, peersA, "first client sees an empty roster")

	_, peersB := dialClient(t, srv, "desktop-b")
	assert.Equal(t, []string{"desktop-a"}, peersB)
}

func TestHandler_WS_PingPongEchoesTimestampAndRoster(t *testing.T) {
	srv := newTestServer(t, &recordsStub{})

	connA, _ := dialClient(t, srv, "desktop-a")
	dialClient(t, srv, "desktop-b")

	sentAt := time.Now().UTC().Truncate(time.Millisecond)
	writeTestFrame(t, connA, models.MessagePing, models.PingPayload{SentAt: sentAt})

	pong := readTestFrame(t, connA)
	require.Equal(t, models.MessagePong, pong.Type)

	var payload models.PongPayload
	require.NoError(t, pong.DecodePayload(&payload))
	assert.True(t, payload.SentAt.Equal(sentAt), "pong must echo the ping timestamp")
	assert.Equal(t, []string{"desktop-b"}, payload.Peers)
}

func TestHandler_WS_MutationAckedAndBroadcast(t *testing.T) {
	records := &recordsStub{}
	srv := newTestServer(t, records)

	connA, _ := dialClient(t, srv, "desktop-a")
	connB, _ := dialClient(t, srv, "desktop-b")

	writeTestFrame(t, connB, models.MessageMutation, models.MutationPayload{
		IdempotencyKey: "suppliers:s1:1",
		EntityType:     "suppliers",
		EntityID:       "s1",
		Operation:      models.OperationCreate,
		Data:           []byte(`{"name":"Acme"}`),
		BaseVersion:    0,
	})

	// отправитель получает подтверждение
	ackMsg := readTestFrame(t, connB)
	require.Equal(t, models.MessageMutationAck, ackMsg.Type)
	var ack models.MutationAckPayload
	require.NoError(t, ackMsg.DecodePayload(&ack))
	assert.True(t, ack.Accepted)
	assert.Equal(t, int64(1), ack.NewVersion)

	// второй клиент получает изменение сразу, не дожидаясь sync_request
	changeMsg := readTestFrame(t, connA)
	require.Equal(t, models.MessageServerChange, changeMsg.Type)
	var change models.ServerChangePayload
	require.NoError(t, changeMsg.DecodePayload(&change))
	assert.Equal(t, "s1", change.EntityID)
	assert.Equal(t, int64(1), change.Version)
	assert.False(t, change.Deleted)
}

func TestHandler_WS_RejectedMutationNotBroadcast(t *testing.T) {
	records := &recordsStub{
		ackFor: func(m models.MutationPayload) models.MutationAckPayload {
			return models.MutationAckPayload{
				IdempotencyKey:           m.IdempotencyKey,
				Accepted:                 false,
				ConflictingServerData:    []byte(`{"name":"Acme (HQ)"}`),
				ConflictingServerVersion: 4,
			}
		},
	}
	srv := newTestServer(t, records)

	connA, _ := dialClient(t, srv, "desktop-a")
	connB, _ := dialClient(t, srv, "desktop-b")

	writeTestFrame(t, connB, models.MessageMutation, models.MutationPayload{
		IdempotencyKey: "suppliers:s1:2",
		EntityType:     "suppliers",
		EntityID:       "s1",
		Operation:      models.OperationUpdate,
		BaseVersion:    1,
	})

	ackMsg := readTestFrame(t, connB)
	require.Equal(t, models.MessageMutationAck, ackMsg.Type)
	var ack models.MutationAckPayload
	require.NoError(t, ackMsg.DecodePayload(&ack))
	assert.False(t, ack.Accepted)
	assert.Equal(t, int64(4), ack.ConflictingServerVersion)

	// отклонённая мутация не рассылается остальным
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, _, err := connA.Read(ctx)
	require.Error(t, err, "peers must not see a rejected mutation")
}

func TestHandler_WS_SyncRequestStreamsChangesThenDone(t *testing.T) {
	records := &recordsStub{
		changes: []models.ServerChangePayload{
			{EntityType: "suppliers", EntityID: "s1", Data: []byte(`{"name":"Acme"}`), Version: 3},
			{EntityType: "invoices", EntityID: "i1", Version: 2, Deleted: true},
		},
	}
	srv := newTestServer(t, records)

	conn, _ := dialClient(t, srv, "desktop-a")
	writeTestFrame(t, conn, models.MessageSyncRequest, models.SyncRequestPayload{Since: time.Now().Add(-time.Hour)})

	first := readTestFrame(t, conn)
	require.Equal(t, models.MessageServerChange, first.Type)

	second := readTestFrame(t, conn)
	require.Equal(t, models.MessageServerChange, second.Type)
	var tombstone models.ServerChangePayload
	require.NoError(t, second.DecodePayload(&tombstone))
	assert.True(t, tombstone.Deleted)

	done := readTestFrame(t, conn)
	require.Equal(t, models.MessageSyncRequest, done.Type)
	var donePayload models.SyncDonePayload
	require.NoError(t, done.DecodePayload(&donePayload))
	assert.Equal(t, 2, donePayload.Changes)
	assert.False(t, donePayload.ServerTime.IsZero())
}

func TestHandler_WS_UnknownFrameAnswersError(t *testing.T) {
	srv := newTestServer(t, &recordsStub{})

	conn, _ := dialClient(t, srv, "desktop-a")
	writeTestFrame(t, conn, models.MessageType("bogus"), nil)

	reply := readTestFrame(t, conn)
	require.Equal(t, models.MessageError, reply.Type)
	var payload models.ErrorPayload
	require.NoError(t, reply.DecodePayload(&payload))
	assert.Equal(t, codeBadFrame, payload.Code)
}
