// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The go-stock-keeper Authors

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType enumerates the frame types of the sync wire protocol.
type MessageType string

const (
	MessageCapabilities MessageType = "capabilities"
	MessagePing         MessageType = "ping"
	MessagePong         MessageType = "pong"
	MessageMutation     MessageType = "mutation"
	MessageMutationAck  MessageType = "mutation_ack"
	MessageServerChange MessageType = "server_change"
	MessageSyncRequest  MessageType = "sync_request"
	MessageError        MessageType = "error"
)

// Message is the framing envelope of the sync wire protocol. Every frame is
// a JSON object {type, payload}; the payload schema is determined by Type.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload and wraps it in a Message of the given type.
func NewMessage(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Message{Type: t, Payload: raw}, nil
}

// DecodePayload unmarshals the message payload into dst.
func (m Message) DecodePayload(dst any) error {
	if err := json.Unmarshal(m.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return nil
}

// CapabilitiesPayload is sent by the client as the first frame of every
// connection. The server replies with its own capabilities frame.
type CapabilitiesPayload struct {
	// ClientID is stable across reconnects and process restarts.
	ClientID string `json:"client_id"`

	// Platform identifies the client operating system (e.g. "linux/amd64").
	Platform string `json:"platform"`

	// AppVersion is the semantic version of the client application.
	AppVersion string `json:"app_version"`

	// Peers is populated only in the server's reply: the client IDs of all
	// currently connected peers.
	Peers []string `json:"peers,omitempty"`
}

// PingPayload carries the client's send timestamp so round-trip latency can
// be measured from the echoing pong.
type PingPayload struct {
	SentAt time.Time `json:"sent_at"`
}

// PongPayload echoes the ping timestamp and carries the current peer roster,
// which the client folds into its status projection.
type PongPayload struct {
	SentAt time.Time `json:"sent_at"`
	Peers  []string  `json:"peers,omitempty"`
}

// MutationPayload is one outbound local change drained from the offline
// mutation queue.
type MutationPayload struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	EntityType     string          `json:"entityType"`
	EntityID       string          `json:"id"`
	Operation      Operation       `json:"operation"`
	Data           json.RawMessage `json:"data,omitempty"`
	BaseVersion    int64           `json:"baseVersion"`
}

// MutationAckPayload is the server's verdict on a single mutation.
type MutationAckPayload struct {
	IdempotencyKey string `json:"idempotencyKey"`
	Accepted       bool   `json:"accepted"`

	// NewVersion is the version the server assigned when Accepted is true.
	NewVersion int64 `json:"newVersion,omitempty"`

	// ConflictingServerData holds the server's current payload when the
	// mutation was rejected by the optimistic version check.
	ConflictingServerData json.RawMessage `json:"conflictingServerData,omitempty"`

	// ConflictingServerVersion is the server's current version for the
	// rejected record.
	ConflictingServerVersion int64 `json:"conflictingServerVersion,omitempty"`
}

// ServerChangePayload is one authoritative record state pushed by the server,
// either in response to a sync_request or as a live broadcast of another
// peer's accepted mutation.
type ServerChangePayload struct {
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"id"`
	Data       json.RawMessage `json:"data,omitempty"`
	Version    int64           `json:"version"`
	Deleted    bool            `json:"deleted,omitempty"`
}

// SyncRequestPayload asks the server for all changes committed after Since.
type SyncRequestPayload struct {
	Since time.Time `json:"since"`
}

// SyncDonePayload terminates the stream of server_change frames answering a
// sync_request. It rides in a sync_request-typed frame sent by the server.
type SyncDonePayload struct {
	Changes    int       `json:"changes"`
	ServerTime time.Time `json:"server_time"`
}

// ErrorPayload carries a protocol-level failure description.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
