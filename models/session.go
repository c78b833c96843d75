package models

import "time"

// ConnectionState is the lifecycle state of the transport's single logical
// connection to the server.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateSyncing      ConnectionState = "syncing"
)

// SyncSession describes the live connection. It is owned exclusively by the
// transport; other components read snapshots of it and never mutate it. A
// session is created on a connect attempt, destroyed on disconnect, and never
// persisted.
type SyncSession struct {
	// State is the current connection lifecycle state.
	State ConnectionState `json:"state"`

	// ClientID is stable across reconnects.
	ClientID string `json:"client_id"`

	// ConnectedAt is when the current connection completed its handshake.
	ConnectedAt time.Time `json:"connected_at"`

	// LastHeartbeatSentAt is when the most recent ping was sent.
	LastHeartbeatSentAt time.Time `json:"last_heartbeat_sent_at"`

	// LastHeartbeatAckAt is when the most recent pong was received.
	LastHeartbeatAckAt time.Time `json:"last_heartbeat_ack_at"`

	// MeasuredRoundTripMillis is the send-to-ack latency of the most recent
	// completed heartbeat exchange.
	MeasuredRoundTripMillis int64 `json:"measured_round_trip_millis"`

	// Peers is the roster of connected client IDs as last reported by the
	// server (handshake reply and pong frames).
	Peers []string `json:"peers,omitempty"`
}
