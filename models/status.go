package models

import "time"

// EngineStatus is the read-only projection of the sync engine's state exposed
// to the business/UI layer. All fields are snapshots; the struct carries no
// live references.
type EngineStatus struct {
	// ConnectionState mirrors the transport session state.
	ConnectionState ConnectionState `json:"connection_state"`

	// PendingCount is the current offline mutation queue depth (ready plus
	// in-flight entries, excluding terminal failures).
	PendingCount int `json:"pending_count"`

	// FailedCount is the number of queue entries that exhausted their retry
	// budget and need operator attention.
	FailedCount int `json:"failed_count"`

	// LastSyncTime is when the last sync cycle completed successfully.
	LastSyncTime time.Time `json:"last_sync_time"`

	// LastError is the most recent terminal error surfaced by the engine,
	// or empty. Transient transport errors recovered by backoff never
	// appear here.
	LastError string `json:"last_error,omitempty"`

	// MeasuredRoundTripMillis is the latest heartbeat round-trip latency.
	MeasuredRoundTripMillis int64 `json:"measured_round_trip_millis"`

	// ConnectedPeers is the server-reported roster of other connected
	// clients.
	ConnectedPeers []string `json:"connected_peers,omitempty"`
}

// SyncEventType tags an event emitted by the sync coordinator over its event
// stream.
type SyncEventType string

const (
	SyncEventStarted   SyncEventType = "started"
	SyncEventProgress  SyncEventType = "progress"
	SyncEventCompleted SyncEventType = "completed"
	SyncEventError     SyncEventType = "error"
)

// SyncEvent is one element of the coordinator's typed event stream. Consumers
// subscribe to a channel of these instead of wiring UI callbacks, so the
// cycle can be tested without a live UI.
type SyncEvent struct {
	Type SyncEventType `json:"type"`

	// Sent and Applied report cycle progress: mutations acknowledged by the
	// server and server changes applied locally so far.
	Sent    int `json:"sent"`
	Applied int `json:"applied"`

	// Conflicts counts records routed through the conflict resolver during
	// this cycle.
	Conflicts int `json:"conflicts"`

	// Err carries the failure for error events; nil otherwise.
	Err error `json:"-"`

	At time.Time `json:"at"`
}
