package models

import "time"

// SyncStatus is the per-record synchronization state tracked by the engine.
type SyncStatus string

const (
	// SyncStatusPending marks a record that was changed locally and has not
	// yet been acknowledged by the server.
	SyncStatusPending SyncStatus = "pending"

	// SyncStatusSynced marks a record whose version matches the last version
	// accepted by the server.
	SyncStatusSynced SyncStatus = "synced"

	// SyncStatusConflict marks a record with an unresolved concurrent edit:
	// both the client and the server changed the same logical version
	// independently and the configured policy is manual resolution.
	SyncStatusConflict SyncStatus = "conflict"
)

// Record is a business entity row as tracked by the sync engine. The business
// payload itself is opaque to the engine; only the sync bookkeeping columns
// are interpreted.
//
// Invariants: Version strictly increases on every local or server-applied
// write; SyncStatus == synced implies Version == LastServerVersion.
type Record struct {
	// EntityType is the business table the record belongs to
	// (e.g. "suppliers", "invoices", "payments").
	EntityType string `json:"entity_type"`

	// EntityID identifies the record within its entity type.
	EntityID string `json:"entity_id"`

	// Payload is the serialized business data. The engine never inspects it.
	Payload []byte `json:"payload"`

	// Version is a monotonically increasing per-record counter, bumped on
	// every local write and set to the server's version on server-applied
	// writes.
	Version int64 `json:"version"`

	// SyncStatus is the record's current synchronization state.
	SyncStatus SyncStatus `json:"sync_status"`

	// UpdatedAt is the wall-clock time of the last write to this row.
	UpdatedAt time.Time `json:"updated_at"`

	// LastServerVersion is the last version number known to have been
	// accepted by the server, or nil if the record has never been
	// acknowledged.
	LastServerVersion *int64 `json:"last_server_version,omitempty"`

	// ServerPayload holds the conflicting server-side payload while the
	// record is in the conflict state under the manual policy. It is nil
	// otherwise.
	ServerPayload []byte `json:"server_payload,omitempty"`

	// ServerVersion is the server version that produced ServerPayload. It is
	// nil outside the conflict state.
	ServerVersion *int64 `json:"server_version,omitempty"`
}

// TableName returns the name of the local database table associated with the
// Record model.
func (r *Record) TableName() string {
	return "records"
}
