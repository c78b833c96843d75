package models

import "time"

// SyncMetadata is the engine's single global bookkeeping row. It is updated
// only by the sync coordinator at the end of a successful cycle.
type SyncMetadata struct {
	// LastSyncTime is the server watermark of the last completed cycle;
	// the next sync_request asks for changes after this instant.
	LastSyncTime time.Time `json:"last_sync_time"`

	// SyncVersionCounter increments once per completed cycle and stamps
	// backup artifacts (BackupArtifact.SourceSnapshotVersion).
	SyncVersionCounter int64 `json:"sync_version_counter"`

	// PendingCount is the queue depth recorded at the end of the last cycle.
	PendingCount int `json:"pending_count"`
}

// TableName returns the name of the local database table associated with the
// SyncMetadata model.
func (m *SyncMetadata) TableName() string {
	return "sync_metadata"
}
