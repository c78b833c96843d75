// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The go-stock-keeper Authors

package models

import "time"

// BackupArtifact describes one point-in-time snapshot of the local store.
// Artifacts are immutable after creation; retention/pruning is handled by an
// external policy.
type BackupArtifact struct {
	// Path is the location of the compressed snapshot file. The file name
	// starts with an ISO-8601 timestamp so artifacts order lexicographically
	// by recency.
	Path string `json:"path"`

	// CreatedAt is the capture time.
	CreatedAt time.Time `json:"created_at"`

	// SizeBytes is the size of the compressed artifact on disk.
	SizeBytes int64 `json:"size_bytes"`

	// Checksum is the hex-encoded SHA-256 of the captured (uncompressed)
	// store bytes.
	Checksum string `json:"checksum"`

	// SourceSnapshotVersion is the sync metadata's version counter at
	// capture time, so a restore can be correlated with a known sync state.
	SourceSnapshotVersion int64 `json:"source_snapshot_version"`
}
