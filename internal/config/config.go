// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The go-stock-keeper Authors

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-stock-keeper sync engine. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Sync holds the synchronization engine options recognized by the
	// business layer (auto sync, interval, conflict policy, retry budget,
	// batch size, compression threshold, server URL).
	Sync Sync `envPrefix:"SYNC_"`

	// Auth holds session-token parameters used to authenticate the
	// websocket upgrade between client and server.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds configuration for the persistence backends: the local
	// SQLite store on the client, PostgreSQL on the server, and the backup
	// artifact directory.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the sync
	// server's HTTP listener.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Sync groups the options that govern the sync engine's behaviour.
type Sync struct {
	// AutoSync enables the background sync job. When false, cycles run only
	// on explicit TriggerSync calls.
	// Env: SYNC_AUTO
	AutoSync bool `env:"AUTO"`

	// Interval is the period of the background sync job (e.g. "30s", "5m").
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// ConflictResolution selects the conflict policy: "server", "client",
	// or "manual".
	// Env: SYNC_CONFLICT_RESOLUTION
	ConflictResolution string `env:"CONFLICT_RESOLUTION"`

	// MaxRetries is the per-entry retry budget before a queue entry becomes
	// a terminal failure.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BatchSize is the maximum number of queue entries drained per cycle.
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// CompressionThreshold is the frame size in bytes above which outbound
	// websocket messages are compressed.
	// Env: SYNC_COMPRESSION_THRESHOLD
	CompressionThreshold int `env:"COMPRESSION_THRESHOLD"`

	// ServerURL is the base URL of the sync server
	// (e.g. "http://localhost:8080").
	// Env: SYNC_SERVER_URL
	ServerURL string `env:"SERVER_URL"`
}

// Auth holds session-token settings shared by client and server.
type Auth struct {
	// TokenSignKey is the secret key used to sign and verify session JWT
	// tokens. Must be kept confidential.
	// Env: AUTH_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token and
	// validated on every websocket upgrade.
	// Env: AUTH_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a session token remains valid after
	// issuance (e.g. "1h", "30m").
	// Env: AUTH_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Storage groups the configuration for all storage backends used by the
// application.
type Storage struct {
	// DB holds the database connection settings: a SQLite file path on the
	// client, a PostgreSQL DSN on the server.
	DB DB `envPrefix:"DB_"`

	// Backups holds the backup artifact directory settings.
	Backups Backups `envPrefix:"BACKUPS_"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is the connection string used to open the database
	// (client: path to the SQLite file; server: PostgreSQL URI).
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Backups holds file-system settings for backup artifacts.
type Backups struct {
	// Dir is the directory where snapshot artifacts are written.
	// Env: STORAGE_BACKUPS_DIR
	Dir string `env:"DIR"`
}

// Server holds network and timeout settings for the sync server.
type Server struct {
	// HTTPAddress is the TCP address on which the server listens, in
	// "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
