package config

import (
	"fmt"
	"time"
)

// ClientSync holds the sync engine options derived from the shared structured
// config, with defaults applied.
type ClientSync struct {
	// AutoSync enables the background sync job.
	AutoSync bool
	// Interval is the background sync period.
	Interval time.Duration
	// ConflictResolution is the conflict policy name: server|client|manual.
	ConflictResolution string
	// MaxRetries is the per-entry retry budget.
	MaxRetries int
	// BatchSize is the maximum number of queue entries drained per cycle.
	BatchSize int
	// CompressionThreshold is the outbound frame size in bytes above which
	// websocket compression kicks in.
	CompressionThreshold int
	// ServerURL is the sync server base URL.
	ServerURL string
}

// ClientAuth holds session-token settings used by the client when
// authenticating the websocket upgrade.
type ClientAuth struct {
	// TokenSignKey is the shared secret for signing session tokens.
	TokenSignKey string
	// TokenIssuer is the expected/emitted "iss" claim.
	TokenIssuer string
	// TokenDuration is the validity window of issued tokens.
	TokenDuration time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path of the local store.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
	// BackupDir is the directory where snapshot artifacts are written.
	BackupDir string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Sync contains the engine options.
	Sync ClientSync
	// Auth contains session-token settings.
	Auth ClientAuth
	// Storage contains client storage settings.
	Storage ClientStorage
}

// Defaults applied by GetClientConfig when the merged configuration leaves a
// sync option unset.
const (
	DefaultSyncInterval         = 5 * time.Minute
	DefaultMaxRetries           = 5
	DefaultBatchSize            = 50
	DefaultCompressionThreshold = 4 << 10
	DefaultConflictResolution   = "server"
)

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, applies engine defaults, and validates the
// resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Sync: ClientSync{
			AutoSync:             cfg.Sync.AutoSync,
			Interval:             cfg.Sync.Interval,
			ConflictResolution:   cfg.Sync.ConflictResolution,
			MaxRetries:           cfg.Sync.MaxRetries,
			BatchSize:            cfg.Sync.BatchSize,
			CompressionThreshold: cfg.Sync.CompressionThreshold,
			ServerURL:            cfg.Sync.ServerURL,
		},
		Auth: ClientAuth{
			TokenSignKey:  cfg.Auth.TokenSignKey,
			TokenIssuer:   cfg.Auth.TokenIssuer,
			TokenDuration: cfg.Auth.TokenDuration,
		},
		Storage: ClientStorage{
			DB:        ClientDB{DSN: cfg.Storage.DB.DSN},
			BackupDir: cfg.Storage.Backups.Dir,
		},
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = DefaultSyncInterval
	}
	if cfg.Sync.MaxRetries <= 0 {
		cfg.Sync.MaxRetries = DefaultMaxRetries
	}
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = DefaultBatchSize
	}
	if cfg.Sync.CompressionThreshold <= 0 {
		cfg.Sync.CompressionThreshold = DefaultCompressionThreshold
	}
	if cfg.Sync.ConflictResolution == "" {
		cfg.Sync.ConflictResolution = DefaultConflictResolution
	}
}
