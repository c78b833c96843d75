package config

import (
	"fmt"
	"time"
)

// ServerDB contains database connection settings for the sync server.
type ServerDB struct {
	// DSN is the PostgreSQL connection string.
	DSN string
}

// ServerConfig is the top-level server configuration assembled from
// [StructuredConfig].
type ServerConfig struct {
	// HTTPAddress is the listen address in "host:port" format.
	HTTPAddress string
	// RequestTimeout bounds inbound non-websocket requests.
	RequestTimeout time.Duration
	// Auth contains session-token verification settings.
	Auth ClientAuth
	// DB holds the record store connection settings.
	DB ServerDB
}

// GetServerConfig builds and validates a server-specific config view from the
// merged structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		HTTPAddress:    cfg.Server.HTTPAddress,
		RequestTimeout: cfg.Server.RequestTimeout,
		Auth: ClientAuth{
			TokenSignKey:  cfg.Auth.TokenSignKey,
			TokenIssuer:   cfg.Auth.TokenIssuer,
			TokenDuration: cfg.Auth.TokenDuration,
		},
		DB: ServerDB{DSN: cfg.Storage.DB.DSN},
	}
	if serverCfg.RequestTimeout <= 0 {
		serverCfg.RequestTimeout = 30 * time.Second
	}

	return serverCfg, serverCfg.validate()
}
