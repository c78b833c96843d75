package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")

	// Durations in JSON must be valid for the Duration wrapper (string, e.g. "30s");
	// the sync interval is the integer-milliseconds form written by the settings screen.
	jsonBody := `{
		"sync": {
			"auto_sync": true,
			"sync_interval_millis": 45000,
			"conflict_resolution": "manual",
			"max_retries": 3,
			"batch_size": 20,
			"compression_threshold": 1024,
			"server_url": "http://sync.local:8080"
		},
		"auth": {
			"token_sign_key": "jwt_secret",
			"token_issuer": "test_issuer",
			"token_duration": "1h"
		},
		"server": {
			"http_address": "localhost:8080",
			"request_timeout": "30s"
		},
		"storage": {
			"db": { "dsn": "stockkeeper.db" },
			"backups": { "dir": "/var/backups" }
		}
	}`

	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Sync.AutoSync)
	assert.Equal(t, 45*time.Second, cfg.Sync.Interval)
	assert.Equal(t, "manual", cfg.Sync.ConflictResolution)
	assert.Equal(t, 3, cfg.Sync.MaxRetries)
	assert.Equal(t, 20, cfg.Sync.BatchSize)
	assert.Equal(t, 1024, cfg.Sync.CompressionThreshold)
	assert.Equal(t, "http://sync.local:8080", cfg.Sync.ServerURL)

	assert.Equal(t, "jwt_secret", cfg.Auth.TokenSignKey)
	assert.Equal(t, "test_issuer", cfg.Auth.TokenIssuer)
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)

	assert.Equal(t, "stockkeeper.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/var/backups", cfg.Storage.Backups.Dir)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	cfg, err := parseJSON("/no/such/config.json")

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"sync": `), 0o600))

	cfg, err := parseJSON(p)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
		isErr bool
	}{
		{name: "string duration", input: `"90s"`, want: 90 * time.Second},
		{name: "numeric nanoseconds", input: `1000000000`, want: time.Second},
		{name: "invalid string", input: `"ninety seconds"`, isErr: true},
		{name: "wrong type", input: `[1, 2]`, isErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalJSON([]byte(tt.input))

			if tt.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}
