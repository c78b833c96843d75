package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-d database DSN (client: SQLite file path, server: PostgreSQL URI)
//	-server-url sync server base URL for the client
//	-auto-sync enable the background sync job
//	-sync-interval background sync period (e.g., "30s", "5m")
//	-conflict-resolution conflict policy: server|client|manual
//	-max-retries per-entry retry budget
//	-batch-size queue entries drained per cycle
//	-compression-threshold frame size in bytes above which messages are compressed
//	-backup-dir backup artifact directory
//	-token-sign-key session token signing key
//	-token-issuer session token issuer name
//	-token-duration session token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var serverURL string
	var autoSync bool
	var syncInterval time.Duration
	var conflictResolution string
	var maxRetries int
	var batchSize int
	var compressionThreshold int
	var backupDir string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var jsonConfigPath string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&serverURL, "server-url", "", "Sync server base URL")
	flag.BoolVar(&autoSync, "auto-sync", false, "Enable background sync job")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync period (e.g., 30s, 5m)")
	flag.StringVar(&conflictResolution, "conflict-resolution", "", "Conflict policy: server|client|manual")
	flag.IntVar(&maxRetries, "max-retries", 0, "Per-entry retry budget")
	flag.IntVar(&batchSize, "batch-size", 0, "Queue entries drained per cycle")
	flag.IntVar(&compressionThreshold, "compression-threshold", 0, "Compression threshold in bytes")
	flag.StringVar(&backupDir, "backup-dir", "", "Backup artifact directory")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Sync: Sync{
			AutoSync:             autoSync,
			Interval:             syncInterval,
			ConflictResolution:   conflictResolution,
			MaxRetries:           maxRetries,
			BatchSize:            batchSize,
			CompressionThreshold: compressionThreshold,
			ServerURL:            serverURL,
		},
		Auth: Auth{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Backups: Backups{
				Dir: backupDir,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
