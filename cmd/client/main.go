package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/MKhiriev/go-stock-keeper/internal/backup"
	"github.com/MKhiriev/go-stock-keeper/internal/config"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/service"
	"github.com/MKhiriev/go-stock-keeper/internal/store"
	"github.com/MKhiriev/go-stock-keeper/internal/transport"
	"github.com/MKhiriev/go-stock-keeper/internal/utils"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("stock-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer storages.DB.Close()

	clientID, err := loadOrCreateClientID(cfg.Storage.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve client ID")
	}

	token, err := utils.GenerateSessionToken(cfg.Auth.TokenIssuer, clientID, cfg.Auth.TokenDuration, cfg.Auth.TokenSignKey)
	if err != nil {
		log.Fatal().Err(err).Msg("generate session token")
	}

	tr := transport.NewWebsocketTransport(transport.Options{
		ServerURL:            cfg.Sync.ServerURL,
		SessionToken:         token.SignedString,
		ClientID:             clientID,
		Platform:             runtime.GOOS + "/" + runtime.GOARCH,
		AppVersion:           buildVersion,
		CompressionThreshold: cfg.Sync.CompressionThreshold,
	}, log)

	policy, err := service.PolicyForName(cfg.Sync.ConflictResolution, storages.Records, storages.Queue, log)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve conflict policy")
	}
	resolver := service.NewResolver(storages.Records, policy, log)
	snapshots := backup.NewManager(storages.DB, storages.Metadata, cfg.Storage.BackupDir, log)

	engine := service.NewCoordinator(tr, storages.Records, storages.Queue, storages.Metadata, resolver, snapshots, service.CoordinatorOptions{
		BatchSize:  cfg.Sync.BatchSize,
		MaxRetries: cfg.Sync.MaxRetries,
	}, log)

	// entries stranded in flight by a previous crash go back to ready
	if err = engine.Recover(ctx); err != nil {
		log.Fatal().Err(err).Msg("recover mutation queue")
	}

	var job service.SyncJob
	if cfg.Sync.AutoSync {
		job = service.NewSyncJob(engine)
		job.Start(ctx, cfg.Sync.Interval)
	}

	engine.TriggerSync()
	log.Info().Str("client_id", clientID).Msg("sync engine running")

	<-ctx.Done()

	if job != nil {
		job.Stop()
	}
	engine.Shutdown()
	log.Info().Msg("sync engine stopped gracefully")
}

// loadOrCreateClientID keeps the client identifier in a sidecar file next to
// the local database so it survives restarts and reconnects.
func loadOrCreateClientID(dbPath string) (string, error) {
	idPath := filepath.Join(filepath.Dir(dbPath), "client-id")

	data, err := os.ReadFile(idPath)
	if err == nil && len(data) > 0 {
		return strings.TrimSpace(string(data)), nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	clientID := utils.NewUUIDGenerator().Generate()
	if err = os.WriteFile(idPath, []byte(clientID), 0o600); err != nil {
		return "", err
	}
	return clientID, nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
