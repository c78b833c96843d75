// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

var (
	// ErrBackupIO wraps any filesystem failure while capturing a snapshot.
	ErrBackupIO = errors.New("backup io error")
	// ErrRestoreIO wraps any filesystem failure while restoring. A failed
	// restore leaves the store untouched and the safety snapshot intact.
	ErrRestoreIO = errors.New("restore io error")
	// ErrChecksumMismatch means the artifact bytes do not hash to the
	// recorded checksum.
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")
)

const (
	artifactSuffix = ".db.gz"
	checksumSuffix = ".sha256"

	// timestampLayout keeps artifact names lexicographically ordered by
	// recency. Colons are not portable in file names, so the time part uses
	// dashes.
	timestampLayout = "2006-01-02T15-04-05.000Z"
)

// Manager implements Snapshotter against a file-backed SQLite store.
type Manager struct {
	db       storeLocker
	metadata metadataGetter
	dir      string
	logger   *logger.Logger
}

func NewManager(db storeLocker, metadata metadataGetter, dir string, log *logger.Logger) *Manager {
	return &Manager{db: db, metadata: metadata, dir: dir, logger: log}
}

func (m *Manager) CreateSnapshot(ctx context.Context) (models.BackupArtifact, error) {
	meta, err := m.metadata.Get(ctx)
	if err != nil {
		m.logger.Err(err).Str("func", "Manager.CreateSnapshot").Msg("error reading sync metadata")
		return models.BackupArtifact{}, err
	}

	if err = os.MkdirAll(m.dir, 0o755); err != nil {
		return models.BackupArtifact{}, errors.Join(ErrBackupIO, err)
	}

	createdAt := time.Now().UTC()
	base := createdAt.Format(timestampLayout)
	rawPath := filepath.Join(m.dir, base+".db.tmp")
	artifactPath := filepath.Join(m.dir, base+artifactSuffix)

	if err = m.copyStoreFile(rawPath); err != nil {
		m.logger.Err(err).Str("func", "Manager.CreateSnapshot").Msg("error copying store file")
		return models.BackupArtifact{}, err
	}
	defer os.Remove(rawPath)

	checksum, err := compressFile(rawPath, artifactPath)
	if err != nil {
		m.logger.Err(err).Str("func", "Manager.CreateSnapshot").Msg("error compressing snapshot")
		os.Remove(artifactPath)
		return models.BackupArtifact{}, errors.Join(ErrBackupIO, err)
	}

	if err = os.WriteFile(artifactPath+checksumSuffix, []byte(checksum+"\n"), 0o644); err != nil {
		os.Remove(artifactPath)
		return models.BackupArtifact{}, errors.Join(ErrBackupIO, err)
	}

	info, err := os.Stat(artifactPath)
	if err != nil {
		return models.BackupArtifact{}, errors.Join(ErrBackupIO, err)
	}

	artifact := models.BackupArtifact{
		Path:                  artifactPath,
		CreatedAt:             createdAt,
		SizeBytes:             info.Size(),
		Checksum:              checksum,
		SourceSnapshotVersion: meta.SyncVersionCounter,
	}

	m.logger.Info().
		Str("func", "Manager.CreateSnapshot").
		Str("path", artifactPath).
		Int64("size_bytes", artifact.SizeBytes).
		Int64("snapshot_version", artifact.SourceSnapshotVersion).
		Msg("snapshot created")

	return artifact, nil
}

func (m *Manager) RestoreSnapshot(ctx context.Context, path string) error {
	if err := m.Verify(ctx, path); err != nil {
		return err
	}

	// a bad restore must itself be recoverable
	safety, err := m.CreateSnapshot(ctx)
	if err != nil {
		m.logger.Err(err).Str("func", "Manager.RestoreSnapshot").Msg("error capturing safety snapshot")
		return err
	}
	m.logger.Info().Str("func", "Manager.RestoreSnapshot").Str("safety_path", safety.Path).Msg("safety snapshot captured")

	restored := m.db.Path() + ".restore.tmp"
	if err = decompressFile(path, restored); err != nil {
		os.Remove(restored)
		return errors.Join(ErrRestoreIO, err)
	}

	m.db.LockWrites()
	err = os.Rename(restored, m.db.Path())
	m.db.UnlockWrites()
	if err != nil {
		os.Remove(restored)
		return errors.Join(ErrRestoreIO, err)
	}

	m.logger.Info().Str("func", "Manager.RestoreSnapshot").Str("path", path).Msg("store restored from snapshot")

	return nil
}

func (m *Manager) Verify(_ context.Context, path string) error {
	recorded, err := os.ReadFile(path + checksumSuffix)
	if err != nil {
		return errors.Join(ErrBackupIO, err)
	}

	actual, err := hashCompressedFile(path)
	if err != nil {
		return errors.Join(ErrBackupIO, err)
	}

	if strings.TrimSpace(string(recorded)) != actual {
		return fmt.Errorf("%w: %s", ErrChecksumMismatch, path)
	}

	return nil
}

func (m *Manager) List(ctx context.Context) ([]models.BackupArtifact, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Join(ErrBackupIO, err)
	}

	var artifacts []models.BackupArtifact
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), artifactSuffix) {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		createdAt, _ := time.Parse(timestampLayout, strings.TrimSuffix(entry.Name(), artifactSuffix))

		var checksum string
		if raw, err := os.ReadFile(path + checksumSuffix); err == nil {
			checksum = strings.TrimSpace(string(raw))
		}

		artifacts = append(artifacts, models.BackupArtifact{
			Path:      path,
			CreatedAt: createdAt,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
	}

	// имена отсортированы по времени, самые свежие первыми
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path > artifacts[j].Path })

	return artifacts, nil
}

// copyStoreFile copies the live database file under the store write lock.
func (m *Manager) copyStoreFile(dst string) error {
	m.db.LockWrites()
	defer m.db.UnlockWrites()

	src, err := os.Open(m.db.Path())
	if err != nil {
		return errors.Join(ErrBackupIO, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Join(ErrBackupIO, err)
	}

	if _, err = io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return errors.Join(ErrBackupIO, err)
	}

	return out.Close()
}

// compressFile gzips src into dst and returns the hex SHA-256 of the
// uncompressed bytes.
func compressFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	hash := sha256.New()
	gz := gzip.NewWriter(out)
	if _, err = io.Copy(io.MultiWriter(gz, hash), in); err != nil {
		out.Close()
		return "", err
	}
	if err = gz.Close(); err != nil {
		out.Close()
		return "", err
	}
	if err = out.Close(); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer gz.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, gz); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func hashCompressedFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	hash := sha256.New()
	if _, err = io.Copy(hash, gz); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
