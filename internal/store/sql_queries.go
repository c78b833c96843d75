package store

// Raw SQL for the client SQLite database. The server repository builds its
// queries with squirrel instead, see server_record_repository.go.
const (
	upsertRecordQuery = `
		INSERT INTO records (entity_type, entity_id, payload, version, sync_status, updated_at, last_server_version, server_payload, server_version)
		VALUES (?, ?, ?, 1, 'pending', ?, NULL, NULL, NULL)
		ON CONFLICT(entity_type, entity_id) DO UPDATE SET
			payload        = excluded.payload,
			version        = records.version + 1,
			sync_status    = 'pending',
			updated_at     = excluded.updated_at,
			server_payload = NULL,
			server_version = NULL;`

	applyServerChangeQuery = `
		INSERT INTO records (entity_type, entity_id, payload, version, sync_status, updated_at, last_server_version, server_payload, server_version)
		VALUES (?, ?, ?, ?, 'synced', ?, ?, NULL, NULL)
		ON CONFLICT(entity_type, entity_id) DO UPDATE SET
			payload             = excluded.payload,
			version             = excluded.version,
			sync_status         = 'synced',
			updated_at          = excluded.updated_at,
			last_server_version = excluded.last_server_version,
			server_payload      = NULL,
			server_version      = NULL;`

	getRecordQuery = `
		SELECT entity_type, entity_id, payload, version, sync_status, updated_at, last_server_version, server_payload, server_version
		FROM records
		WHERE entity_type = ? AND entity_id = ?;`

	getAllRecordsQuery = `
		SELECT entity_type, entity_id, payload, version, sync_status, updated_at, last_server_version, server_payload, server_version
		FROM records
		WHERE entity_type = ?
		ORDER BY entity_id;`

	countRecordsQuery = `SELECT COUNT(*) FROM records;`

	deleteRecordQuery = `DELETE FROM records WHERE entity_type = ? AND entity_id = ?;`

	markSyncedQuery = `
		UPDATE records
		SET version = ?, last_server_version = ?, sync_status = 'synced', server_payload = NULL, server_version = NULL
		WHERE entity_type = ? AND entity_id = ?;`

	advanceServerVersionQuery = `
		UPDATE records
		SET last_server_version = ?
		WHERE entity_type = ? AND entity_id = ?;`

	markConflictQuery = `
		UPDATE records
		SET sync_status = 'conflict', server_payload = ?, server_version = ?
		WHERE entity_type = ? AND entity_id = ?;`

	resolveConflictQuery = `
		UPDATE records
		SET payload = ?, version = version + 1, sync_status = 'pending', updated_at = ?, server_payload = NULL, server_version = NULL
		WHERE entity_type = ? AND entity_id = ? AND sync_status = 'conflict';`

	countReadyForEntityQuery = `
		SELECT COUNT(*) FROM mutation_queue
		WHERE entity_type = ? AND entity_id = ? AND status = 'ready';`
)

const (
	selectReadyEntryForEntityQuery = `
		SELECT idempotency_key, operation, entity_type, entity_id, payload, base_version, enqueued_at, retry_count, next_retry_at, status
		FROM mutation_queue
		WHERE entity_type = ? AND entity_id = ? AND status = 'ready';`

	insertQueueEntryQuery = `
		INSERT INTO mutation_queue (idempotency_key, operation, entity_type, entity_id, payload, base_version, enqueued_at, retry_count, next_retry_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, 'ready');`

	coalesceQueueEntryQuery = `
		UPDATE mutation_queue
		SET idempotency_key = ?, operation = ?, payload = ?, base_version = ?, retry_count = 0, next_retry_at = ?
		WHERE idempotency_key = ?;`

	selectReadyBatchQuery = `
		SELECT idempotency_key, operation, entity_type, entity_id, payload, base_version, enqueued_at, retry_count, next_retry_at, status
		FROM mutation_queue
		WHERE status = 'ready' AND next_retry_at <= ?
		ORDER BY enqueued_at ASC, idempotency_key ASC
		LIMIT ?;`

	markInFlightQuery = `UPDATE mutation_queue SET status = 'inflight' WHERE idempotency_key = ?;`

	deleteQueueEntryQuery = `DELETE FROM mutation_queue WHERE idempotency_key = ?;`

	selectQueueEntryQuery = `
		SELECT idempotency_key, operation, entity_type, entity_id, payload, base_version, enqueued_at, retry_count, next_retry_at, status
		FROM mutation_queue
		WHERE idempotency_key = ?;`

	requeueEntryQuery = `
		UPDATE mutation_queue
		SET retry_count = ?, next_retry_at = ?, status = ?
		WHERE idempotency_key = ?;`

	removeEntriesForEntityQuery = `DELETE FROM mutation_queue WHERE entity_type = ? AND entity_id = ?;`

	releaseInFlightQuery = `UPDATE mutation_queue SET status = 'ready' WHERE status = 'inflight';`

	releaseEntryQuery = `UPDATE mutation_queue SET status = 'ready' WHERE idempotency_key = ? AND status = 'inflight';`

	queueDepthQuery = `SELECT COUNT(*) FROM mutation_queue WHERE status != 'failed';`

	selectFailedEntriesQuery = `
		SELECT idempotency_key, operation, entity_type, entity_id, payload, base_version, enqueued_at, retry_count, next_retry_at, status
		FROM mutation_queue
		WHERE status = 'failed'
		ORDER BY enqueued_at ASC;`
)

const (
	getMetadataQuery = `
		SELECT last_sync_time, sync_version_counter, pending_count
		FROM sync_metadata
		WHERE id = 1;`

	updateMetadataQuery = `
		UPDATE sync_metadata
		SET last_sync_time = ?, sync_version_counter = ?, pending_count = ?
		WHERE id = 1;`

	bumpMutationSeqQuery = `UPDATE sync_metadata SET mutation_seq = mutation_seq + 1 WHERE id = 1;`

	currentMutationSeqQuery = `SELECT mutation_seq FROM sync_metadata WHERE id = 1;`
)
