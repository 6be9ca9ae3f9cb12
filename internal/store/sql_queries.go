package store

const (
	createUser = `INSERT INTO users (login, auth_hash, encryption_salt)
    VALUES ($1, $2, $3)
    RETURNING user_id, login, auth_hash, encryption_salt, created_at;`

	findUserByLogin = `SELECT user_id, login, auth_hash, encryption_salt, created_at
    FROM users
    WHERE login = $1;`

	// Ledger append. The latest-row lock serializes concurrent appends for
	// one (user_id, item_id); the UNIQUE(user_id, item_id, version) index
	// guards the first-insert race when no row exists to lock yet.
	lockLatestVersion = `SELECT version
		FROM version_records
		WHERE user_id = $1 AND item_id = $2
		ORDER BY version DESC
		LIMIT 1
		FOR UPDATE;`

	getLockedItemState = `SELECT status, item_type, encrypted_payload
		FROM current_state
		WHERE user_id = $1 AND item_id = $2
		FOR UPDATE;`

	insertVersionRecord = `INSERT INTO version_records (
			user_id,
			item_id,
			version,
			operation,
			device_id,
			item_type,
			status,
			encrypted_payload,
			payload_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at;`

	upsertCurrentState = `INSERT INTO current_state (
			user_id,
			item_id,
			item_type,
			latest_version,
			status,
			last_modified,
			encrypted_payload,
			payload_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			item_type         = EXCLUDED.item_type,
			latest_version    = EXCLUDED.latest_version,
			status            = EXCLUDED.status,
			last_modified     = EXCLUDED.last_modified,
			encrypted_payload = EXCLUDED.encrypted_payload,
			payload_hash      = EXCLUDED.payload_hash;`

	markRecordsPermanentlyDeleted = `UPDATE version_records
		SET status = 'permanently_deleted', encrypted_payload = ''
		WHERE user_id = $1 AND item_id = $2;`

	insertRecycleBinEntry = `INSERT INTO recycle_bin (
			user_id,
			item_id,
			item_type,
			deleted_at,
			deleted_by_device,
			expires_at,
			recoverable,
			original_payload,
			display_name
		) VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			deleted_at        = EXCLUDED.deleted_at,
			deleted_by_device = EXCLUDED.deleted_by_device,
			expires_at        = EXCLUDED.expires_at,
			recoverable       = TRUE,
			original_payload  = EXCLUDED.original_payload,
			display_name      = EXCLUDED.display_name;`

	deleteRecycleBinEntry = `DELETE FROM recycle_bin
		WHERE user_id = $1 AND item_id = $2;`

	bumpAccountDevices = `UPDATE devices
		SET last_sync_at = NOW(), sync_version_tag = $2
		WHERE user_id = $1;`

	getItemState = `SELECT user_id, item_id, item_type, latest_version, status, last_modified, encrypted_payload, payload_hash
		FROM current_state
		WHERE user_id = $1 AND item_id = $2;`

	// Restore source lookup: latest payload-bearing DELETE first, then
	// UPDATE, then CREATE, then anything else still holding ciphertext.
	getRestorableRecord = `SELECT id, user_id, item_id, version, operation, device_id, item_type, status, encrypted_payload, payload_hash, created_at
		FROM version_records
		WHERE user_id = $1
		  AND item_id = $2
		  AND operation <> 'PERMANENT_DELETE'
		  AND status <> 'permanently_deleted'
		  AND encrypted_payload <> ''
		ORDER BY
			CASE operation
				WHEN 'DELETE' THEN 0
				WHEN 'UPDATE' THEN 1
				WHEN 'CREATE' THEN 2
				ELSE 3
			END,
			version DESC
		LIMIT 1;`

	getRecycleBinEntries = `SELECT user_id, item_id, item_type, deleted_at, deleted_by_device, expires_at, recoverable, original_payload, display_name
		FROM recycle_bin
		WHERE user_id = $1
		ORDER BY deleted_at DESC;`

	getRecycleBinEntry = `SELECT user_id, item_id, item_type, deleted_at, deleted_by_device, expires_at, recoverable, original_payload, display_name
		FROM recycle_bin
		WHERE user_id = $1 AND item_id = $2;`

	getExpiredRecycleBinEntries = `SELECT user_id, item_id, item_type, deleted_at, deleted_by_device, expires_at, recoverable, original_payload, display_name
		FROM recycle_bin
		WHERE expires_at <= $1
		ORDER BY user_id, deleted_at;`

	upsertDevice = `INSERT INTO devices (user_id, device_id, device_name, last_sync_at, sync_version_tag, is_active)
		VALUES ($1, $2, $3, NOW(), $4, TRUE)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			device_name  = EXCLUDED.device_name,
			last_sync_at = NOW(),
			is_active    = TRUE
		RETURNING user_id, device_id, device_name, last_sync_at, sync_version_tag, is_active, registered_at;`

	getDevices = `SELECT user_id, device_id, device_name, last_sync_at, sync_version_tag, is_active, registered_at
		FROM devices
		WHERE user_id = $1
		ORDER BY registered_at;`

	getDevice = `SELECT user_id, device_id, device_name, last_sync_at, sync_version_tag, is_active, registered_at
		FROM devices
		WHERE user_id = $1 AND device_id = $2;`

	setDeviceActive = `UPDATE devices
		SET is_active = $3
		WHERE user_id = $1 AND device_id = $2;`

	renameDevice = `UPDATE devices
		SET device_name = $3
		WHERE user_id = $1 AND device_id = $2;`

	removeDevice = `DELETE FROM devices
		WHERE user_id = $1 AND device_id = $2;`

	updateDeviceSyncMeta = `UPDATE devices
		SET last_sync_at = $3, sync_version_tag = $4
		WHERE user_id = $1 AND device_id = $2;`

	saveWalletBlob = `INSERT INTO wallet_blobs (user_id, device_id, encrypted_data, payload_hash, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			encrypted_data = EXCLUDED.encrypted_data,
			payload_hash   = EXCLUDED.payload_hash,
			updated_at     = NOW();`

	getWalletBlob = `SELECT user_id, device_id, encrypted_data, payload_hash, updated_at
		FROM wallet_blobs
		WHERE user_id = $1 AND device_id = $2;`

	getLatestWalletBlob = `SELECT user_id, device_id, encrypted_data, payload_hash, updated_at
		FROM wallet_blobs
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1;`

	deleteWalletBlob = `DELETE FROM wallet_blobs
		WHERE user_id = $1 AND device_id = $2;`
)
