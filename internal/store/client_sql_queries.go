// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package store

const (
	createKVTable = `CREATE TABLE IF NOT EXISTS kv (
		category   TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (category, key)
	);`

	upsertKVValue = `INSERT INTO kv (category, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (category, key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at;`

	getKVValue = `SELECT value FROM kv WHERE category = ? AND key = ?;`

	deleteKVValue = `DELETE FROM kv WHERE category = ? AND key = ?;`
)
