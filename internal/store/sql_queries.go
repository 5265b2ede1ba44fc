// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BisonByte

package store

const (
	kvGet = `
		SELECT value_json
		FROM kv_store
		WHERE key_name = $1;`

	kvSet = `
		INSERT INTO kv_store (key_name, value_json, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key_name) DO UPDATE SET
			value_json = EXCLUDED.value_json,
			updated_at = EXCLUDED.updated_at;`

	kvDelete = `
		DELETE FROM kv_store
		WHERE key_name = $1;`

	kvAll = `
		SELECT key_name, value_json
		FROM kv_store;`

	itemAppend = `
		INSERT INTO items (payload_json, created_at_ms)
		VALUES ($1, $2)
		RETURNING id;`

	itemList = `
		SELECT id, payload_json, created_at_ms
		FROM items
		ORDER BY id ASC;`

	clientCreate = `
		INSERT INTO clients (
			nombre,
			producto_enlace,
			monto_pagado,
			direccion_envio,
			notas,
			created_at_ms
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`

	clientUpdate = `
		UPDATE clients SET
			nombre = $2,
			producto_enlace = $3,
			monto_pagado = $4,
			direccion_envio = $5,
			notas = $6,
			updated_at = NOW()
		WHERE id = $1;`

	clientDelete = `
		DELETE FROM clients
		WHERE id = $1;`

	clientList = `
		SELECT id, nombre, producto_enlace, monto_pagado, direccion_envio, notas, created_at_ms, updated_at
		FROM clients
		ORDER BY id ASC;`

	resetTokenCreate = `
		INSERT INTO reset_tokens (token, username, expires_at)
		VALUES ($1, $2, NOW() + make_interval(secs => $3));`

	resetTokenConsume = `
		DELETE FROM reset_tokens
		WHERE token = $1 AND expires_at > NOW()
		RETURNING username;`

	auditAppend = `
		INSERT INTO audit_log (created_at, ip, username, action, details)
		VALUES ($1, $2, $3, $4, $5);`
)
