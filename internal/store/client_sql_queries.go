// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BisonByte

package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

const mirrorSchema = `
	CREATE TABLE IF NOT EXISTS mirror (
		key_name   TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`

func buildMirrorGetQuery(_ context.Context, key string) (string, []any, error) {
	return sq.
		Select("value_json").
		From("mirror").
		Where(sq.Eq{"key_name": key}).
		ToSql()
}

func buildMirrorSetQuery(_ context.Context, key string, value []byte, updatedAtMs int64) (string, []any, error) {
	return sq.
		Insert("mirror").
		Columns("key_name", "value_json", "updated_at").
		Values(key, value, updatedAtMs).
		Suffix("ON CONFLICT (key_name) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at").
		ToSql()
}

func buildMirrorDeleteQuery(_ context.Context, key string) (string, []any, error) {
	return sq.
		Delete("mirror").
		Where(sq.Eq{"key_name": key}).
		ToSql()
}

func buildMirrorAllQuery(_ context.Context) (string, []any, error) {
	return sq.
		Select("key_name", "value_json").
		From("mirror").
		OrderBy("key_name ASC").
		ToSql()
}
