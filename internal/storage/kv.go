// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrKeyNotFound is returned by Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// Keys used by this client.
const (
	KeyActiveConversation = "active_conversation"
	KeyToken              = "token"
	KeyUser               = "user"
)

// Get returns the value stored under key.
func (d *DB) Get(ctx context.Context, key string) (string, error) {
	if d.db == nil {
		return "", ErrClosed
	}
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

// SetMany writes all pairs in one transaction.
func (d *DB) SetMany(ctx context.Context, values map[string]string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		return setKV(ctx, tx, values)
	})
}

// DeleteMany removes all keys in one transaction. Missing keys are ignored.
func (d *DB) DeleteMany(ctx context.Context, keys ...string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		return nil
	})
}

func setKV(ctx context.Context, tx *sql.Tx, values map[string]string) error {
	now := time.Now().UnixNano()
	for k, v := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now)
		if err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}
	return nil
}
