// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pgstore implements keyring.Keyring on top of a PostgreSQL table.
// It lets headless agents without an OS keychain share a persisted CLI
// session through a database they already operate.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/99designs/keyring"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table is the key/value table used by the store.
const Table = "cvflow_session_kv"

const schemaSQL = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      BYTEA       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Keyring stores items of one namespace. Operations use a per-call timeout
// because keyring.Keyring methods carry no context.
type Keyring struct {
	db        DB
	pool      *pgxpool.Pool
	namespace string
	timeout   time.Duration
}

var _ keyring.Keyring = (*Keyring)(nil)

// Open connects to dsn, creates the table if needed and returns a Keyring for
// namespace. Call Close when done.
func Open(ctx context.Context, dsn, namespace string) (*Keyring, error) {
	if dsn == "" {
		return nil, errors.New("postgres session store requires a DSN (set CVFLOW_POSTGRES_DSN)")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN: %w", err)
	}
	cfg.MaxConns = 2

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctxPing, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect session store: %w", err)
	}

	k := New(pool, namespace)
	k.pool = pool
	if err := k.Migrate(ctxPing); err != nil {
		pool.Close()
		return nil, err
	}
	return k, nil
}

// New wraps an existing connection.
func New(db DB, namespace string) *Keyring {
	return &Keyring{db: db, namespace: namespace, timeout: 5 * time.Second}
}

// Migrate creates the backing table.
func (k *Keyring) Migrate(ctx context.Context) error {
	if _, err := k.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create %s: %w", Table, err)
	}
	return nil
}

// Close releases the pool opened by Open.
func (k *Keyring) Close() {
	if k.pool != nil {
		k.pool.Close()
	}
}

func (k *Keyring) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), k.timeout)
}

// Get returns the item for key or keyring.ErrKeyNotFound.
func (k *Keyring) Get(key string) (keyring.Item, error) {
	ctx, cancel := k.ctx()
	defer cancel()

	var data []byte
	err := k.db.QueryRow(ctx,
		`SELECT value FROM `+Table+` WHERE namespace = $1 AND key = $2`,
		k.namespace, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return keyring.Item{}, keyring.ErrKeyNotFound
	}
	if err != nil {
		return keyring.Item{}, err
	}
	return keyring.Item{Key: key, Data: data}, nil
}

// GetMetadata reports the modification time of key.
func (k *Keyring) GetMetadata(key string) (keyring.Metadata, error) {
	ctx, cancel := k.ctx()
	defer cancel()

	var updated time.Time
	err := k.db.QueryRow(ctx,
		`SELECT updated_at FROM `+Table+` WHERE namespace = $1 AND key = $2`,
		k.namespace, key,
	).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return keyring.Metadata{}, keyring.ErrKeyNotFound
	}
	if err != nil {
		return keyring.Metadata{}, err
	}
	return keyring.Metadata{Item: &keyring.Item{Key: key}, ModificationTime: updated}, nil
}

// Set upserts the item.
func (k *Keyring) Set(item keyring.Item) error {
	ctx, cancel := k.ctx()
	defer cancel()

	_, err := k.db.Exec(ctx,
		`INSERT INTO `+Table+` (namespace, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		k.namespace, item.Key, item.Data,
	)
	return err
}

// Remove deletes key, returning keyring.ErrKeyNotFound when it was absent.
func (k *Keyring) Remove(key string) error {
	ctx, cancel := k.ctx()
	defer cancel()

	tag, err := k.db.Exec(ctx,
		`DELETE FROM `+Table+` WHERE namespace = $1 AND key = $2`,
		k.namespace, key,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return keyring.ErrKeyNotFound
	}
	return nil
}

// Keys lists the keys of the namespace in name order.
func (k *Keyring) Keys() ([]string, error) {
	ctx, cancel := k.ctx()
	defer cancel()

	rows, err := k.db.Query(ctx,
		`SELECT key FROM `+Table+` WHERE namespace = $1 ORDER BY key`,
		k.namespace,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
