package credstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteBackend stores the record in the credentials table, one row per key,
// scoped by namespace (the installation id).
type SQLiteBackend struct {
	db        *sql.DB
	namespace string
}

func NewSQLiteBackend(db *sql.DB, namespace string) *SQLiteBackend {
	return &SQLiteBackend{db: db, namespace: namespace}
}

func (b *SQLiteBackend) Load(ctx context.Context) (map[string]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT key, value FROM credentials WHERE namespace = ?`, b.namespace)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		values[key] = value
	}
	return values, rows.Err()
}

func (b *SQLiteBackend) Save(ctx context.Context, values map[string]string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for key, value := range values {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			b.namespace, key, value, now,
		)
		if err != nil {
			return fmt.Errorf("save credential %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credentials: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM credentials WHERE namespace = ?`, b.namespace)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
