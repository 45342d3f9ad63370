package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/supplyline/internal/model"
)

// BatchStore mirrors the server's batches locally. The server copy always
// wins: ReplaceAll overwrites whatever was there.
type BatchStore struct {
	db *sql.DB
}

func NewBatchStore(db *sql.DB) *BatchStore {
	return &BatchStore{db: db}
}

func scanBatch(scanner interface{ Scan(...any) error }) (*model.Batch, error) {
	var b model.Batch
	var expires sql.NullTime
	err := scanner.Scan(&b.ID, &b.UserID, &b.CustomSupplyID, &b.Stock, &expires)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		b.ExpirationDate = &t
	}
	return &b, nil
}

const batchCols = `id, user_id, custom_supply_id, stock, expiration_date`

// ReplaceAll swaps the user's mirrored batches for batches in one transaction.
func (s *BatchStore) ReplaceAll(userID int64, batches []model.Batch) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM batches WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear batches: %w", err)
	}

	now := time.Now().UTC()
	for _, b := range batches {
		var expires sql.NullTime
		if b.ExpirationDate != nil {
			expires = sql.NullTime{Time: b.ExpirationDate.UTC(), Valid: true}
		}
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO batches (id, user_id, custom_supply_id, stock, expiration_date, synced_at) VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, userID, b.CustomSupplyID, b.Stock, expires, now,
		)
		if err != nil {
			return fmt.Errorf("insert batch %d: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batches: %w", err)
	}
	return nil
}

func (s *BatchStore) List(userID int64) ([]model.Batch, error) {
	rows, err := s.db.Query(`SELECT `+batchCols+` FROM batches WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []model.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

func (s *BatchStore) GetByID(id int64) (*model.Batch, error) {
	row := s.db.QueryRow(`SELECT `+batchCols+` FROM batches WHERE id = ?`, id)
	b, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Clear removes every mirrored batch, for all users.
func (s *BatchStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM batches`); err != nil {
		return fmt.Errorf("clear batches: %w", err)
	}
	return nil
}
