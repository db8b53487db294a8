package postgres

import (
	"context"
	"fmt"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// WhaleAlertStore implements storage.WhaleAlertStore using PostgreSQL.
type WhaleAlertStore struct {
	pool *Pool
}

// NewWhaleAlertStore creates a new WhaleAlertStore.
func NewWhaleAlertStore(pool *Pool) *WhaleAlertStore {
	return &WhaleAlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WhaleAlertStore = (*WhaleAlertStore)(nil)

// Insert adds an alert and trims the table to the newest
// storage.WhaleAlertCap rows. Returns ErrDuplicateKey if the tx hash
// exists.
func (s *WhaleAlertStore) Insert(ctx context.Context, alert domain.WhaleAlert) error {
	if alert.TxHash == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO whale_alerts (tx_hash, from_addr, to_addr, amount, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, alert.TxHash, alert.From, alert.To, alert.Amount, alert.Timestamp)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert whale alert: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM whale_alerts
		WHERE tx_hash NOT IN (
			SELECT tx_hash FROM whale_alerts
			ORDER BY ts DESC, tx_hash DESC
			LIMIT $1
		)
	`, storage.WhaleAlertCap)
	if err != nil {
		return fmt.Errorf("trim whale alerts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Recent returns up to limit alerts, newest first.
func (s *WhaleAlertStore) Recent(ctx context.Context, limit int) ([]domain.WhaleAlert, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, `
		SELECT tx_hash, from_addr, to_addr, amount, ts
		FROM whale_alerts
		ORDER BY ts DESC, tx_hash DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent whale alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.WhaleAlert
	for rows.Next() {
		var alert domain.WhaleAlert
		if err := rows.Scan(&alert.TxHash, &alert.From, &alert.To, &alert.Amount, &alert.Timestamp); err != nil {
			return nil, fmt.Errorf("scan whale alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate whale alerts: %w", err)
	}
	return alerts, nil
}
