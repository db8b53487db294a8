package postgres

import (
	"context"
	"fmt"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// AprHistoryStore implements storage.AprHistoryStore using PostgreSQL.
type AprHistoryStore struct {
	pool *Pool
}

// NewAprHistoryStore creates a new AprHistoryStore.
func NewAprHistoryStore(pool *Pool) *AprHistoryStore {
	return &AprHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AprHistoryStore = (*AprHistoryStore)(nil)

// Append records one observation and trims the pool to the newest
// storage.AprHistoryCap rows.
func (s *AprHistoryStore) Append(ctx context.Context, point domain.AprPoint) error {
	if point.AprPercent < 0 || point.AprPercent > storage.MaxAprPercent {
		return storage.ErrInvalidInput
	}
	if _, err := domain.PoolByID(point.PoolID); err != nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO apr_history (pool_id, apr_percent, ts)
		VALUES ($1, $2, $3)
	`, int16(point.PoolID), point.AprPercent, point.Timestamp)
	if err != nil {
		return fmt.Errorf("insert apr point: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM apr_history
		WHERE pool_id = $1 AND id NOT IN (
			SELECT id FROM apr_history
			WHERE pool_id = $1
			ORDER BY ts DESC, id DESC
			LIMIT $2
		)
	`, int16(point.PoolID), storage.AprHistoryCap)
	if err != nil {
		return fmt.Errorf("trim apr history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// History returns a pool's points, oldest first.
func (s *AprHistoryStore) History(ctx context.Context, pool domain.PoolID) ([]domain.AprPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pool_id, apr_percent, ts
		FROM apr_history
		WHERE pool_id = $1
		ORDER BY ts ASC, id ASC
	`, int16(pool))
	if err != nil {
		return nil, fmt.Errorf("get apr history: %w", err)
	}
	defer rows.Close()

	var points []domain.AprPoint
	for rows.Next() {
		var poolID int16
		var point domain.AprPoint
		if err := rows.Scan(&poolID, &point.AprPercent, &point.Timestamp); err != nil {
			return nil, fmt.Errorf("scan apr point: %w", err)
		}
		point.PoolID = domain.PoolID(poolID)
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apr points: %w", err)
	}
	return points, nil
}
