package clickhouse

import (
	"context"
	"fmt"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// InsertBulk adds multiple points. MergeTree does not enforce
// uniqueness, so duplicate observations are simply stored; the poller
// samples on a fixed interval and never re-reads the same instant.
func (s *PricePointStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	for _, p := range points {
		if p == nil || p.Pair == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_points (
			pair, ts, price_usd, change_24h, volume_24h
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Pair, uint64(p.Timestamp), p.PriceUsd, p.Change24h, p.Volume24h,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves points for a pair within [start, end] (inclusive).
func (s *PricePointStore) GetByTimeRange(ctx context.Context, pair string, start, end int64) ([]*domain.PricePoint, error) {
	if pair == "" || start > end {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.conn.Query(ctx, `
		SELECT pair, ts, price_usd, change_24h, volume_24h
		FROM price_points
		WHERE pair = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`, pair, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	var points []*domain.PricePoint
	for rows.Next() {
		var (
			point domain.PricePoint
			ts    uint64
		)
		if err := rows.Scan(&point.Pair, &ts, &point.PriceUsd, &point.Change24h, &point.Volume24h); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		point.Timestamp = int64(ts)
		points = append(points, &point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price points: %w", err)
	}
	return points, nil
}
