package memory

import (
	"context"
	"sync"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// AprHistoryStore is an in-memory implementation of storage.AprHistoryStore.
type AprHistoryStore struct {
	mu   sync.RWMutex
	data map[domain.PoolID][]domain.AprPoint
}

// NewAprHistoryStore creates a new in-memory APR history store.
func NewAprHistoryStore() *AprHistoryStore {
	return &AprHistoryStore{
		data: make(map[domain.PoolID][]domain.AprPoint),
	}
}

// Append records an APR observation, evicting the oldest point once the
// pool holds storage.AprHistoryCap entries.
func (s *AprHistoryStore) Append(_ context.Context, point domain.AprPoint) error {
	if point.AprPercent < 0 || point.AprPercent > storage.MaxAprPercent {
		return storage.ErrInvalidInput
	}
	if _, err := domain.PoolByID(point.PoolID); err != nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	points := append(s.data[point.PoolID], point)
	if len(points) > storage.AprHistoryCap {
		points = points[len(points)-storage.AprHistoryCap:]
	}
	s.data[point.PoolID] = points
	return nil
}

// History returns a pool's points, oldest first.
func (s *AprHistoryStore) History(_ context.Context, pool domain.PoolID) ([]domain.AprPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.data[pool]
	out := make([]domain.AprPoint, len(points))
	copy(out, points)
	return out, nil
}
