package memory

import (
	"context"
	"sort"
	"sync"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PricePoint // keyed by pair
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{
		data: make(map[string][]*domain.PricePoint),
	}
}

// InsertBulk adds multiple points.
func (s *PricePointStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, point := range points {
		if point == nil || point.Pair == "" {
			return storage.ErrInvalidInput
		}
		copy := *point
		s.data[point.Pair] = append(s.data[point.Pair], &copy)
	}
	return nil
}

// GetByTimeRange returns points within [start, end], oldest first.
func (s *PricePointStore) GetByTimeRange(_ context.Context, pair string, start, end int64) ([]*domain.PricePoint, error) {
	if pair == "" || start > end {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.PricePoint
	for _, point := range s.data[pair] {
		if point.Timestamp >= start && point.Timestamp <= end {
			copy := *point
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}
