package storage

import (
	"context"
	"math/big"

	"sld-dashboard/internal/domain"
)

// AprHistoryCap is the number of APR points retained per pool.
const AprHistoryCap = 12

// MaxAprPercent bounds accepted APR observations; anything outside
// [0, MaxAprPercent] is rejected as invalid input.
const MaxAprPercent = 100000

// AprHistoryStore keeps a short, capped APR history per pool. The
// store is volatile by default (reset on process restart) and exists
// to feed the APR chart; it is not an authoritative record.
type AprHistoryStore interface {
	// Append records one observation, evicting the oldest point once
	// the pool holds AprHistoryCap entries. Returns ErrInvalidInput
	// for out-of-range APR values.
	Append(ctx context.Context, point domain.AprPoint) error

	// History returns a pool's points, oldest first.
	History(ctx context.Context, pool domain.PoolID) ([]domain.AprPoint, error)
}

// WhaleAlertCap is the number of alerts retained; inserting past the
// cap evicts the oldest.
const WhaleAlertCap = 20

// WhaleAlertStore keeps recent large-transfer alerts, deduplicated by
// transaction hash.
type WhaleAlertStore interface {
	// Insert adds an alert, evicting the oldest once WhaleAlertCap
	// entries are held. Returns ErrDuplicateKey when the hash was
	// already recorded.
	Insert(ctx context.Context, alert domain.WhaleAlert) error

	// Recent returns up to limit alerts, newest first.
	Recent(ctx context.Context, limit int) ([]domain.WhaleAlert, error)
}

// CompoundState is the persisted position of an in-flight compound
// chain: the current step and the reward amount captured when the
// chain started.
type CompoundState struct {
	User      string
	Pool      domain.PoolID
	Step      string
	Amount    *big.Int
	UpdatedAt int64
}

// CompoundStateStore persists compound-chain progress so a restarted
// process can report accurate partial-completion status.
type CompoundStateStore interface {
	// Save upserts the state for (user, pool).
	Save(ctx context.Context, state CompoundState) error

	// Load returns the state for (user, pool), or ErrNotFound.
	Load(ctx context.Context, user string, pool domain.PoolID) (*CompoundState, error)

	// Clear removes the state for (user, pool). Clearing a missing
	// state is not an error.
	Clear(ctx context.Context, user string, pool domain.PoolID) error
}

// PricePointStore records observations of the tracked trading pair.
type PricePointStore interface {
	// InsertBulk adds multiple points.
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByTimeRange returns points within [start, end] (inclusive,
	// unix seconds), oldest first.
	GetByTimeRange(ctx context.Context, pair string, start, end int64) ([]*domain.PricePoint, error)
}
