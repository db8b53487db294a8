package domain

import "fmt"

// TokenDecimals is the fixed-point scale of the SLD token (and of BNB).
const TokenDecimals = 18

// PoolID identifies a staking pool. The set of pools is a closed
// enumeration; lock durations are client-side configuration and are
// not read from the chain.
type PoolID uint8

const (
	PoolFlexible PoolID = 0
	PoolLock90   PoolID = 1
	PoolLock180  PoolID = 2
)

// PoolConfig carries the static attributes of a staking pool.
type PoolConfig struct {
	ID          PoolID
	Name        string
	Description string
	LockDays    int
}

var poolConfigs = []PoolConfig{
	{ID: PoolFlexible, Name: "Pool 0", Description: "Flexible staking. No lock.", LockDays: 0},
	{ID: PoolLock90, Name: "Pool 1", Description: "Higher yield. 90-day lock.", LockDays: 90},
	{ID: PoolLock180, Name: "Pool 2", Description: "Highest yield. 180-day lock.", LockDays: 180},
}

// Pools returns the full pool enumeration in ID order.
func Pools() []PoolConfig {
	out := make([]PoolConfig, len(poolConfigs))
	copy(out, poolConfigs)
	return out
}

// PoolByID looks up the configuration for a pool.
func PoolByID(id PoolID) (PoolConfig, error) {
	for _, p := range poolConfigs {
		if p.ID == id {
			return p, nil
		}
	}
	return PoolConfig{}, fmt.Errorf("unknown pool id %d", id)
}

// ParsePoolID validates a numeric pool identifier. Out-of-range values
// are rejected rather than coerced.
func ParsePoolID(n int) (PoolID, error) {
	if n < 0 || n >= len(poolConfigs) {
		return 0, fmt.Errorf("unknown pool id %d", n)
	}
	return PoolID(n), nil
}
