package domain

import "math/big"

// UserInfo is the raw staking position returned by
// getUserInfo(address, poolId). Amounts are 18-decimal fixed point and
// are never mutated, only converted for display.
type UserInfo struct {
	StakedRaw  *big.Int
	PendingRaw *big.Int
	RateBps    int64
}

// WhaleAlert is one large token transfer. Alerts are append-only,
// deduplicated by transaction hash, and kept newest-first.
type WhaleAlert struct {
	TxHash    string  `json:"txHash"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

// AprPoint is one APR history observation for a pool.
type AprPoint struct {
	PoolID     PoolID  `json:"poolId"`
	AprPercent float64 `json:"apr"`
	Timestamp  int64   `json:"timeStamp"`
}

// PricePoint is one observation of the tracked trading pair.
type PricePoint struct {
	Pair      string  `json:"pair"`
	PriceUsd  float64 `json:"priceUsd"`
	Change24h float64 `json:"change24h"`
	Volume24h float64 `json:"volume24h"`
	Timestamp int64   `json:"timestamp"`
}
