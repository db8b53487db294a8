// Package roi derives display yield figures from an on-chain
// basis-points reward rate.
package roi

import "math"

// Metrics holds the derived rate figures for one pool.
//
// The daily/weekly/monthly values are simple-interest slices of the
// APR, while the projection in Project reinvests monthly. The two do
// not reconcile and are not meant to: one is a quick-glance ROI, the
// other a best-case compounding estimate.
type Metrics struct {
	AprPercent float64 `json:"aprPercent"`
	DailyRoi   float64 `json:"dailyRoi"`
	WeeklyRoi  float64 `json:"weeklyRoi"`
	MonthlyRoi float64 `json:"monthlyRoi"`
	YearlyRoi  float64 `json:"yearlyRoi"`

	// BreakEvenDays is the number of days until cumulative simple
	// rewards reach 100% of the stake. Nil when the rate is zero.
	BreakEvenDays *float64 `json:"breakEvenDays,omitempty"`
}

// Compute derives Metrics from a basis-points rate. 100 bps = 1% APR.
func Compute(rateBps int64) Metrics {
	apr := float64(rateBps) / 100

	m := Metrics{
		AprPercent: apr,
		DailyRoi:   apr / 365,
		WeeklyRoi:  apr / 52,
		MonthlyRoi: apr / 12,
		YearlyRoi:  apr,
	}

	if apr > 0 {
		days := (100 / apr) * 365
		m.BreakEvenDays = &days
	}

	return m
}

// Project computes a one-year balance with periodic reinvestment.
// Both results are 0 when there is nothing staked or no yield.
func Project(staked, aprPercent float64, periodsPerYear int) (balance, rewards float64) {
	if staked <= 0 || aprPercent <= 0 || periodsPerYear <= 0 {
		return 0, 0
	}

	balance = staked * math.Pow(1+aprPercent/100/float64(periodsPerYear), float64(periodsPerYear))
	rewards = balance - staked
	return balance, rewards
}
