// Package health derives a composite wallet health score from
// independent staking, gas, and allowance signals. The score is
// informational only, recomputed from scratch on every evaluation,
// and never persisted.
package health

// Score bounds and rule constants. The additive rules and label
// buckets are fixed product behavior: a wallet with no signals lands
// at 60 ("Moderate"), and only staking plus favorable gas can reach
// "Excellent".
const (
	baseScore = 60

	stakedBonus     = 15
	aprBonus        = 5
	cheapGasBonus   = 5
	cheapGasBelow   = 8.0
	dearGasPenalty  = 5
	dearGasAbove    = 20.0
	allowancePenalty = 20
	allowanceLimit  = 1_000_000.0
	whaleBonus      = 5

	deferGasAbove = 25.0
)

// Input is the full signal set for one evaluation. GasGwei is nil when
// no gas estimate is available; the gas rules are skipped then.
type Input struct {
	StakedAmount    float64
	AprPercent      float64
	GasGwei         *float64
	Allowance       float64
	TokenBalance    float64
	WhaleMonitoring bool
}

// Report is the evaluation result.
type Report struct {
	Score   int    `json:"score"`
	Label   string `json:"label"`
	Insight string `json:"insight"`
}

// Labels in descending order of score.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelModerate  = "Moderate"
	LabelHighRisk  = "High risk"
)

// Evaluate computes the health score, label, and insight message.
func Evaluate(in Input) Report {
	score := baseScore

	if in.StakedAmount > 0 {
		score += stakedBonus
	}
	if in.AprPercent > 0 {
		score += aprBonus
	}
	if in.GasGwei != nil {
		// The thresholds do not overlap, so at most one applies.
		if *in.GasGwei < cheapGasBelow {
			score += cheapGasBonus
		}
		if *in.GasGwei > dearGasAbove {
			score -= dearGasPenalty
		}
	}
	if in.Allowance > allowanceLimit {
		score -= allowancePenalty
	}
	if in.WhaleMonitoring {
		score += whaleBonus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Report{
		Score:   score,
		Label:   label(score),
		Insight: insight(in),
	}
}

func label(score int) string {
	switch {
	case score >= 85:
		return LabelExcellent
	case score >= 65:
		return LabelGood
	case score <= 40:
		return LabelHighRisk
	default:
		return LabelModerate
	}
}

// insight picks the first matching message in priority order.
func insight(in Input) string {
	switch {
	case in.StakedAmount == 0 && in.TokenBalance > 0:
		return "You hold SLD but are not staking yet. Consider staking a portion to earn yield."
	case in.Allowance > allowanceLimit:
		return "Your staking allowance is very high. For extra safety, you can reduce or revoke approval."
	case in.GasGwei != nil && *in.GasGwei > deferGasAbove:
		return "Gas is currently elevated. If possible, execute non-urgent actions later for better fees."
	case in.StakedAmount > 0 && in.AprPercent > 0:
		return "Your SLD is working for you via staking. Monitor APR and compounding period for optimal results."
	default:
		return "Balanced wallet. Keep monitoring staking and gas fees."
	}
}
