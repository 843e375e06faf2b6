// Package risk provides risk-based position sizing and the stateful run-level
// risk manager: trade-count limits, loss-streak cooldowns, drawdown ceilings,
// and the daily-loss circuit breaker.
package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRiskInput reports a degenerate sizing request, most commonly an
// entry equal to its stop. The affected signal is skipped; the run continues.
var ErrInvalidRiskInput = errors.New("risk: invalid sizing input")

// Size computes the trade quantity that risks equity*riskFraction if the stop
// is hit:
//
//	quantity = equity * riskFraction / |entry - stop|
//
// It is a pure function. riskFraction must be in (0, 1], equity positive, and
// entry must differ from stop.
func Size(equity, riskFraction, entry, stop float64) (float64, error) {
	if equity <= 0 {
		return 0, fmt.Errorf("%w: equity %.2f must be positive", ErrInvalidRiskInput, equity)
	}
	if riskFraction <= 0 || riskFraction > 1 {
		return 0, fmt.Errorf("%w: risk fraction %v outside (0,1]", ErrInvalidRiskInput, riskFraction)
	}
	dist := math.Abs(entry - stop)
	if dist == 0 {
		return 0, fmt.Errorf("%w: entry %v equals stop", ErrInvalidRiskInput, entry)
	}
	return equity * riskFraction / dist, nil
}
