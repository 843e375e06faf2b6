package risk

import "fmt"

// Policy holds the run-level risk limits. All fractions are of equity.
type Policy struct {
	// MaxDailyTrades caps entries per calendar date.
	MaxDailyTrades int
	// MaxConsecutiveLosses pauses entries after a losing streak; the streak
	// clears on the next winning trade.
	MaxConsecutiveLosses int
	// MaxDailyLoss trips the daily circuit breaker when the intraday loss
	// (realized plus open worst-case) reaches this fraction of the day-start
	// equity.
	MaxDailyLoss float64
	// MaxDrawdown denies entries once the drawdown from peak equity reaches
	// this fraction.
	MaxDrawdown float64
	// ResetLossStreakDaily clears the consecutive-loss counter on date
	// rollover instead of waiting for a win.
	ResetLossStreakDaily bool
}

// Validate fails fast on a policy no run should start with.
func (p Policy) Validate() error {
	if p.MaxDailyTrades < 1 {
		return fmt.Errorf("risk: max daily trades %d must be >= 1", p.MaxDailyTrades)
	}
	if p.MaxConsecutiveLosses < 1 {
		return fmt.Errorf("risk: max consecutive losses %d must be >= 1", p.MaxConsecutiveLosses)
	}
	if p.MaxDailyLoss <= 0 || p.MaxDailyLoss > 1 {
		return fmt.Errorf("risk: max daily loss %v outside (0,1]", p.MaxDailyLoss)
	}
	if p.MaxDrawdown <= 0 || p.MaxDrawdown > 1 {
		return fmt.Errorf("risk: max drawdown %v outside (0,1]", p.MaxDrawdown)
	}
	return nil
}

// Deny reasons. A denial is expected control flow, not an error.
const (
	DenyPositionOpen    = "POSITION_OPEN"
	DenyDailyTradeLimit = "DAILY_TRADE_LIMIT"
	DenyLossStreak      = "LOSS_STREAK"
	DenyMaxDrawdown     = "MAX_DRAWDOWN"
	DenyDailyBreaker    = "DAILY_LOSS_BREAKER"
)

// Decision is the outcome of a CanOpen check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision          { return Decision{Allowed: true} }
func deny(code string) Decision { return Decision{Reason: code} }
