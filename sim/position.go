// Package sim advances open positions bar by bar: stop and take-profit
// checks, breakeven arming, and ATR trailing stops.
package sim

import (
	"time"

	"github.com/rustyeddy/propsim/internal/id"
	"github.com/rustyeddy/propsim/signal"
)

// State of an open position's stop management.
type State int8

const (
	Open State = iota
	BreakevenArmed
	Trailing
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "OPEN"
	case BreakevenArmed:
		return "BREAKEVEN_ARMED"
	case Trailing:
		return "TRAILING"
	case Closed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitTakeProfit ExitReason = "TP"
	ExitStopLoss   ExitReason = "SL"
	ExitTrail      ExitReason = "TRAIL"
	ExitBreakeven  ExitReason = "BREAKEVEN"
	ExitEndOfData  ExitReason = "END_OF_DATA"
)

// Position is a single open trade. It is owned by the lifecycle engine once
// opened; callers must not mutate it between Advance calls.
type Position struct {
	ID         string
	Direction  signal.Direction
	Rule       signal.Rule
	EntryPrice float64
	EntryTime  time.Time
	Quantity   float64
	Stop       float64
	TakeProfit float64
	ATRAtEntry float64

	State State

	// PeakPrice is the most favorable extreme seen since entry: highest high
	// for longs, lowest low for shorts.
	PeakPrice float64
}

// OpenPosition creates a new open position with a fresh ID. The entry price
// seeds the favorable peak.
func OpenPosition(sig signal.Signal, qty, stop, takeProfit, atr float64) *Position {
	return &Position{
		ID:         id.New(),
		Direction:  sig.Direction,
		Rule:       sig.Rule,
		EntryPrice: sig.Price,
		EntryTime:  sig.Time,
		Quantity:   qty,
		Stop:       stop,
		TakeProfit: takeProfit,
		ATRAtEntry: atr,
		State:      Open,
		PeakPrice:  sig.Price,
	}
}

// WorstCasePnL is the realized P&L if the current stop were hit. Once the
// stop has been moved beyond the entry it is a locked-in gain.
func (p *Position) WorstCasePnL() float64 {
	if p.Direction == signal.Long {
		return p.Quantity * (p.Stop - p.EntryPrice)
	}
	return p.Quantity * (p.EntryPrice - p.Stop)
}

// ClosedTrade is an immutable ledger entry for a finished trade.
type ClosedTrade struct {
	ID         string
	Direction  signal.Direction
	Rule       signal.Rule
	EntryPrice float64
	EntryTime  time.Time
	Quantity   float64
	ATRAtEntry float64

	ExitPrice float64
	ExitTime  time.Time
	Reason    ExitReason
	PnL       float64
}
