package sim

import (
	"time"

	"github.com/rustyeddy/propsim/market"
	"github.com/rustyeddy/propsim/signal"
)

// Exits holds the stop-management multipliers, all in units of the ATR
// captured at entry.
type Exits struct {
	// BreakevenTrigger arms the breakeven stop once the favorable excursion
	// reaches this many ATRs.
	BreakevenTrigger float64
	// TrailMult is the distance the trailing stop keeps from the favorable
	// peak.
	TrailMult float64
}

// Advance evaluates one bar against an open position, in fixed order:
//
//  1. stop hit (close at stop; reason depends on the current state)
//  2. take-profit hit (close at TP)
//  3. favorable-peak update
//  4. breakeven arming
//  5. trailing-stop tightening
//
// When a bar's range straddles both the stop and the take-profit the true
// intrabar path is unknown from OHLC alone; the stop is assumed to hit first.
// That is a deliberate worst-case policy, not an inference about the data.
//
// Returns a ClosedTrade if the position closed on this bar, nil otherwise.
// The effective stop only ever moves in the position's favor.
func Advance(p *Position, bar market.Bar, cfg Exits) *ClosedTrade {
	if p == nil || p.State == Closed {
		return nil
	}

	long := p.Direction == signal.Long

	// 1) Stop.
	if stopHit(p, bar, long) {
		return closeAt(p, p.Stop, bar.Time, stopReason(p.State))
	}

	// 2) Take-profit.
	if takeProfitHit(p, bar, long) {
		return closeAt(p, p.TakeProfit, bar.Time, ExitTakeProfit)
	}

	// 3) Favorable peak.
	if long {
		if bar.High > p.PeakPrice {
			p.PeakPrice = bar.High
		}
	} else {
		if bar.Low < p.PeakPrice {
			p.PeakPrice = bar.Low
		}
	}

	// 4) Breakeven: once the excursion reaches the trigger, the stop moves to
	// entry and downside on the trade is gone.
	if p.State == Open && favorableExcursion(p, long) >= cfg.BreakevenTrigger*p.ATRAtEntry {
		p.Stop = tighten(p.Stop, p.EntryPrice, long)
		p.State = BreakevenArmed
	}

	// 5) Trail from the peak, tightening only.
	if p.State == BreakevenArmed || p.State == Trailing {
		var candidate float64
		if long {
			candidate = p.PeakPrice - cfg.TrailMult*p.ATRAtEntry
		} else {
			candidate = p.PeakPrice + cfg.TrailMult*p.ATRAtEntry
		}
		moved := tighten(p.Stop, candidate, long)
		if moved != p.Stop {
			p.Stop = moved
			p.State = Trailing
		}
	}

	return nil
}

// ForceClose closes an open position at the bar's close, used when the data
// runs out with a trade still on.
func ForceClose(p *Position, bar market.Bar) *ClosedTrade {
	if p == nil || p.State == Closed {
		return nil
	}
	return closeAt(p, bar.Close, bar.Time, ExitEndOfData)
}

func stopHit(p *Position, bar market.Bar, long bool) bool {
	if long {
		return bar.Low <= p.Stop
	}
	return bar.High >= p.Stop
}

func takeProfitHit(p *Position, bar market.Bar, long bool) bool {
	if long {
		return bar.High >= p.TakeProfit
	}
	return bar.Low <= p.TakeProfit
}

func favorableExcursion(p *Position, long bool) float64 {
	if long {
		return p.PeakPrice - p.EntryPrice
	}
	return p.EntryPrice - p.PeakPrice
}

// tighten returns candidate if it is more protective than current for the
// given side, otherwise current.
func tighten(current, candidate float64, long bool) float64 {
	if long {
		if candidate > current {
			return candidate
		}
		return current
	}
	if candidate < current {
		return candidate
	}
	return current
}

func stopReason(s State) ExitReason {
	switch s {
	case BreakevenArmed:
		return ExitBreakeven
	case Trailing:
		return ExitTrail
	}
	return ExitStopLoss
}

func closeAt(p *Position, price float64, at time.Time, reason ExitReason) *ClosedTrade {
	p.State = Closed

	pnl := p.Quantity * (price - p.EntryPrice)
	if p.Direction == signal.Short {
		pnl = p.Quantity * (p.EntryPrice - price)
	}

	return &ClosedTrade{
		ID:         p.ID,
		Direction:  p.Direction,
		Rule:       p.Rule,
		EntryPrice: p.EntryPrice,
		EntryTime:  p.EntryTime,
		Quantity:   p.Quantity,
		ATRAtEntry: p.ATRAtEntry,
		ExitPrice:  price,
		ExitTime:   at,
		Reason:     reason,
		PnL:        pnl,
	}
}
