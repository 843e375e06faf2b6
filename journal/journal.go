// Package journal persists simulation output: the closed-trade ledger and the
// per-bar equity curve. Backends: CSV files, SQLite, and an in-memory journal
// for tests and library callers.
package journal

import (
	"time"

	"github.com/rustyeddy/propsim/sim"
)

// TradeRecord is one persisted closed trade.
type TradeRecord struct {
	TradeID    string
	Direction  string
	Rule       string
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPnL float64
	Reason     string
	ATRAtEntry float64
}

// EquitySnapshot is one persisted equity-curve point.
type EquitySnapshot struct {
	Time   time.Time
	Equity float64
}

// Journal receives every closed trade and equity point as a run progresses.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// FromClosedTrade converts a ledger entry to its persisted form.
func FromClosedTrade(ct sim.ClosedTrade) TradeRecord {
	return TradeRecord{
		TradeID:     ct.ID,
		Direction:   ct.Direction.String(),
		Rule:        string(ct.Rule),
		Quantity:    ct.Quantity,
		EntryPrice:  ct.EntryPrice,
		ExitPrice:   ct.ExitPrice,
		OpenTime:    ct.EntryTime,
		CloseTime:   ct.ExitTime,
		RealizedPnL: ct.PnL,
		Reason:      string(ct.Reason),
		ATRAtEntry:  ct.ATRAtEntry,
	}
}

// Memory collects records in slices; the zero value is ready to use.
type Memory struct {
	Trades []TradeRecord
	Equity []EquitySnapshot
}

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.Trades = append(m.Trades, t)
	return nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.Equity = append(m.Equity, e)
	return nil
}

func (m *Memory) Close() error { return nil }

// Discard drops everything, for callers that do not want journaling.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error    { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }
