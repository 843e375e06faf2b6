package backtest

import (
	"github.com/rustyeddy/propsim/metrics"
	"github.com/rustyeddy/propsim/sim"
)

// EquityPoint aliases the metrics curve sample so callers can stay within
// this package.
type EquityPoint = metrics.EquityPoint

// Result is the complete output of one run. Curve holds one realized-equity
// point per bar consumed; Ledger holds every closed trade in close order.
type Result struct {
	Curve   []metrics.EquityPoint
	Ledger  []sim.ClosedTrade
	Report  metrics.Report
	Denials map[string]int
}

// FinalEquity is the last realized equity value, or zero on an empty curve.
func (r Result) FinalEquity() float64 {
	if len(r.Curve) == 0 {
		return 0
	}
	return r.Curve[len(r.Curve)-1].Equity
}
