// Package metrics computes aggregate performance statistics from an equity
// curve and a closed-trade ledger. Everything here is a pure function over
// plain data; presentation belongs to the caller.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/propsim/sim"
)

// TradingDaysPerYear annualizes daily return statistics.
const TradingDaysPerYear = 252

// EquityPoint is one sample of the realized equity curve, one per bar.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Report is the aggregate performance record for one run.
type Report struct {
	Trades int
	Wins   int
	Losses int

	GrossProfit float64
	GrossLoss   float64 // positive magnitude

	TotalReturn  float64
	WinRate      float64
	ProfitFactor float64 // +Inf when there are profits and no losses
	MaxDrawdown  float64
	Sharpe       float64
	Sortino      float64 // +Inf when no downside returns exist
	VaR95        float64
}

// Compute builds a Report. The first curve point is taken as the initial
// equity. Degenerate inputs (no trades, a single trade, zero variance) yield
// defined values, never division errors.
func Compute(curve []EquityPoint, ledger []sim.ClosedTrade) Report {
	r := Report{Trades: len(ledger)}

	for _, ct := range ledger {
		switch {
		case ct.PnL > 0:
			r.Wins++
			r.GrossProfit += ct.PnL
		case ct.PnL < 0:
			r.Losses++
			r.GrossLoss += -ct.PnL
		}
	}

	if r.Trades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.Trades)
	}
	r.ProfitFactor = profitFactor(r.GrossProfit, r.GrossLoss, r.Trades)

	if len(curve) > 0 && curve[0].Equity > 0 {
		r.TotalReturn = curve[len(curve)-1].Equity/curve[0].Equity - 1
	}
	r.MaxDrawdown = MaxDrawdown(curve)

	daily := DailyReturns(curve)
	r.Sharpe = Sharpe(daily)
	r.Sortino = Sortino(daily)
	r.VaR95 = VaR(daily, 0.95)

	return r
}

func profitFactor(grossProfit, grossLoss float64, trades int) float64 {
	if trades == 0 {
		return 0
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// MaxDrawdown is the largest fractional decline from a running equity peak.
func MaxDrawdown(curve []EquityPoint) float64 {
	var peak, maxDD float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if dd := (peak - p.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// DailyReturns compresses a per-bar equity curve to one close per calendar
// date (UTC) and returns the day-over-day simple returns.
func DailyReturns(curve []EquityPoint) []float64 {
	var closes []float64
	var lastDay time.Time

	for _, p := range curve {
		y, m, d := p.Time.UTC().Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if day.Equal(lastDay) && len(closes) > 0 {
			closes[len(closes)-1] = p.Equity
			continue
		}
		closes = append(closes, p.Equity)
		lastDay = day
	}

	if len(closes) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			rets = append(rets, 0)
			continue
		}
		rets = append(rets, closes[i]/closes[i-1]-1)
	}
	return rets
}

// Sharpe is the annualized mean/stdev ratio of daily returns. Zero variance
// (or fewer than two returns) yields 0 rather than an error.
func Sharpe(daily []float64) float64 {
	if len(daily) < 2 {
		return 0
	}
	mean := mean(daily)
	sd := stddev(daily, mean)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(TradingDaysPerYear)
}

// Sortino is Sharpe with the denominator replaced by downside deviation,
// sqrt(mean(min(r,0)^2)). With no downside returns the ratio is undefined and
// the +Inf sentinel is returned.
func Sortino(daily []float64) float64 {
	if len(daily) < 2 {
		return 0
	}
	m := mean(daily)

	var sumSq float64
	for _, r := range daily {
		if r < 0 {
			sumSq += r * r
		}
	}
	if sumSq == 0 {
		return math.Inf(1)
	}
	dd := math.Sqrt(sumSq / float64(len(daily)))
	return m / dd * math.Sqrt(TradingDaysPerYear)
}

// VaR returns the historical value-at-risk of the return distribution at the
// given confidence, as the (1-confidence) quantile with linear interpolation
// between order statistics. A 95% confidence gives the 5th-percentile return
// (usually negative). Empty input yields 0.
func VaR(daily []float64, confidence float64) float64 {
	if len(daily) == 0 {
		return 0
	}
	sorted := make([]float64, len(daily))
	copy(sorted, daily)
	sort.Float64s(sorted)

	rank := (1 - confidence) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation.
func stddev(xs []float64, mean float64) float64 {
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
