package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propsim/sim"
)

func curveFrom(equities ...float64) []EquityPoint {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]EquityPoint, len(equities))
	for i, e := range equities {
		out[i] = EquityPoint{Time: t0.AddDate(0, 0, i), Equity: e}
	}
	return out
}

func trade(pnl float64) sim.ClosedTrade {
	return sim.ClosedTrade{ID: "t", PnL: pnl}
}

func TestComputeEmptyLedger(t *testing.T) {
	t.Parallel()

	r := Compute(curveFrom(10000, 10000, 10000), nil)

	assert.Equal(t, 0, r.Trades)
	assert.Equal(t, 0.0, r.WinRate)
	assert.Equal(t, 0.0, r.ProfitFactor)
	assert.Equal(t, 0.0, r.TotalReturn)
	assert.Equal(t, 0.0, r.MaxDrawdown)
	assert.Equal(t, 0.0, r.Sharpe) // zero variance
}

func TestComputeNoCurve(t *testing.T) {
	t.Parallel()

	r := Compute(nil, nil)
	assert.Equal(t, 0.0, r.TotalReturn)
	assert.Equal(t, 0.0, r.VaR95)
	assert.Equal(t, 0.0, r.Sortino)
}

func TestComputeSingleTrade(t *testing.T) {
	t.Parallel()

	r := Compute(curveFrom(10000, 10500), []sim.ClosedTrade{trade(500)})

	assert.Equal(t, 1, r.Trades)
	assert.Equal(t, 1.0, r.WinRate)
	assert.True(t, math.IsInf(r.ProfitFactor, 1), "no losses with profit should be +Inf")
	assert.InDelta(t, 0.05, r.TotalReturn, 1e-9)
	// One daily return only: Sharpe defined as 0, not NaN.
	assert.Equal(t, 0.0, r.Sharpe)
}

func TestWinRateAndProfitFactor(t *testing.T) {
	t.Parallel()

	ledger := []sim.ClosedTrade{trade(300), trade(-100), trade(200), trade(-150), trade(0)}
	r := Compute(curveFrom(10000, 10250), ledger)

	assert.Equal(t, 5, r.Trades)
	assert.Equal(t, 2, r.Wins)
	assert.Equal(t, 2, r.Losses)
	assert.InDelta(t, 0.4, r.WinRate, 1e-9)
	assert.InDelta(t, 500.0/250.0, r.ProfitFactor, 1e-9)
}

func TestProfitFactorAllFlat(t *testing.T) {
	t.Parallel()

	r := Compute(curveFrom(10000, 10000), []sim.ClosedTrade{trade(0), trade(0)})
	assert.Equal(t, 0.0, r.ProfitFactor)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		curve  []EquityPoint
		want   float64
	}{
		{"monotone_up", curveFrom(100, 110, 120), 0},
		{"single_dip", curveFrom(100, 80, 120), 0.20},
		{"later_deeper", curveFrom(100, 90, 120, 60), 0.5},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, MaxDrawdown(tt.curve), 1e-9)
		})
	}
}

func TestDailyReturnsCompressesIntraday(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	curve := []EquityPoint{
		{Time: t0, Equity: 10000},
		{Time: t0.Add(time.Hour), Equity: 10100},
		{Time: t0.Add(2 * time.Hour), Equity: 10200}, // day-1 close
		{Time: t0.AddDate(0, 0, 1), Equity: 10100},
		{Time: t0.AddDate(0, 0, 1).Add(time.Hour), Equity: 10404}, // day-2 close
	}

	rets := DailyReturns(curve)
	require.Len(t, rets, 1)
	assert.InDelta(t, 10404.0/10200.0-1, rets[0], 1e-12)
}

func TestSharpeZeroVariance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Sharpe([]float64{0.01, 0.01, 0.01}))
	assert.Equal(t, 0.0, Sharpe(nil))
	assert.Equal(t, 0.0, Sharpe([]float64{0.05}))
}

func TestSharpe(t *testing.T) {
	t.Parallel()

	daily := []float64{0.01, -0.005, 0.02, 0.0, -0.01}
	got := Sharpe(daily)

	m := 0.003
	// sample stdev of the series above
	sd := math.Sqrt((math.Pow(0.01-m, 2) + math.Pow(-0.005-m, 2) + math.Pow(0.02-m, 2) +
		math.Pow(0.0-m, 2) + math.Pow(-0.01-m, 2)) / 4)
	assert.InDelta(t, m/sd*math.Sqrt(252), got, 1e-9)
}

func TestSortinoNoDownside(t *testing.T) {
	t.Parallel()

	got := Sortino([]float64{0.01, 0.02, 0.0})
	assert.True(t, math.IsInf(got, 1))
}

func TestSortino(t *testing.T) {
	t.Parallel()

	daily := []float64{0.02, -0.01, 0.01, -0.02}
	m := 0.0
	dd := math.Sqrt((0.01*0.01 + 0.02*0.02) / 4)
	want := m / dd * math.Sqrt(252)
	assert.InDelta(t, want, Sortino(daily), 1e-9)
}

func TestVaR(t *testing.T) {
	t.Parallel()

	// 21 sorted returns make the 5th percentile land exactly on index 1.
	daily := make([]float64, 21)
	for i := range daily {
		daily[i] = float64(i-10) / 100 // -0.10 .. +0.10
	}
	assert.InDelta(t, -0.09, VaR(daily, 0.95), 1e-12)

	// Interpolation between order statistics.
	got := VaR([]float64{-0.04, -0.02, 0.01, 0.03}, 0.95)
	// rank = 0.05*3 = 0.15 -> between -0.04 and -0.02
	assert.InDelta(t, -0.04+0.15*0.02, got, 1e-12)

	assert.Equal(t, 0.0, VaR(nil, 0.95))
	assert.Equal(t, -0.03, VaR([]float64{-0.03}, 0.95))
}
