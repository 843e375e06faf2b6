package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propsim/market"
	"github.com/rustyeddy/propsim/signal"
)

var testExits = Exits{BreakevenTrigger: 1.0, TrailMult: 0.5}

func longPos(entry, stop, tp, atr float64) *Position {
	return OpenPosition(signal.Signal{
		Time:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Direction: signal.Long,
		Price:     entry,
		Rule:      signal.EMACross,
	}, 20, stop, tp, atr)
}

func shortPos(entry, stop, tp, atr float64) *Position {
	return OpenPosition(signal.Signal{
		Time:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Direction: signal.Short,
		Price:     entry,
		Rule:      signal.EMACross,
	}, 20, stop, tp, atr)
}

func bar(h, l, c float64) market.Bar {
	return market.Bar{
		Time: time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		Open: c, High: h, Low: l, Close: c,
	}
}

func TestLongStopLoss(t *testing.T) {
	t.Parallel()

	p := longPos(2000, 1960, 2075, 50)
	ct := Advance(p, bar(2010, 1955, 1980), testExits)

	require.NotNil(t, ct)
	assert.Equal(t, ExitStopLoss, ct.Reason)
	assert.Equal(t, 1960.0, ct.ExitPrice)
	assert.InDelta(t, 20*(1960.0-2000.0), ct.PnL, 1e-9)
	assert.Equal(t, Closed, p.State)
}

func TestLongTakeProfit(t *testing.T) {
	t.Parallel()

	p := longPos(2000, 1960, 2075, 50)
	ct := Advance(p, bar(2080, 1990, 2070), testExits)

	require.NotNil(t, ct)
	assert.Equal(t, ExitTakeProfit, ct.Reason)
	assert.Equal(t, 2075.0, ct.ExitPrice)
	assert.InDelta(t, 20*75.0, ct.PnL, 1e-9)
}

func TestStopBeatsTakeProfitOnSameBar(t *testing.T) {
	t.Parallel()

	// Bar range straddles both levels; conservative tie-break closes at stop.
	p := longPos(2000, 1960, 2075, 50)
	ct := Advance(p, bar(2080, 1950, 2000), testExits)

	require.NotNil(t, ct)
	assert.Equal(t, ExitStopLoss, ct.Reason)
	assert.Equal(t, 1960.0, ct.ExitPrice)
}

func TestShortStopAndTakeProfit(t *testing.T) {
	t.Parallel()

	stop := shortPos(2000, 2040, 1925, 50)
	ct := Advance(stop, bar(2045, 1990, 2040), testExits)
	require.NotNil(t, ct)
	assert.Equal(t, ExitStopLoss, ct.Reason)
	assert.InDelta(t, 20*(2000.0-2040.0), ct.PnL, 1e-9)

	tp := shortPos(2000, 2040, 1925, 50)
	ct = Advance(tp, bar(2010, 1920, 1930), testExits)
	require.NotNil(t, ct)
	assert.Equal(t, ExitTakeProfit, ct.Reason)
	assert.InDelta(t, 20*75.0, ct.PnL, 1e-9)
}

func TestBreakevenArming(t *testing.T) {
	t.Parallel()

	p := longPos(2000, 1960, 2200, 50)

	// Excursion below 1 ATR: nothing arms.
	require.Nil(t, Advance(p, bar(2040, 1995, 2030), testExits))
	assert.Equal(t, Open, p.State)
	assert.Equal(t, 1960.0, p.Stop)

	// High reaches entry+ATR: stop moves to entry, then the 0.5 ATR trail from
	// the peak tightens it further within the same bar.
	require.Nil(t, Advance(p, bar(2050, 2000, 2045), testExits))
	assert.Equal(t, Trailing, p.State)
	assert.Equal(t, 2050.0-0.5*50, p.Stop)
}

func TestTrailingStopMonotonic(t *testing.T) {
	t.Parallel()

	p := longPos(2000, 1960, 2500, 50)

	prevStop := p.Stop
	bars := []market.Bar{
		bar(2055, 2000, 2050), // arms + trails to 2030
		bar(2100, 2040, 2090), // trails to 2075
		bar(2080, 2076, 2078), // adverse bar, stop must not move down
		bar(2120, 2076, 2110), // trails to 2095
	}
	for _, b := range bars {
		require.Nil(t, Advance(p, b, testExits))
		assert.GreaterOrEqual(t, p.Stop, prevStop, "stop loosened on bar %s", b.Time)
		prevStop = p.Stop
	}
	assert.Equal(t, 2120.0-25.0, p.Stop)

	// A drop through the trailed stop closes with reason TRAIL at a profit.
	ct := Advance(p, bar(2100, 2090, 2092), testExits)
	require.NotNil(t, ct)
	assert.Equal(t, ExitTrail, ct.Reason)
	assert.Equal(t, 2095.0, ct.ExitPrice)
	assert.Greater(t, ct.PnL, 0.0)
}

func TestBreakevenExitReason(t *testing.T) {
	t.Parallel()

	// Trigger breakeven with a peak low enough that the trail stays below
	// entry, then fall back to entry.
	p := longPos(2000, 1960, 2500, 50)
	require.Nil(t, Advance(p, bar(2050, 2000, 2045), testExits))
	require.Equal(t, Trailing, p.State) // trail at 2025 > entry

	p2 := longPos(2000, 1960, 2500, 50)
	// Peak exactly entry+ATR with a wide trail keeps stop at entry.
	wide := Exits{BreakevenTrigger: 1.0, TrailMult: 2.0}
	require.Nil(t, Advance(p2, bar(2050, 2000, 2045), wide))
	assert.Equal(t, BreakevenArmed, p2.State)
	assert.Equal(t, 2000.0, p2.Stop)

	ct := Advance(p2, bar(2010, 1999, 2005), wide)
	require.NotNil(t, ct)
	assert.Equal(t, ExitBreakeven, ct.Reason)
	assert.Equal(t, 2000.0, ct.ExitPrice)
	assert.Equal(t, 0.0, ct.PnL)
}

func TestShortTrailing(t *testing.T) {
	t.Parallel()

	p := shortPos(2000, 2040, 1500, 50)

	require.Nil(t, Advance(p, bar(1990, 1950, 1955), testExits))
	assert.Equal(t, Trailing, p.State)
	assert.Equal(t, 1950.0+25.0, p.Stop)

	// Lower low tightens further down.
	require.Nil(t, Advance(p, bar(1960, 1900, 1910), testExits))
	assert.Equal(t, 1925.0, p.Stop)

	// Bounce through the trail closes short at a profit.
	ct := Advance(p, bar(1930, 1905, 1928), testExits)
	require.NotNil(t, ct)
	assert.Equal(t, ExitTrail, ct.Reason)
	assert.InDelta(t, 20*(2000.0-1925.0), ct.PnL, 1e-9)
}

func TestForceClose(t *testing.T) {
	t.Parallel()

	p := longPos(2000, 1960, 2075, 50)
	ct := ForceClose(p, bar(2010, 1990, 2004))

	require.NotNil(t, ct)
	assert.Equal(t, ExitEndOfData, ct.Reason)
	assert.Equal(t, 2004.0, ct.ExitPrice)
	assert.Equal(t, Closed, p.State)

	// Closing again is a no-op.
	assert.Nil(t, ForceClose(p, bar(2010, 1990, 2004)))
	assert.Nil(t, Advance(p, bar(2010, 1990, 2004), testExits))
}

func TestWorstCasePnL(t *testing.T) {
	t.Parallel()

	long := longPos(2000, 1960, 2075, 50)
	assert.InDelta(t, 20*(-40.0), long.WorstCasePnL(), 1e-9)

	long.Stop = 2010 // trailed past entry: locked-in gain
	assert.InDelta(t, 20*10.0, long.WorstCasePnL(), 1e-9)

	short := shortPos(2000, 2040, 1925, 50)
	assert.InDelta(t, 20*(-40.0), short.WorstCasePnL(), 1e-9)
}

func TestPositionIDsAreUnique(t *testing.T) {
	t.Parallel()

	a := longPos(2000, 1960, 2075, 50)
	b := longPos(2000, 1960, 2075, 50)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
