package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propsim/signal"
)

func TestSweepOrderedAndIsolated(t *testing.T) {
	t.Parallel()

	bars, feed := takeProfitFixture()
	rules := []signal.Rule{signal.EMACross}

	tight := Defaults()
	tight.TPATR = 0.5 // TP at 2025, hit one bar earlier than the default

	bad := Defaults()
	bad.RiskFraction = 0

	sets := []Params{Defaults(), tight, bad}
	got := Sweep(context.Background(), bars, feed, rules, sets, 10000, nil)

	require.Len(t, got, 3)
	for i, s := range sets {
		assert.Equal(t, s, got[i].Params)
	}

	require.NoError(t, got[0].Err)
	require.NoError(t, got[1].Err)
	assert.ErrorIs(t, got[2].Err, ErrConfig)

	// The default set rides to 2075, the tight set exits at 2025. A shared
	// account would have produced identical ledgers.
	require.Len(t, got[0].Result.Ledger, 1)
	require.Len(t, got[1].Result.Ledger, 1)
	assert.Equal(t, 2075.0, got[0].Result.Ledger[0].ExitPrice)
	assert.Equal(t, 2025.0, got[1].Result.Ledger[0].ExitPrice)

	// Each run matches the same parameters run alone.
	solo := Runner{Bars: bars, Feed: feed, Rules: rules, Params: tight, Equity: 10000}
	want, err := solo.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Curve, got[1].Result.Curve)
	assert.Equal(t, want.Report, got[1].Result.Report)
}
