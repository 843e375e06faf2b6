package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propsim/backtest"
)

func TestSetParam(t *testing.T) {
	t.Parallel()

	p := backtest.Defaults()
	require.NoError(t, setParam(&p, "risk_fraction", 0.02))
	assert.Equal(t, 0.02, p.RiskFraction)

	require.NoError(t, setParam(&p, "max_daily_trades", 5))
	assert.Equal(t, 5, p.MaxDailyTrades)

	require.NoError(t, setParam(&p, "trail_mult", 0.75))
	assert.Equal(t, 0.75, p.TrailMult)

	assert.Error(t, setParam(&p, "nope", 1))
}
