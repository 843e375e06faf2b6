// Package backtest replays a bar series through the signal, sizing, risk and
// lifecycle layers and produces an equity curve, a trade ledger and a
// performance report. Runs are deterministic: identical inputs produce
// identical results.
package backtest

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/propsim/risk"
	"github.com/rustyeddy/propsim/sim"
)

// ErrConfig marks an invalid run configuration.
var ErrConfig = errors.New("invalid backtest config")

// Params holds every tunable of a run: the fraction of equity risked per
// trade, the ATR multiples that place the protective exits, and the risk
// policy limits.
type Params struct {
	RiskFraction         float64 `json:"risk_fraction" yaml:"risk_fraction"`
	StopATR              float64 `json:"stop_atr" yaml:"stop_atr"`
	TPATR                float64 `json:"tp_atr" yaml:"tp_atr"`
	BreakevenTrigger     float64 `json:"breakeven_trigger" yaml:"breakeven_trigger"`
	TrailMult            float64 `json:"trail_mult" yaml:"trail_mult"`
	MaxDailyLoss         float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxDrawdown          float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDailyTrades       int     `json:"max_daily_trades" yaml:"max_daily_trades"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	ResetLossStreakDaily bool    `json:"reset_loss_streak_daily" yaml:"reset_loss_streak_daily"`
}

// Defaults returns the baseline parameter set.
func Defaults() Params {
	return Params{
		RiskFraction:         0.08,
		StopATR:              0.8,
		TPATR:                1.5,
		BreakevenTrigger:     1.0,
		TrailMult:            0.5,
		MaxDailyLoss:         0.05,
		MaxDrawdown:          0.15,
		MaxDailyTrades:       3,
		MaxConsecutiveLosses: 2,
	}
}

func (p Params) Validate() error {
	if p.RiskFraction <= 0 || p.RiskFraction > 1 {
		return fmt.Errorf("%w: risk fraction %.4f not in (0, 1]", ErrConfig, p.RiskFraction)
	}
	if p.StopATR <= 0 {
		return fmt.Errorf("%w: stop ATR multiple %.4f must be positive", ErrConfig, p.StopATR)
	}
	if p.TPATR <= 0 {
		return fmt.Errorf("%w: take-profit ATR multiple %.4f must be positive", ErrConfig, p.TPATR)
	}
	if p.BreakevenTrigger < 0 {
		return fmt.Errorf("%w: breakeven trigger %.4f must not be negative", ErrConfig, p.BreakevenTrigger)
	}
	if p.TrailMult < 0 {
		return fmt.Errorf("%w: trail multiple %.4f must not be negative", ErrConfig, p.TrailMult)
	}
	if err := p.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}

// Policy extracts the account-level limits the risk manager enforces.
func (p Params) Policy() risk.Policy {
	return risk.Policy{
		MaxDailyTrades:       p.MaxDailyTrades,
		MaxConsecutiveLosses: p.MaxConsecutiveLosses,
		MaxDailyLoss:         p.MaxDailyLoss,
		MaxDrawdown:          p.MaxDrawdown,
		ResetLossStreakDaily: p.ResetLossStreakDaily,
	}
}

// Exits extracts the per-position exit tuning.
func (p Params) Exits() sim.Exits {
	return sim.Exits{
		BreakevenTrigger: p.BreakevenTrigger,
		TrailMult:        p.TrailMult,
	}
}
