package backtest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/propsim/journal"
	"github.com/rustyeddy/propsim/market"
	"github.com/rustyeddy/propsim/metrics"
	"github.com/rustyeddy/propsim/risk"
	"github.com/rustyeddy/propsim/signal"
	"github.com/rustyeddy/propsim/sim"
)

// SeriesATR names the indicator series the runner reads stop distances from.
const SeriesATR = "atr"

// Runner replays one bar series through one parameter set. Zero-value Logger
// and Journal fields default to a nop logger and a discarding journal.
type Runner struct {
	Bars   market.Series
	Feed   market.Feed
	Rules  []signal.Rule
	Params Params
	Equity float64 // starting account equity

	Logger  *zap.Logger
	Journal journal.Journal
}

// Run replays the bars in order. Configuration problems fail before the first
// bar; after that the only errors are journal write failures. Cancelling ctx
// stops consuming bars and returns the partial result alongside ctx.Err().
func (r *Runner) Run(ctx context.Context) (Result, error) {
	rules := r.Rules
	if len(rules) == 0 {
		rules = signal.Rules
	}
	if err := r.validate(rules); err != nil {
		return Result{}, err
	}

	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	jrn := r.Journal
	if jrn == nil {
		jrn = journal.Discard{}
	}

	atr, err := r.Feed.Series(SeriesATR)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	mgr := risk.NewManager(r.Params.Policy(), r.Equity)
	mgr.SetLogger(log)
	exits := r.Params.Exits()

	res := Result{
		Curve:   make([]metrics.EquityPoint, 0, len(r.Bars)+1),
		Denials: make(map[string]int),
	}

	record := func(pt metrics.EquityPoint) error {
		res.Curve = append(res.Curve, pt)
		return jrn.RecordEquity(journal.EquitySnapshot{Time: pt.Time, Equity: pt.Equity})
	}
	settle := func(ct sim.ClosedTrade) error {
		mgr.RegisterClose(ct)
		res.Ledger = append(res.Ledger, ct)
		return jrn.RecordTrade(journal.FromClosedTrade(ct))
	}

	if err := record(metrics.EquityPoint{Time: r.Bars[0].Time, Equity: r.Equity}); err != nil {
		return res, fmt.Errorf("journal equity: %w", err)
	}

	cancelled := false
	consumed := 0

bars:
	for i, bar := range r.Bars {
		select {
		case <-ctx.Done():
			cancelled = true
			break bars
		default:
		}
		consumed = i + 1

		if p := mgr.OpenPosition(); p != nil {
			if ct := sim.Advance(p, bar, exits); ct != nil {
				if err := settle(*ct); err != nil {
					return res, fmt.Errorf("journal trade: %w", err)
				}
			}
		}

		// Worst-case intraday loss can trip the breaker even when realized
		// equity later recovers, so it is checked every bar.
		mgr.CheckDailyBreaker(bar.Time)

		if mgr.OpenPosition() == nil {
			if sig, ok := signal.At(r.Bars, r.Feed, rules, i); ok {
				r.tryOpen(mgr, sig, atr[i], log, &res)
			}
		}

		if err := record(metrics.EquityPoint{Time: bar.Time, Equity: mgr.Account().Equity}); err != nil {
			return res, fmt.Errorf("journal equity: %w", err)
		}
	}

	if !cancelled {
		if p := mgr.OpenPosition(); p != nil {
			last := r.Bars[consumed-1]
			ct := sim.ForceClose(p, last)
			if err := settle(*ct); err != nil {
				return res, fmt.Errorf("journal trade: %w", err)
			}
			if err := record(metrics.EquityPoint{Time: last.Time, Equity: mgr.Account().Equity}); err != nil {
				return res, fmt.Errorf("journal equity: %w", err)
			}
		}
	}

	res.Report = metrics.Compute(res.Curve, res.Ledger)

	log.Info("run complete",
		zap.Int("bars", consumed),
		zap.Int("trades", len(res.Ledger)),
		zap.Float64("final_equity", res.FinalEquity()),
		zap.Float64("total_return", res.Report.TotalReturn),
		zap.Bool("cancelled", cancelled),
	)

	if cancelled {
		return res, ctx.Err()
	}
	return res, nil
}

// tryOpen sizes a signal, consults the risk manager and opens the position
// when every gate allows it. Denials and degenerate sizes skip the signal
// without failing the run.
func (r *Runner) tryOpen(mgr *risk.Manager, sig signal.Signal, atr float64, log *zap.Logger, res *Result) {
	var stop, tp float64
	if sig.Direction == signal.Long {
		stop = sig.Price - r.Params.StopATR*atr
		tp = sig.Price + r.Params.TPATR*atr
	} else {
		stop = sig.Price + r.Params.StopATR*atr
		tp = sig.Price - r.Params.TPATR*atr
	}

	qty, err := risk.Size(mgr.Account().Equity, r.Params.RiskFraction, sig.Price, stop)
	if err != nil {
		log.Debug("signal skipped, unsizeable",
			zap.Time("at", sig.Time),
			zap.String("rule", string(sig.Rule)),
			zap.Error(err),
		)
		return
	}

	d := mgr.CanOpen(sig.Time)
	if !d.Allowed {
		res.Denials[d.Reason]++
		return
	}

	p := sim.OpenPosition(sig, qty, stop, tp, atr)
	mgr.RegisterOpen(p)
	log.Debug("position opened",
		zap.String("id", p.ID),
		zap.Stringer("direction", p.Direction),
		zap.String("rule", string(p.Rule)),
		zap.Float64("entry", p.EntryPrice),
		zap.Float64("stop", p.Stop),
		zap.Float64("take_profit", p.TakeProfit),
		zap.Float64("quantity", p.Quantity),
	)
}

func (r *Runner) validate(rules []signal.Rule) error {
	if len(r.Bars) == 0 {
		return fmt.Errorf("%w: no bars", ErrConfig)
	}
	if err := r.Bars.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := market.Align(r.Bars, r.Feed); err != nil {
		return err
	}
	// Rule evaluation indexes its series directly; missing ones fail here,
	// not mid-run.
	for _, rule := range rules {
		if !rule.Valid() {
			return fmt.Errorf("%w: unknown rule %q", ErrConfig, rule)
		}
		for _, name := range signal.SeriesFor(rule) {
			if _, err := r.Feed.Series(name); err != nil {
				return fmt.Errorf("%w: %v", ErrConfig, err)
			}
		}
	}
	if err := r.Params.Validate(); err != nil {
		return err
	}
	if r.Equity <= 0 {
		return fmt.Errorf("%w: starting equity %.2f must be positive", ErrConfig, r.Equity)
	}
	return nil
}
