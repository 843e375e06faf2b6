package backtest

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rustyeddy/propsim/market"
	"github.com/rustyeddy/propsim/signal"
)

// SweepResult pairs one parameter set with the outcome of its run.
type SweepResult struct {
	Params Params
	Result Result
	Err    error
}

// Sweep runs one independent backtest per parameter set, concurrently, over
// the same bars and feed. Every run gets its own risk manager and position
// state; nothing is shared, so results are the same as running each set
// alone. The returned slice is ordered like the input.
func Sweep(ctx context.Context, bars market.Series, feed market.Feed, rules []signal.Rule, sets []Params, equity float64, log *zap.Logger) []SweepResult {
	out := make([]SweepResult, len(sets))

	var wg sync.WaitGroup
	for i, p := range sets {
		wg.Add(1)
		go func(i int, p Params) {
			defer wg.Done()
			r := Runner{
				Bars:   bars,
				Feed:   feed,
				Rules:  rules,
				Params: p,
				Equity: equity,
				Logger: log,
			}
			res, err := r.Run(ctx)
			out[i] = SweepResult{Params: p, Result: res, Err: err}
		}(i, p)
	}
	wg.Wait()

	return out
}
