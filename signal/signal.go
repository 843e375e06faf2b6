// Package signal scans bars and aligned indicator series and emits typed
// entry signals. Rules are a closed set evaluated by free functions; adding a
// rule means adding a variant and one evaluator, not a new type hierarchy.
package signal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/propsim/market"
)

// Direction of a candidate trade.
type Direction int8

const (
	Long  Direction = +1
	Short Direction = -1
)

func (d Direction) String() string {
	if d == Short {
		return "SHORT"
	}
	return "LONG"
}

// Rule identifies which entry rule produced a signal.
type Rule string

const (
	EMACross    Rule = "EMA_CROSS"
	MACDCross   Rule = "MACD_CROSS"
	RSIReversal Rule = "RSI_REVERSAL"
)

// Rules is the full closed set, in evaluation order.
var Rules = []Rule{EMACross, MACDCross, RSIReversal}

// Indicator series names each rule reads from the feed.
const (
	SeriesEMAFast    = "ema_fast"
	SeriesEMASlow    = "ema_slow"
	SeriesMACD       = "macd"
	SeriesMACDSignal = "macd_signal"
	SeriesRSI        = "rsi"
)

// RSI reversal thresholds.
const (
	rsiOversold   = 20.0
	rsiOverbought = 80.0
)

// Signal is an entry candidate emitted at a specific bar. It is consumed
// exactly once, at the bar it was emitted on.
type Signal struct {
	Time      time.Time
	Direction Direction
	Price     float64 // reference price (bar close)
	Rule      Rule
}

// Generate evaluates the given rules over every bar and returns the resulting
// signals in bar order. Each rule only compares the current bar/indicator
// values with the immediately preceding ones, so no future data leaks in.
//
// If several rules fire in the same direction on one bar they collapse to a
// single signal tagged with the first firing rule. If rules fire in opposite
// directions on the same bar, both are discarded.
func Generate(bars market.Series, feed market.Feed, rules []Rule) ([]Signal, error) {
	if len(rules) == 0 {
		rules = Rules
	}
	if err := market.Align(bars, feed); err != nil {
		return nil, err
	}
	for _, r := range rules {
		for _, name := range SeriesFor(r) {
			if _, err := feed.Series(name); err != nil {
				return nil, err
			}
		}
	}

	var out []Signal
	for i := 1; i < len(bars); i++ {
		if sig, ok := At(bars, feed, rules, i); ok {
			out = append(out, sig)
		}
	}
	return out, nil
}

// At evaluates all rules at bar index i (i >= 1) and applies the same-bar
// collapse/discard policy. The feed is assumed validated.
func At(bars market.Series, feed market.Feed, rules []Rule, i int) (Signal, bool) {
	if i < 1 || i >= len(bars) {
		return Signal{}, false
	}

	var long, short *Signal
	for _, r := range rules {
		dir, fired := evaluate(r, bars, feed, i)
		if !fired {
			continue
		}
		sig := Signal{
			Time:      bars[i].Time,
			Direction: dir,
			Price:     bars[i].Close,
			Rule:      r,
		}
		// First firing rule in set order keeps the tag.
		if dir == Long && long == nil {
			long = &sig
		}
		if dir == Short && short == nil {
			short = &sig
		}
	}

	switch {
	case long != nil && short != nil:
		// Ambiguous bar; emit nothing.
		return Signal{}, false
	case long != nil:
		return *long, true
	case short != nil:
		return *short, true
	}
	return Signal{}, false
}

func evaluate(r Rule, bars market.Series, feed market.Feed, i int) (Direction, bool) {
	switch r {
	case EMACross:
		return crossover(feed[SeriesEMAFast], feed[SeriesEMASlow], i)
	case MACDCross:
		return crossover(feed[SeriesMACD], feed[SeriesMACDSignal], i)
	case RSIReversal:
		return rsiReversal(bars, feed[SeriesRSI], i)
	}
	return 0, false
}

// crossover fires long when fast moves from <= slow to > slow between the
// previous and current index, short on the mirror move.
func crossover(fast, slow []float64, i int) (Direction, bool) {
	diff := fast[i] - slow[i]
	prev := fast[i-1] - slow[i-1]

	switch {
	case diff > 0 && prev <= 0:
		return Long, true
	case diff < 0 && prev >= 0:
		return Short, true
	}
	return 0, false
}

// rsiReversal fires long when RSI was or is below the oversold threshold and
// the close ticked up, short on the overbought mirror.
func rsiReversal(bars market.Series, rsi []float64, i int) (Direction, bool) {
	closeUp := bars[i].Close > bars[i-1].Close
	closeDown := bars[i].Close < bars[i-1].Close

	switch {
	case (rsi[i] < rsiOversold || rsi[i-1] < rsiOversold) && closeUp:
		return Long, true
	case (rsi[i] > rsiOverbought || rsi[i-1] > rsiOverbought) && closeDown:
		return Short, true
	}
	return 0, false
}

// SeriesFor lists the indicator series a rule reads from the feed.
func SeriesFor(r Rule) []string {
	switch r {
	case EMACross:
		return []string{SeriesEMAFast, SeriesEMASlow}
	case MACDCross:
		return []string{SeriesMACD, SeriesMACDSignal}
	case RSIReversal:
		return []string{SeriesRSI}
	}
	return nil
}

// Valid reports whether r is a known rule.
func (r Rule) Valid() bool {
	for _, known := range Rules {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRule converts a rule name as it appears in config files.
func ParseRule(s string) (Rule, error) {
	r := Rule(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rule %q (supported: EMA_CROSS, MACD_CROSS, RSI_REVERSAL)", s)
	}
	return r, nil
}
