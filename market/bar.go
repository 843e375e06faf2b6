// Package market holds the input data model for a simulation run: OHLCV bars
// and the indicator series aligned to them.
//
// The simulation core never fetches or computes this data itself; callers hand
// it a fully materialized, validated slice of bars plus a Feed of indicator
// values computed elsewhere.
package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrAlignment reports inconsistent input data: unordered bars or an indicator
// series whose length does not match the bar series. It is fatal; a run must
// not start with misaligned inputs.
var ErrAlignment = errors.New("market: misaligned input data")

// Bar is a single OHLCV bar. Bars are treated as immutable once produced.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Date returns the bar's calendar date in UTC, used for daily rollovers.
func (b Bar) Date() time.Time {
	y, m, d := b.Time.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Series is an ordered sequence of bars.
type Series []Bar

// Validate checks that timestamps are strictly increasing.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return fmt.Errorf("%w: bar %d time %s not after bar %d time %s",
				ErrAlignment, i, s[i].Time.Format(time.RFC3339), i-1, s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Feed maps an indicator name ("ema_fast", "rsi", "atr", ...) to a series of
// values aligned index-for-index with the bars.
type Feed map[string][]float64

// Series returns the named indicator series, or an error if the feed does not
// carry it.
func (f Feed) Series(name string) ([]float64, error) {
	vals, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w: indicator %q not in feed", ErrAlignment, name)
	}
	return vals, nil
}

// Align validates bars and feed together: strictly increasing bar timestamps
// and every indicator series exactly as long as the bar series. It is run once
// before a simulation starts; failure aborts the run.
func Align(bars Series, feed Feed) error {
	if err := bars.Validate(); err != nil {
		return err
	}
	for name, vals := range feed {
		if len(vals) != len(bars) {
			return fmt.Errorf("%w: indicator %q has %d values for %d bars",
				ErrAlignment, name, len(vals), len(bars))
		}
	}
	return nil
}
