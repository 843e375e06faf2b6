package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// LoadBarsCSV reads bars from a CSV file with the header
// time,open,high,low,close,volume. Time is RFC3339 or a unix-seconds integer.
func LoadBarsCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()
	return ReadBars(f)
}

// ReadBars parses bar rows from r. The first row is skipped if it looks like a
// header.
func ReadBars(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var bars Series
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars: %w", err)
		}
		line++
		if len(rec) < 5 {
			return nil, fmt.Errorf("read bars: line %d has %d fields, want at least 5", line, len(rec))
		}
		if line == 1 && rec[0] == "time" {
			continue
		}

		ts, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read bars: line %d: %w", line, err)
		}

		vals := make([]float64, 0, 5)
		for _, s := range rec[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("read bars: line %d: bad number %q: %w", line, s, err)
			}
			vals = append(vals, v)
		}

		b := Bar{Time: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}
		if len(vals) > 4 {
			b.Volume = vals[4]
		}
		bars = append(bars, b)
	}

	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

// LoadSeriesCSV reads a single indicator column from a CSV file with the
// header time,value. Only the values are returned; alignment with the bar
// series is checked later by Align.
func LoadSeriesCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	var vals []float64
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read series: %w", err)
		}
		line++
		if len(rec) < 2 {
			return nil, fmt.Errorf("read series: line %d has %d fields, want 2", line, len(rec))
		}
		if line == 1 && rec[0] == "time" {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("read series: line %d: bad number %q: %w", line, rec[1], err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", s)
	}
	return time.Unix(secs, 0).UTC(), nil
}
