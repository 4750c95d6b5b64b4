// Package signals provides technical indicator calculations
package signals

import "math"

// SMA calculates the Simple Moving Average over the last period samples.
// closes are ordered most-recent-last. Returns ok=false when there is
// not enough data.
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), true
}

// MA25 returns the 25-day moving average of the given close history,
// or nil when fewer than 25 samples are available.
func MA25(closes []float64) *float64 {
	ma, ok := SMA(closes, 25)
	if !ok {
		return nil
	}
	return &ma
}

// WithinBand reports whether price sits within tolerance*price of the
// reference value. Used by the moving-average touch alert.
func WithinBand(price, reference, tolerance float64) bool {
	return math.Abs(price-reference) <= tolerance*price
}

// Change returns the absolute and percentage change from previous to
// current. Percentage is 0 when previous is 0.
func Change(current, previous float64) (float64, float64) {
	abs := current - previous
	if previous == 0 {
		return abs, 0
	}
	return abs, abs / previous * 100
}
