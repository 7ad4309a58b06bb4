package indicators

import (
	"math"

	"github.com/wonny/sift/internal/contracts"
)

// Scalar helpers read the tail of a series. They return a neutral zero
// (or false) on short windows so callers can gate on the result without
// a separate length check.

// Slope fits a least-squares line through the last n values and returns
// its per-step slope. Windows that are short or contain NaN return 0.
func Slope(values []float64, n int) float64 {
	if n <= 1 || len(values) < n {
		return 0
	}
	window := values[len(values)-n:]
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range window {
		if math.IsNaN(v) {
			return 0
		}
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// TrailingRatio divides the last value by the mean of the period values
// preceding it. The current value never feeds its own baseline. NaN
// entries in the baseline window are skipped.
func TrailingRatio(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return 0
	}
	current := values[len(values)-1]
	if math.IsNaN(current) {
		return 0
	}
	window := values[len(values)-1-period : len(values)-1]
	var sum float64
	var count int
	for _, v := range window {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	mean := sum / float64(count)
	if mean == 0 {
		return 0
	}
	return current / mean
}

// PercentReturn computes the percentage change from the value period
// positions back to the last value.
func PercentReturn(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	base := values[len(values)-period]
	if base == 0 || math.IsNaN(base) {
		return 0
	}
	return (values[len(values)-1] - base) / base * 100
}

// SwingLow returns the lowest low over the last n values. Shorter
// inputs use every value they have.
func SwingLow(lows []float64, n int) float64 {
	if len(lows) == 0 || n <= 0 {
		return math.NaN()
	}
	start := len(lows) - n
	if start < 0 {
		start = 0
	}
	low := lows[start]
	for _, v := range lows[start+1:] {
		if v < low {
			low = v
		}
	}
	return low
}

// HigherLows counts consecutive rising lows from the start of the last
// lookback window, stopping at the first low that does not rise.
func HigherLows(lows []float64, lookback int) int {
	if lookback <= 0 || len(lows) < lookback {
		return 0
	}
	window := lows[len(lows)-lookback:]
	count := 0
	for i := 1; i < len(window); i++ {
		if window[i] <= window[i-1] {
			break
		}
		count++
	}
	return count
}

// Consolidating reports whether the total high-to-low range of the last
// days candles stays within maxRangePct of the range low.
func Consolidating(highs, lows []float64, days int, maxRangePct float64) bool {
	if days <= 0 || len(highs) < days || len(lows) < days {
		return false
	}
	hi := highs[len(highs)-days]
	lo := lows[len(lows)-days]
	for i := 1; i < days; i++ {
		if h := highs[len(highs)-days+i]; h > hi {
			hi = h
		}
		if l := lows[len(lows)-days+i]; l < lo {
			lo = l
		}
	}
	if lo <= 0 {
		return false
	}
	return (hi-lo)/lo <= maxRangePct
}

// VolumeExpanding reports whether volume rose strictly on each of the
// last days bars.
func VolumeExpanding(volumes []float64, days int) bool {
	if days <= 0 || len(volumes) < days {
		return false
	}
	window := volumes[len(volumes)-days:]
	for i := 1; i < len(window); i++ {
		if window[i] <= window[i-1] {
			return false
		}
	}
	return true
}

// BullishEngulfing reports whether curr opens at or below the close of
// a bearish prev candle and closes at or above its open.
func BullishEngulfing(prev, curr contracts.Candle) bool {
	prevBearish := prev.Close < prev.Open
	currBullish := curr.Close > curr.Open
	engulfs := curr.Open <= prev.Close && curr.Close >= prev.Open
	return prevBearish && currBullish && engulfs
}

// Levels holds the nearest swing levels around a reference price.
// Distances are percentages of the reference price. A zero level means
// no pivot was found on that side.
type Levels struct {
	Resistance            float64
	ResistanceDistancePct float64
	Support               float64
	SupportDistancePct    float64
}

// FindLevels scans the last lookback candles for fractal pivots (a high
// strictly above its two neighbors on each side, and the mirror for
// lows) and picks the nearest resistance above and support below price.
// Fewer than lookback candles yields no levels.
func FindLevels(highs, lows []float64, price float64, lookback int) Levels {
	var lv Levels
	if lookback <= 0 || len(highs) < lookback || len(lows) < lookback || price <= 0 {
		return lv
	}
	hw := highs[len(highs)-lookback:]
	lw := lows[len(lows)-lookback:]

	for i := 2; i < len(hw)-2; i++ {
		h := hw[i]
		if h > hw[i-1] && h > hw[i-2] && h > hw[i+1] && h > hw[i+2] && h > price {
			if lv.Resistance == 0 || h < lv.Resistance {
				lv.Resistance = h
			}
		}
	}
	for i := 2; i < len(lw)-2; i++ {
		l := lw[i]
		if l < lw[i-1] && l < lw[i-2] && l < lw[i+1] && l < lw[i+2] && l < price {
			if l > lv.Support {
				lv.Support = l
			}
		}
	}

	if lv.Resistance > 0 {
		lv.ResistanceDistancePct = (lv.Resistance - price) / price * 100
	}
	if lv.Support > 0 {
		lv.SupportDistancePct = (price - lv.Support) / price * 100
	}
	return lv
}
