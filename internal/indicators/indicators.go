package indicators

import "math"

// All series functions return a slice exactly as long as the input with
// NaN in every position where the indicator is not yet defined, so a
// column can be attached to a Series without index bookkeeping.
// ⭐ SSOT: indicator math lives here and nowhere else

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes a simple moving average over a fixed window.
func SMA(src []float64, period int) []float64 {
	out := nans(len(src))
	if period <= 0 || len(src) < period {
		return out
	}
	var sum float64
	for i := 0; i < len(src); i++ {
		sum += src[i]
		if i >= period {
			sum -= src[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the simple
// average of the first period values.
func EMA(src []float64, period int) []float64 {
	out := nans(len(src))
	if period <= 0 || len(src) < period {
		return out
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += src[i]
	}
	prev := sum / float64(period)
	out[period-1] = prev
	k := 2.0 / float64(period+1)
	for i := period; i < len(src); i++ {
		prev = (src[i]-prev)*k + prev
		out[i] = prev
	}
	return out
}

// RSI computes Wilder's relative strength index. The first defined
// value appears at index period.
func RSI(src []float64, period int) []float64 {
	out := nans(len(src))
	if period <= 0 || len(src) < period+1 {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := src[i] - src[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p
	out[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(src); i++ {
		change := src[i] - src[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// ATR computes Wilder's average true range.
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := nans(n)
	if period <= 0 || n < period+1 || len(high) != n || len(low) != n {
		return out
	}
	tr := trueRange(high, low, close)
	var sum float64
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	p := float64(period)
	prev := sum / p
	out[period] = prev
	for i := period + 1; i < n; i++ {
		prev = (prev*(p-1) + tr[i]) / p
		out[i] = prev
	}
	return out
}

// ADX computes the average directional index with Wilder smoothing for
// the directional movement series and for DX itself. The first defined
// value appears at index 2*period-1.
func ADX(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := nans(n)
	if period <= 0 || n < 2*period || len(high) != n || len(low) != n {
		return out
	}
	tr := trueRange(high, low, close)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	sTR := make([]float64, n)
	sPlus := make([]float64, n)
	sMinus := make([]float64, n)
	for i := 1; i <= period; i++ {
		sTR[period] += tr[i]
		sPlus[period] += plusDM[i]
		sMinus[period] += minusDM[i]
	}
	p := float64(period)
	for i := period + 1; i < n; i++ {
		sTR[i] = sTR[i-1] - sTR[i-1]/p + tr[i]
		sPlus[i] = sPlus[i-1] - sPlus[i-1]/p + plusDM[i]
		sMinus[i] = sMinus[i-1] - sMinus[i-1]/p + minusDM[i]
	}

	dx := make([]float64, n)
	for i := period; i < n; i++ {
		if sTR[i] == 0 {
			continue
		}
		plusDI := 100 * sPlus[i] / sTR[i]
		minusDI := 100 * sMinus[i] / sTR[i]
		if sum := plusDI + minusDI; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
		}
	}

	first := 2*period - 1
	var sum float64
	for i := period; i <= first; i++ {
		sum += dx[i]
	}
	prev := sum / p
	out[first] = prev
	for i := first + 1; i < n; i++ {
		prev = (prev*(p-1) + dx[i]) / p
		out[i] = prev
	}
	return out
}

// VWAP computes the cumulative volume weighted average price from the
// typical price. Intended for a single-session intraday series.
func VWAP(high, low, close, volume []float64) []float64 {
	n := len(close)
	out := nans(n)
	if len(high) != n || len(low) != n || len(volume) != n {
		return out
	}
	var cumPV, cumV float64
	for i := 0; i < n; i++ {
		typical := (high[i] + low[i] + close[i]) / 3
		cumPV += typical * volume[i]
		cumV += volume[i]
		if cumV > 0 {
			out[i] = cumPV / cumV
		}
	}
	return out
}

func trueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(close))
	for i := 1; i < len(close); i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}
