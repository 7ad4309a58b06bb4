package contracts

import "time"

// Timeframe identifies the bar interval of a series
type Timeframe string

const (
	// TimeframeDaily daily bars, the primary screening timeframe
	TimeframeDaily Timeframe = "daily"

	// TimeframeWeekly weekly bars for higher-timeframe confirmation
	TimeframeWeekly Timeframe = "weekly"

	// TimeframeIntraday session bars (15m) for entry confirmation
	TimeframeIntraday Timeframe = "intraday"

	// TimeframeOpening fine-grained bars covering the opening range
	TimeframeOpening Timeframe = "opening"
)

// String returns the timeframe name
func (t Timeframe) String() string {
	return string(t)
}

// IsValidTimeframe checks if a timeframe string is known
func IsValidTimeframe(s string) bool {
	switch Timeframe(s) {
	case TimeframeDaily, TimeframeWeekly, TimeframeIntraday, TimeframeOpening:
		return true
	}
	return false
}

// Candle is one OHLCV observation for a fixed time bucket
// ⭐ SSOT: the only candle type used across feed, indicators and selection
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Range returns high minus low
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Body returns the absolute open-to-close distance
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// UpperWick returns the distance from the body top to the high
func (c Candle) UpperWick() float64 {
	top := c.Open
	if c.Close > top {
		top = c.Close
	}
	return c.High - top
}

// Bullish reports whether the candle closed above its open
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}
