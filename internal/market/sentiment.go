// Package market summarizes the benchmark session: the opening gap
// against yesterday's close and the running day change, classified
// into the bands the screen report carries.
package market

import (
	"github.com/wonny/sift/internal/contracts"
)

// Analyze builds a benchmark snapshot from the daily series and, when
// present, today's intraday bars. Returns nil when the daily history
// is too short to know yesterday's close.
func Analyze(benchmark string, daily, intraday *contracts.Series) *contracts.MarketSnapshot {
	if daily == nil || daily.Len() < 2 {
		return nil
	}
	prevClose := daily.Candle(daily.Len() - 2).Close
	if prevClose <= 0 {
		return nil
	}

	// Today's open comes from the first intraday bar when we have one,
	// the latest daily candle otherwise. Same for the current price.
	today := daily.Candle(daily.Len() - 1)
	open := today.Open
	current := today.Close
	if intraday != nil && intraday.Len() > 0 {
		open = intraday.Candle(0).Open
		last, _ := intraday.Last()
		current = last.Close
	}

	gapPct := (open - prevClose) / prevClose * 100
	changePct := (current - prevClose) / prevClose * 100
	sentiment, recommendation := classifyChange(changePct)

	return &contracts.MarketSnapshot{
		Benchmark:      benchmark,
		GapPct:         gapPct,
		ChangePct:      changePct,
		GapLabel:       classifyGap(gapPct),
		Sentiment:      sentiment,
		Recommendation: recommendation,
	}
}

func classifyGap(gapPct float64) string {
	switch {
	case gapPct > 2.0:
		return "Strong Bullish"
	case gapPct > 0.5:
		return "Bullish"
	case gapPct > -0.5:
		return "Flat"
	case gapPct > -2.0:
		return "Bearish"
	default:
		return "Strong Bearish"
	}
}

func classifyChange(changePct float64) (sentiment, recommendation string) {
	switch {
	case changePct > 1.0:
		return "Strong Bullish", "Full confidence - good day for longs"
	case changePct > 0.3:
		return "Bullish", "Favorable for trades"
	case changePct > -0.3:
		return "Neutral", "Be selective"
	case changePct > -1.0:
		return "Bearish", "Reduce position sizes"
	default:
		return "Strong Bearish", "Avoid new longs - sit out"
	}
}
