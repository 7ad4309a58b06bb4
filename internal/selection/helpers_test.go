package selection

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

// Builders for hand-assembled series. Indicator columns are attached
// explicitly so each test controls exactly what a stage reads.

var testDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// flatCandles returns n identical bars priced at close, one per day,
// ending on the test day.
func flatCandles(n int, close, volume float64) []contracts.Candle {
	out := make([]contracts.Candle, n)
	for i := range out {
		out[i] = contracts.Candle{
			Time:   testDay.AddDate(0, 0, i-n+1),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: volume,
		}
	}
	return out
}

func constCol(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func nanCol(n int) []float64 {
	return constCol(n, math.NaN())
}

// newSeries assembles a series with the given columns attached.
func newSeries(t *testing.T, tf contracts.Timeframe, candles []contracts.Candle, cols map[string][]float64) *contracts.Series {
	t.Helper()
	s := contracts.NewSeries("TEST", tf, candles)
	for name, values := range cols {
		require.NoError(t, s.SetColumn(name, values))
	}
	return s
}

// dailyCtx wraps a daily series into a ready-to-run stage context.
func dailyCtx(t *testing.T, candles []contracts.Candle, cols map[string][]float64) *StageContext {
	t.Helper()
	return &StageContext{
		Data:  &SymbolData{Symbol: "TEST", Daily: newSeries(t, contracts.TimeframeDaily, candles, cols)},
		Attrs: contracts.NewAttributes(),
	}
}

// intradayBar places a bar at hour:min on the test day.
func intradayBar(hour, min int, open, high, low, close, volume float64) contracts.Candle {
	return contracts.Candle{
		Time:   time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
}

// intradayFlat returns n flat bars at five-minute spacing from 09:15.
func intradayFlat(n int, price, volume float64) []contracts.Candle {
	out := make([]contracts.Candle, n)
	for i := range out {
		out[i] = intradayBar(9, 15, price, price, price, price, volume)
		out[i].Time = out[i].Time.Add(time.Duration(5*i) * time.Minute)
	}
	return out
}

// buildStage constructs one stage through its registered builder.
func buildStage(t *testing.T, p *strategyconfig.StrategyProfile, id string) Stage {
	t.Helper()
	build, ok := stageBuilders[id]
	require.True(t, ok, "stage %s not registered", id)
	st, err := build(p)
	require.NoError(t, err)
	return st
}

// funcStage adapts a closure into a Stage for machinery tests.
type funcStage struct {
	id string
	fn func(sctx *StageContext) contracts.Verdict
}

func (st funcStage) ID() string { return st.id }

func (st funcStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }
func (st funcStage) Evaluate(sctx *StageContext) contracts.Verdict {
	return st.fn(sctx)
}

// swingPassData assembles a symbol that clears every swing stage, with
// indicator columns pinned to hand-checked values.
//
// The factor inputs it produces:
//
//	adx 30, ema_slope 0.5            -> trend 17
//	rsi 55                           -> momentum 100
//	relative_strength 10.3/90*100    -> 100 (clamped)
//	volume_ratio 1.5e6/1.025e6       -> 30.894...
//	atr_ratio 1.5                    -> volatility 0
//	weekly confirmed                 -> 100
//	higher_lows 2, engulfing, volume
//	expanding, no consolidation      -> price_action 70
//	no setup metrics                 -> trade_quality 50
//
// Composite: 4.25+15+15+3.0894+0+10+7+5 = 59.3394 -> 59.34.
func swingPassData(t *testing.T) (*SymbolData, *contracts.Series) {
	t.Helper()

	daily := flatCandles(200, 100, 1e6)
	// 20-session return base read by the relative strength stage.
	daily[180] = contracts.Candle{Time: daily[180].Time, Open: 90, High: 90, Low: 90, Close: 90, Volume: 1e6}
	// Rising lows and a volume ramp into the last session; the last two
	// candles form a bullish engulfing pair.
	daily[197] = contracts.Candle{Time: daily[197].Time, Open: 100, High: 100.5, Low: 97, Close: 100, Volume: 1.2e6}
	daily[198] = contracts.Candle{Time: daily[198].Time, Open: 100.2, High: 100.5, Low: 98, Close: 99.8, Volume: 1.3e6}
	daily[199] = contracts.Candle{Time: daily[199].Time, Open: 99.7, High: 100.6, Low: 99, Close: 100.3, Volume: 1.5e6}

	ema20 := constCol(200, 97)
	for i, v := range []float64{97.0, 97.5, 98.0, 98.5, 99.0} {
		ema20[195+i] = v
	}
	atr := constCol(200, 2.0)
	atr[199] = 3.0

	d := newSeries(t, contracts.TimeframeDaily, daily, map[string][]float64{
		indicators.ColEMA20:  ema20,
		indicators.ColEMA50:  constCol(200, 96),
		indicators.ColEMA200: constCol(200, 95),
		indicators.ColRSI14:  constCol(200, 55),
		indicators.ColADX14:  constCol(200, 30),
		indicators.ColATR14:  atr,
	})

	w := newSeries(t, contracts.TimeframeWeekly, flatCandles(60, 100, 1e6), map[string][]float64{
		indicators.ColEMA20: constCol(60, 95),
		indicators.ColEMA50: constCol(60, 90),
		indicators.ColRSI14: constCol(60, 55),
	})

	volAvg := nanCol(4)
	volAvg[3] = 1000
	in := newSeries(t, contracts.TimeframeIntraday, []contracts.Candle{
		intradayBar(9, 15, 99.5, 100, 99, 99.8, 1000),
		intradayBar(9, 30, 100.3, 100.65, 100.2, 100.6, 1000),
		intradayBar(9, 45, 100.6, 100.85, 100.5, 100.8, 1100),
		intradayBar(10, 0, 100.8, 101.1, 100.7, 101, 1300),
	}, map[string][]float64{
		indicators.ColVWAP:     constCol(4, 100),
		indicators.ColVolAvg20: volAvg,
	})

	bench := contracts.NewSeries("BENCH", contracts.TimeframeDaily, flatCandles(200, 100, 1e6))

	return &SymbolData{Symbol: "TEST", Daily: d, Weekly: w, Intraday: in}, bench
}
