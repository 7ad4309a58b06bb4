package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

func weeklyCtx(t *testing.T, candles []contracts.Candle, cols map[string][]float64) *StageContext {
	t.Helper()
	sctx := dailyCtx(t, flatCandles(1, 100, 1e6), nil)
	if candles != nil {
		sctx.Data.Weekly = newSeries(t, contracts.TimeframeWeekly, candles, cols)
	}
	return sctx
}

func TestWeeklyConfirmToleratesMissingSeries(t *testing.T) {
	st := buildStage(t, strategyconfig.SwingProfile(), "weekly_confirm")

	v := st.Evaluate(weeklyCtx(t, nil, nil))
	require.True(t, v.Passed)
	assert.False(t, v.Attributes.Flag("weekly_checked"))
	_, ok := v.Attributes.Get("weekly_suitable")
	assert.False(t, ok, "nothing else is recorded when weekly data is absent")
}

func TestWeeklyConfirmRequiresEnoughBars(t *testing.T) {
	st := buildStage(t, strategyconfig.SwingProfile(), "weekly_confirm")

	v := st.Evaluate(weeklyCtx(t, flatCandles(49, 100, 1e6), nil))
	assert.False(t, v.Passed)
	assert.Equal(t, contracts.ReasonInsufficientHistory, v.Reason)
}

func TestWeeklyConfirmAlignment(t *testing.T) {
	st := buildStage(t, strategyconfig.SwingProfile(), "weekly_confirm")

	aligned := weeklyCtx(t, flatCandles(50, 100, 1e6), map[string][]float64{
		indicators.ColEMA20: constCol(50, 95),
		indicators.ColEMA50: constCol(50, 90),
		indicators.ColRSI14: constCol(50, 55),
	})
	v := st.Evaluate(aligned)
	require.True(t, v.Passed)
	assert.True(t, v.Attributes.Flag("weekly_checked"))
	assert.True(t, v.Attributes.Flag("weekly_suitable"))
	assert.True(t, v.Attributes.Flag("weekly_rsi_ok"))
	rsi, _ := v.Attributes.Get("weekly_rsi")
	assert.InDelta(t, 55, rsi, 1e-9)

	inverted := weeklyCtx(t, flatCandles(50, 100, 1e6), map[string][]float64{
		indicators.ColEMA20: constCol(50, 90),
		indicators.ColEMA50: constCol(50, 95),
		indicators.ColRSI14: constCol(50, 55),
	})
	v = st.Evaluate(inverted)
	assert.False(t, v.Passed)
	assert.Equal(t, "weekly trend not aligned", v.Reason)
}

func TestWeeklyConfirmMissingAverages(t *testing.T) {
	st := buildStage(t, strategyconfig.SwingProfile(), "weekly_confirm")

	v := st.Evaluate(weeklyCtx(t, flatCandles(50, 100, 1e6), nil))
	assert.False(t, v.Passed)
	assert.Equal(t, contracts.ReasonIndicatorMissing+": ema20, ema50", v.Reason)
}

func TestWeeklyConfirmRSIIsAdvisory(t *testing.T) {
	st := buildStage(t, strategyconfig.SwingProfile(), "weekly_confirm")

	// RSI column absent: verdict still passes, flag stays down and no
	// value is recorded.
	noRSI := weeklyCtx(t, flatCandles(50, 100, 1e6), map[string][]float64{
		indicators.ColEMA20: constCol(50, 95),
		indicators.ColEMA50: constCol(50, 90),
	})
	v := st.Evaluate(noRSI)
	require.True(t, v.Passed)
	assert.False(t, v.Attributes.Flag("weekly_rsi_ok"))
	_, ok := v.Attributes.Get("weekly_rsi")
	assert.False(t, ok)

	// Overbought RSI is recorded but marked unsuitable, never gates.
	hot := weeklyCtx(t, flatCandles(50, 100, 1e6), map[string][]float64{
		indicators.ColEMA20: constCol(50, 95),
		indicators.ColEMA50: constCol(50, 90),
		indicators.ColRSI14: constCol(50, 75),
	})
	v = st.Evaluate(hot)
	require.True(t, v.Passed)
	assert.False(t, v.Attributes.Flag("weekly_rsi_ok"))
	rsi, _ := v.Attributes.Get("weekly_rsi")
	assert.InDelta(t, 75, rsi, 1e-9)
}
