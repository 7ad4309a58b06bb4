package selection

import (
	"math"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

// weeklyConfirmStage checks the higher timeframe agrees with the daily
// trend. The stage is mandatory for the profile but tolerant of absent
// data: with no weekly series at all the verdict passes and the scorer
// treats the factor as unknown. Weekly data that exists but is too
// short or misaligned rejects.
type weeklyConfirmStage struct {
	minHistory int
	rsiMin     float64
	rsiMax     float64
}

func newWeeklyConfirmStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "weekly_confirm")
	st := &weeklyConfirmStage{
		minHistory: r.getInt("weekly_min_history"),
		rsiMin:     r.get("weekly_rsi_min"),
		rsiMax:     r.get("weekly_rsi_max"),
	}
	return st, r.err
}

func (st *weeklyConfirmStage) ID() string { return "weekly_confirm" }

func (st *weeklyConfirmStage) Timeframe() contracts.Timeframe { return contracts.TimeframeWeekly }

func (st *weeklyConfirmStage) Evaluate(sctx *StageContext) contracts.Verdict {
	w := sctx.Data.Weekly
	if seriesLen(w) == 0 {
		attrs := contracts.NewAttributes()
		attrs.SetFlag("weekly_checked", false)
		return contracts.Pass(attrs)
	}
	if w.Len() < st.minHistory {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}

	last, _ := w.Last()
	ema20 := w.Latest(indicators.ColEMA20)
	ema50 := w.Latest(indicators.ColEMA50)
	if v, ok := requireValues(st.ID(), map[string]float64{
		indicators.ColEMA20: ema20,
		indicators.ColEMA50: ema50,
	}); !ok {
		return v
	}
	if last.Close <= ema20 || ema20 <= ema50 {
		return contracts.Reject(st.ID(), "weekly trend not aligned")
	}

	attrs := contracts.NewAttributes()
	attrs.SetFlag("weekly_checked", true)
	attrs.SetFlag("weekly_suitable", true)

	// RSI band is advisory on the weekly timeframe, recorded for the
	// report but never gating.
	rsi := w.Latest(indicators.ColRSI14)
	if !math.IsNaN(rsi) {
		attrs.Set("weekly_rsi", rsi)
		attrs.SetFlag("weekly_rsi_ok", rsi > st.rsiMin && rsi < st.rsiMax)
	} else {
		attrs.SetFlag("weekly_rsi_ok", false)
	}
	return contracts.Pass(attrs)
}
