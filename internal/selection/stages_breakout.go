package selection

import (
	"math"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

// Breakout stages screen for same-day opening range breakouts: deep
// liquidity first, then a decisive move out of the opening range,
// confirmed by fast-average alignment, a volume spike and price still
// near VWAP with enough range to pay for the trade.

// liquidityStage rejects symbols too thin to scalp: the daily volume
// baseline must clear a floor and the latest bar's spread must be tight.
type liquidityStage struct {
	minAvgVolume float64
	period       int
	maxSpreadPct float64
}

func newLiquidityStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "liquidity")
	st := &liquidityStage{
		minAvgVolume: r.get("min_avg_volume"),
		period:       r.getInt("avg_volume_period"),
		maxSpreadPct: r.get("max_spread_pct"),
	}
	return st, r.err
}

func (st *liquidityStage) ID() string { return "liquidity" }

func (st *liquidityStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *liquidityStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	sma := indicators.SMA(d.Volumes(), st.period)
	avgVolume := sma[len(sma)-1]
	if v, ok := requireValues(st.ID(), map[string]float64{"avg_volume": avgVolume}); !ok {
		return v
	}
	if avgVolume < st.minAvgVolume {
		return contracts.Reject(st.ID(), "average volume too low")
	}

	last, ok := lastCandle(sctx.Data.Intraday)
	if !ok {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	spreadPct := math.Inf(1)
	if last.Close > 0 {
		spreadPct = last.Range() / last.Close * 100
	}
	if spreadPct > st.maxSpreadPct {
		return contracts.Reject(st.ID(), "spread too wide")
	}

	attrs := contracts.NewAttributes()
	attrs.Set("avg_volume", avgVolume)
	attrs.Set("spread_pct", spreadPct)
	return contracts.Pass(attrs)
}

// openingRangeStage is the primary breakout gate: the last price must
// clear the opening range high (or low) by a buffer. Direction is
// recorded as +1/-1 for the alignment stage and the momentum factor.
type openingRangeStage struct {
	bufferPct float64
}

func newOpeningRangeStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "opening_range")
	st := &openingRangeStage{bufferPct: r.get("orb_buffer_pct")}
	return st, r.err
}

func (st *openingRangeStage) ID() string { return "opening_range" }

func (st *openingRangeStage) Timeframe() contracts.Timeframe { return contracts.TimeframeOpening }

func (st *openingRangeStage) Evaluate(sctx *StageContext) contracts.Verdict {
	opening := sctx.Data.Opening
	if seriesLen(opening) == 0 {
		return contracts.Reject(st.ID(), "no opening range data")
	}
	last, ok := lastCandle(sctx.Data.Intraday)
	if !ok {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}

	orbHigh := opening.Candle(0).High
	orbLow := opening.Candle(0).Low
	for _, c := range opening.Candles()[1:] {
		if c.High > orbHigh {
			orbHigh = c.High
		}
		if c.Low < orbLow {
			orbLow = c.Low
		}
	}

	buffer := st.bufferPct / 100
	price := last.Close
	var direction float64
	switch {
	case price > orbHigh*(1+buffer):
		direction = 1
	case price < orbLow*(1-buffer):
		direction = -1
	default:
		return contracts.Reject(st.ID(), "no breakout from opening range")
	}

	attrs := contracts.NewAttributes()
	attrs.Set("orb_high", orbHigh)
	attrs.Set("orb_low", orbLow)
	attrs.Set("current_price", price)
	attrs.Set("orb_direction", direction)
	return contracts.Pass(attrs)
}

// trendAlignmentStage confirms the fast averages agree with the
// breakout: EMA5 above EMA9 for longs, below for shorts. It reads the
// direction recorded by the opening range stage.
type trendAlignmentStage struct{}

func newTrendAlignmentStage(*strategyconfig.StrategyProfile) (Stage, error) {
	return trendAlignmentStage{}, nil
}

func (trendAlignmentStage) ID() string { return "trend_alignment" }

func (trendAlignmentStage) Timeframe() contracts.Timeframe { return contracts.TimeframeIntraday }

func (st trendAlignmentStage) Evaluate(sctx *StageContext) contracts.Verdict {
	direction, ok := sctx.Attrs.Get("orb_direction")
	if !ok || direction == 0 {
		return contracts.Reject(st.ID(), "no breakout direction")
	}
	s := sctx.Data.Intraday
	if seriesLen(s) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	ema5 := s.Latest(indicators.ColEMA5)
	ema9 := s.Latest(indicators.ColEMA9)
	if v, ok := requireValues(st.ID(), map[string]float64{
		indicators.ColEMA5: ema5,
		indicators.ColEMA9: ema9,
	}); !ok {
		return v
	}
	if direction > 0 && ema5 <= ema9 {
		return contracts.Reject(st.ID(), "averages not aligned with breakout")
	}
	if direction < 0 && ema5 >= ema9 {
		return contracts.Reject(st.ID(), "averages not aligned with breakout")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("ema5", ema5)
	attrs.Set("ema9", ema9)
	return contracts.Pass(attrs)
}

// volumeSpikeStage wants the breakout bar to trade well above the
// short-term average, the difference between a move and a drift.
type volumeSpikeStage struct {
	mult   float64
	window int
}

func newVolumeSpikeStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "volume_spike")
	st := &volumeSpikeStage{
		mult:   r.get("volume_spike_mult"),
		window: r.getInt("volume_spike_window"),
	}
	return st, r.err
}

func (st *volumeSpikeStage) ID() string { return "volume_spike" }

func (st *volumeSpikeStage) Timeframe() contracts.Timeframe { return contracts.TimeframeIntraday }

func (st *volumeSpikeStage) Evaluate(sctx *StageContext) contracts.Verdict {
	s := sctx.Data.Intraday
	if seriesLen(s) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	volumes := s.Volumes()
	sma := indicators.SMA(volumes, st.window)
	avg := sma[len(sma)-1]
	if math.IsNaN(avg) || avg == 0 {
		return rejectMissing(st.ID(), "volume average")
	}
	ratio := volumes[len(volumes)-1] / avg
	if ratio < st.mult {
		return contracts.Reject(st.ID(), "no volume spike")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("volume_spike", ratio)
	return contracts.Pass(attrs)
}

// vwapDistanceStage keeps entries close to VWAP; chasing an extended
// price gives back the edge on the first pullback.
type vwapDistanceStage struct {
	maxPct float64
}

func newVWAPDistanceStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "vwap_distance")
	st := &vwapDistanceStage{maxPct: r.get("max_vwap_distance_pct")}
	return st, r.err
}

func (st *vwapDistanceStage) ID() string { return "vwap_distance" }

func (st *vwapDistanceStage) Timeframe() contracts.Timeframe { return contracts.TimeframeIntraday }

func (st *vwapDistanceStage) Evaluate(sctx *StageContext) contracts.Verdict {
	s := sctx.Data.Intraday
	last, ok := lastCandle(s)
	if !ok {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	vwap := s.Latest(indicators.ColVWAP)
	if v, ok := requireValues(st.ID(), map[string]float64{indicators.ColVWAP: vwap}); !ok {
		return v
	}
	deviation := math.Abs((last.Close - vwap) / vwap * 100)
	if deviation > st.maxPct {
		return contracts.Reject(st.ID(), "too far from vwap")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("vwap", vwap)
	attrs.Set("vwap_deviation_pct", deviation)
	return contracts.Pass(attrs)
}

// volatilityFloorStage needs enough absolute range to cover costs and
// slippage. RSI7 rides along as a report attribute, never gating.
type volatilityFloorStage struct {
	min float64
}

func newVolatilityFloorStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "volatility_floor")
	st := &volatilityFloorStage{min: r.get("min_atr")}
	return st, r.err
}

func (st *volatilityFloorStage) ID() string { return "volatility_floor" }

func (st *volatilityFloorStage) Timeframe() contracts.Timeframe { return contracts.TimeframeIntraday }

func (st *volatilityFloorStage) Evaluate(sctx *StageContext) contracts.Verdict {
	s := sctx.Data.Intraday
	if seriesLen(s) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	atr := s.Latest(indicators.ColATR14)
	if v, ok := requireValues(st.ID(), map[string]float64{indicators.ColATR14: atr}); !ok {
		return v
	}
	if atr < st.min {
		return contracts.Reject(st.ID(), "volatility too low")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("atr", atr)
	if rsi := s.Latest(indicators.ColRSI7); !math.IsNaN(rsi) {
		attrs.Set("rsi7", rsi)
	}
	return contracts.Pass(attrs)
}
