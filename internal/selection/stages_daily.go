package selection

import (
	"sort"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

// Daily stages implement the trend-following gate sequence: structure,
// regime, slope, strength, momentum, expansion, participation, relative
// strength and pattern bonuses. Thresholds come from the profile at
// build time; attribute keys feed the factor curves in scoring.go.

// historyStage rejects symbols whose fetched history is shorter than
// the profile floor for any timeframe that declares one.
type historyStage struct {
	floors map[string]int
}

func newHistoryStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	floors := make(map[string]int, len(p.MinHistory))
	for tf, n := range p.MinHistory {
		floors[tf] = n
	}
	return &historyStage{floors: floors}, nil
}

func (st *historyStage) ID() string { return "daily_history" }

func (st *historyStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *historyStage) Evaluate(sctx *StageContext) contracts.Verdict {
	tfs := make([]string, 0, len(st.floors))
	for tf := range st.floors {
		tfs = append(tfs, tf)
	}
	sort.Strings(tfs)
	for _, tf := range tfs {
		if seriesLen(sctx.Data.Series(contracts.Timeframe(tf))) < st.floors[tf] {
			return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
		}
	}
	return contracts.Pass(nil)
}

// trendStructureStage wants price above the long-term average with the
// short EMAs stacked bullishly underneath it.
type trendStructureStage struct{}

func newTrendStructureStage(*strategyconfig.StrategyProfile) (Stage, error) {
	return trendStructureStage{}, nil
}

func (trendStructureStage) ID() string { return "trend_structure" }

func (trendStructureStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st trendStructureStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	last, ok := lastCandle(d)
	if !ok {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	ema20 := d.Latest(indicators.ColEMA20)
	ema50 := d.Latest(indicators.ColEMA50)
	ema200 := d.Latest(indicators.ColEMA200)
	if v, ok := requireValues(st.ID(), map[string]float64{
		indicators.ColEMA20:  ema20,
		indicators.ColEMA50:  ema50,
		indicators.ColEMA200: ema200,
	}); !ok {
		return v
	}
	if last.Close <= ema200 {
		return contracts.Reject(st.ID(), "price below long-term average")
	}
	if last.Close <= ema20 || ema20 <= ema50 {
		return contracts.Reject(st.ID(), "short-term trend not aligned")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("close", last.Close)
	attrs.Set("ema20", ema20)
	attrs.Set("ema50", ema50)
	attrs.Set("ema200", ema200)
	return contracts.Pass(attrs)
}

// trendRegimeStage keeps only symbols whose medium average trades above
// the long average, the classic bull regime test.
type trendRegimeStage struct{}

func newTrendRegimeStage(*strategyconfig.StrategyProfile) (Stage, error) {
	return trendRegimeStage{}, nil
}

func (trendRegimeStage) ID() string { return "trend_regime" }

func (trendRegimeStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st trendRegimeStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	ema50 := d.Latest(indicators.ColEMA50)
	ema200 := d.Latest(indicators.ColEMA200)
	if v, ok := requireValues(st.ID(), map[string]float64{
		indicators.ColEMA50:  ema50,
		indicators.ColEMA200: ema200,
	}); !ok {
		return v
	}
	if ema50 <= ema200 {
		return contracts.Reject(st.ID(), "bearish regime")
	}
	return contracts.Pass(nil)
}

// trendSlopeStage fits a line through the recent EMA20 values and
// requires it to point up. A window containing warmup NaNs yields a
// zero slope and fails closed.
type trendSlopeStage struct {
	days int
}

func newTrendSlopeStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "trend_slope")
	st := &trendSlopeStage{days: r.getInt("ema_slope_days")}
	return st, r.err
}

func (st *trendSlopeStage) ID() string { return "trend_slope" }

func (st *trendSlopeStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *trendSlopeStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	col, ok := d.Column(indicators.ColEMA20)
	if !ok {
		return rejectMissing(st.ID(), indicators.ColEMA20)
	}
	slope := indicators.Slope(col, st.days)
	if slope <= 0 {
		return contracts.Reject(st.ID(), "flat or falling trend")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("ema_slope", slope)
	return contracts.Pass(attrs)
}

// trendStrengthStage gates on ADX so only symbols actually trending,
// not drifting, move on.
type trendStrengthStage struct {
	min float64
}

func newTrendStrengthStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "trend_strength")
	st := &trendStrengthStage{min: r.get("adx_min")}
	return st, r.err
}

func (st *trendStrengthStage) ID() string { return "trend_strength" }

func (st *trendStrengthStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *trendStrengthStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	adx := d.Latest(indicators.ColADX14)
	if v, ok := requireValues(st.ID(), map[string]float64{indicators.ColADX14: adx}); !ok {
		return v
	}
	if adx < st.min {
		return contracts.Reject(st.ID(), "weak trend")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("adx", adx)
	return contracts.Pass(attrs)
}

// momentumBandStage wants RSI inside the continuation band: strong
// enough to confirm demand, not yet stretched.
type momentumBandStage struct {
	min, max float64
}

func newMomentumBandStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "momentum_band")
	st := &momentumBandStage{min: r.get("rsi_min"), max: r.get("rsi_max")}
	return st, r.err
}

func (st *momentumBandStage) ID() string { return "momentum_band" }

func (st *momentumBandStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *momentumBandStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	rsi := d.Latest(indicators.ColRSI14)
	if v, ok := requireValues(st.ID(), map[string]float64{indicators.ColRSI14: rsi}); !ok {
		return v
	}
	if rsi < st.min || rsi > st.max {
		return contracts.Reject(st.ID(), "momentum out of band")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("rsi", rsi)
	return contracts.Pass(attrs)
}

// volatilityExpansionStage compares today's ATR to its trailing
// baseline; breakouts need range expansion, not contraction.
type volatilityExpansionStage struct {
	min    float64
	period int
}

func newVolatilityExpansionStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "volatility_expansion")
	st := &volatilityExpansionStage{
		min:    r.get("atr_ratio_min"),
		period: r.getInt("atr_ratio_period"),
	}
	return st, r.err
}

func (st *volatilityExpansionStage) ID() string { return "volatility_expansion" }

func (st *volatilityExpansionStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *volatilityExpansionStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	col, ok := d.Column(indicators.ColATR14)
	if !ok {
		return rejectMissing(st.ID(), indicators.ColATR14)
	}
	ratio := indicators.TrailingRatio(col, st.period)
	if ratio < st.min {
		return contracts.Reject(st.ID(), "volatility not expanding")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("atr_ratio", ratio)
	return contracts.Pass(attrs)
}

// volumeConfirmationStage requires today's volume to at least match the
// trailing average. Thin moves do not carry.
type volumeConfirmationStage struct {
	min    float64
	period int
}

func newVolumeConfirmationStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "volume_confirmation")
	st := &volumeConfirmationStage{
		min:    r.get("volume_ratio_min"),
		period: r.getInt("volume_ratio_period"),
	}
	return st, r.err
}

func (st *volumeConfirmationStage) ID() string { return "volume_confirmation" }

func (st *volumeConfirmationStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *volumeConfirmationStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	ratio := indicators.TrailingRatio(d.Volumes(), st.period)
	if ratio < st.min {
		return contracts.Reject(st.ID(), "volume below average")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("volume_ratio", ratio)
	return contracts.Pass(attrs)
}

// relativeStrengthStage keeps symbols outperforming the benchmark over
// the lookback. Zero or missing benchmark data yields rs 0 and fails.
type relativeStrengthStage struct {
	period int
}

func newRelativeStrengthStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "relative_strength")
	st := &relativeStrengthStage{period: r.getInt("rs_period")}
	return st, r.err
}

func (st *relativeStrengthStage) ID() string { return "relative_strength" }

func (st *relativeStrengthStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *relativeStrengthStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	var benchCloses []float64
	if sctx.Benchmark != nil {
		benchCloses = sctx.Benchmark.Closes()
	}
	rs := indicators.PercentReturn(d.Closes(), st.period) -
		indicators.PercentReturn(benchCloses, st.period)
	if rs <= 0 {
		return contracts.Reject(st.ID(), "lagging benchmark")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("relative_strength", rs)
	return contracts.Pass(attrs)
}

// higherLowsStage counts consecutive rising lows over the recent
// window; an uptrend should not be making lower lows.
type higherLowsStage struct {
	min int
}

func newHigherLowsStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "higher_lows")
	st := &higherLowsStage{min: r.getInt("min_higher_lows")}
	return st, r.err
}

func (st *higherLowsStage) ID() string { return "higher_lows" }

func (st *higherLowsStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *higherLowsStage) Evaluate(sctx *StageContext) contracts.Verdict {
	d := sctx.Data.Daily
	if seriesLen(d) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	count := indicators.HigherLows(d.Lows(), st.min+1)
	if count < st.min {
		return contracts.Reject(st.ID(), "no higher lows pattern")
	}
	attrs := contracts.NewAttributes()
	attrs.Set("higher_lows", float64(count))
	return contracts.Pass(attrs)
}

// volumeExpansionStage records whether volume rose on each of the last
// few sessions. Bonus signal, never gates.
type volumeExpansionStage struct {
	days int
}

func newVolumeExpansionStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "volume_expansion")
	st := &volumeExpansionStage{days: r.getInt("volume_expansion_days")}
	return st, r.err
}

func (st *volumeExpansionStage) ID() string { return "volume_expansion" }

func (st *volumeExpansionStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *volumeExpansionStage) ScoreOnly() bool { return true }

func (st *volumeExpansionStage) Evaluate(sctx *StageContext) contracts.Verdict {
	attrs := contracts.NewAttributes()
	expanding := false
	if d := sctx.Data.Daily; d != nil {
		expanding = indicators.VolumeExpanding(d.Volumes(), st.days)
	}
	attrs.SetFlag("volume_expanding", expanding)
	return contracts.Pass(attrs)
}

// consolidationBreakStage flags symbols emerging from a tight base: the
// sessions before today traded in a narrow total range. Today's candle
// is excluded from the window on purpose, the flag marks the base, not
// a confirmed break of it.
type consolidationBreakStage struct {
	days     int
	maxRange float64
}

func newConsolidationBreakStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "consolidation_break")
	st := &consolidationBreakStage{
		days:     r.getInt("consolidation_days"),
		maxRange: r.get("consolidation_range"),
	}
	return st, r.err
}

func (st *consolidationBreakStage) ID() string { return "consolidation_break" }

func (st *consolidationBreakStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (st *consolidationBreakStage) ScoreOnly() bool { return true }

func (st *consolidationBreakStage) Evaluate(sctx *StageContext) contracts.Verdict {
	attrs := contracts.NewAttributes()
	flag := false
	if d := sctx.Data.Daily; seriesLen(d) > 1 {
		n := d.Len()
		highs := d.Highs()[:n-1]
		lows := d.Lows()[:n-1]
		flag = indicators.Consolidating(highs, lows, st.days, st.maxRange)
	}
	attrs.SetFlag("consolidation_breakout", flag)
	return contracts.Pass(attrs)
}

// bullishEngulfingStage flags a bullish engulfing close on the last two
// daily candles. Bonus signal, never gates.
type bullishEngulfingStage struct{}

func newBullishEngulfingStage(*strategyconfig.StrategyProfile) (Stage, error) {
	return bullishEngulfingStage{}, nil
}

func (bullishEngulfingStage) ID() string { return "bullish_engulfing" }

func (bullishEngulfingStage) Timeframe() contracts.Timeframe { return contracts.TimeframeDaily }

func (bullishEngulfingStage) ScoreOnly() bool { return true }

func (st bullishEngulfingStage) Evaluate(sctx *StageContext) contracts.Verdict {
	attrs := contracts.NewAttributes()
	flag := false
	if d := sctx.Data.Daily; seriesLen(d) >= 2 {
		n := d.Len()
		flag = indicators.BullishEngulfing(d.Candle(n-2), d.Candle(n-1))
	}
	attrs.SetFlag("bullish_engulfing", flag)
	return contracts.Pass(attrs)
}
