package selection

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/strategyconfig"
)

// Normalize maps v linearly onto [0,100] between the two anchors,
// clamping outside them. Equal anchors yield the neutral 50.
func Normalize(v, min, max float64) float64 {
	if max == min {
		return 50
	}
	n := (v - min) / (max - min) * 100
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// FactorFunc turns accumulated pipeline attributes into one 0-100
// factor score. Curves read attributes with zero defaults, so a factor
// whose inputs never got recorded degrades to its floor (or neutral)
// instead of erroring.
type FactorFunc func(attrs contracts.Attributes) float64

// factorSets binds each strategy to its factor curves.
// ⭐ SSOT: weight names resolve to factor semantics here only
var factorSets = map[string]map[string]FactorFunc{
	strategyconfig.StrategySwing:    swingFactors(),
	strategyconfig.StrategyBreakout: breakoutFactors(),
}

// RegisterFactorSet adds the factor curves for a new strategy name.
func RegisterFactorSet(strategy string, set map[string]FactorFunc) error {
	if _, exists := factorSets[strategy]; exists {
		return fmt.Errorf("factor set for strategy %q already registered", strategy)
	}
	factorSets[strategy] = set
	return nil
}

// Scorer computes the weighted composite score for one strategy.
type Scorer struct {
	weights map[string]int
	factors map[string]FactorFunc
	order   []string
}

// NewScorer resolves the profile's weights against the strategy's
// factor set. A weight naming an unknown factor is a configuration
// error surfaced here, at startup, never at scoring time.
func NewScorer(p *strategyconfig.StrategyProfile) (*Scorer, error) {
	set, ok := factorSets[p.Name]
	if !ok {
		return nil, strategyconfig.ValidationError{
			Field:   "weights",
			Message: fmt.Sprintf("no factor set registered for strategy %q", p.Name),
		}
	}
	order := make([]string, 0, len(p.Weights))
	for name := range p.Weights {
		if _, ok := set[name]; !ok {
			return nil, strategyconfig.ValidationError{
				Field:   "weights",
				Message: fmt.Sprintf("strategy %s has no factor %q", p.Name, name),
			}
		}
		order = append(order, name)
	}
	sort.Strings(order)
	return &Scorer{weights: p.Weights, factors: set, order: order}, nil
}

// Composite returns the weighted 0-100 total plus the per-factor
// breakdown. Factors are summed in sorted name order so the float
// result is identical run to run.
func (s *Scorer) Composite(attrs contracts.Attributes) (float64, map[string]float64) {
	parts := make(map[string]float64, len(s.order))
	var total float64
	for _, name := range s.order {
		raw := s.factors[name](attrs)
		total += raw * float64(s.weights[name]) / 100
		parts[name] = round2(raw)
	}
	return round2(total), parts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ---- swing factor curves ----

func swingFactors() map[string]FactorFunc {
	return map[string]FactorFunc{
		"trend":             swingTrendScore,
		"momentum":          swingMomentumScore,
		"relative_strength": swingRelativeStrengthScore,
		"volume":            swingVolumeScore,
		"volatility":        swingVolatilityScore,
		"weekly":            swingWeeklyScore,
		"price_action":      swingPriceActionScore,
		"trade_quality":     swingTradeQualityScore,
	}
}

// swingTrendScore blends trend strength with the slope of the fast
// average. ADX 25 is the floor of a tradeable trend, 50 a strong one.
func swingTrendScore(attrs contracts.Attributes) float64 {
	adx, _ := attrs.Get("adx")
	slope, _ := attrs.Get("ema_slope")
	return Normalize(adx, 25, 50)*0.7 + Normalize(math.Abs(slope), 0, 5)*0.3
}

// swingMomentumScore peaks for RSI in the low 50s, the continuation
// sweet spot: confirmed demand that is not yet stretched.
func swingMomentumScore(attrs contracts.Attributes) float64 {
	rsi, _ := attrs.Get("rsi")
	switch {
	case rsi >= 50 && rsi <= 60:
		return 100
	case rsi >= 40 && rsi < 50:
		return Normalize(rsi, 40, 50)*0.4 + 60
	case rsi > 60 && rsi <= 65:
		return 100 - Normalize(rsi, 60, 65)*0.3
	default:
		return 50
	}
}

func swingRelativeStrengthScore(attrs contracts.Attributes) float64 {
	rs, _ := attrs.Get("relative_strength")
	return Normalize(rs, 0, 10)
}

func swingVolumeScore(attrs contracts.Attributes) float64 {
	ratio, _ := attrs.Get("volume_ratio")
	return Normalize(ratio, 1.0, 2.5)
}

func swingVolatilityScore(attrs contracts.Attributes) float64 {
	ratio, _ := attrs.Get("atr_ratio")
	return Normalize(ratio, 1.5, 3.0)
}

// swingWeeklyScore is tri-state: confirmed 100, contradicted 0, and 50
// when no weekly data was available to check.
func swingWeeklyScore(attrs contracts.Attributes) float64 {
	if !attrs.Flag("weekly_checked") {
		return 50
	}
	if attrs.Flag("weekly_suitable") {
		return 100
	}
	return 0
}

// swingPriceActionScore stacks the pattern bonuses recorded by the
// score-only stages on top of the higher-lows count.
func swingPriceActionScore(attrs contracts.Attributes) float64 {
	hl, _ := attrs.Get("higher_lows")
	score := Normalize(hl, 3, 5) * 0.4
	if attrs.Flag("consolidation_breakout") {
		score += 30
	}
	if attrs.Flag("bullish_engulfing") {
		score += 30
	}
	if attrs.Flag("volume_expanding") {
		score += 40
	}
	return math.Min(100, score)
}

// swingTradeQualityScore rewards a stop near 1% of entry and a high
// risk:reward. Neutral 50 until setup metrics exist, which is the case
// during ranking; the curve differentiates only when quality metrics
// were recorded before scoring.
func swingTradeQualityScore(attrs contracts.Attributes) float64 {
	d, ok := attrs.Get("stop_distance_pct")
	if !ok {
		return 50
	}
	var score float64
	if d > 0 {
		if d >= 0.8 && d <= 1.2 {
			score += 50
		} else {
			score += math.Max(0, 50-math.Abs(d-1)*25)
		}
	}
	rr, ok := attrs.Get("risk_reward")
	if !ok {
		rr = 1.5
	}
	score += Normalize(rr, 1.5, 3.0) * 0.5
	return math.Min(100, score)
}

// ---- breakout factor curves ----

func breakoutFactors() map[string]FactorFunc {
	return map[string]FactorFunc{
		"liquidity":       breakoutLiquidityScore,
		"momentum":        breakoutMomentumScore,
		"vwap_setup":      breakoutVWAPScore,
		"trend_alignment": breakoutAlignmentScore,
		"volatility":      breakoutVolatilityScore,
	}
}

// breakoutLiquidityScore weighs volume depth against spread cost.
func breakoutLiquidityScore(attrs contracts.Attributes) float64 {
	avgVolume, _ := attrs.Get("avg_volume")
	spread, ok := attrs.Get("spread_pct")
	if !ok {
		spread = 0.1
	}
	volumeScore := Normalize(avgVolume, 2e6, 50e6)
	spreadScore := math.Max(0, 100-spread*1000)
	return volumeScore*0.6 + spreadScore*0.4
}

// breakoutMomentumScore measures how far past the range the price has
// carried, relative to the range itself, plus the volume spike behind
// the move.
func breakoutMomentumScore(attrs contracts.Attributes) float64 {
	var score float64
	direction, _ := attrs.Get("orb_direction")
	orbHigh, _ := attrs.Get("orb_high")
	orbLow, _ := attrs.Get("orb_low")
	price, _ := attrs.Get("current_price")
	if direction != 0 && orbHigh != 0 && orbLow != 0 {
		orbRange := orbHigh - orbLow
		dist := price - orbHigh
		if direction < 0 {
			dist = orbLow - price
		}
		score += Normalize(dist, 0, orbRange*0.5) * 0.6
	}
	spike, ok := attrs.Get("volume_spike")
	if !ok {
		spike = 1.0
	}
	score += Normalize(spike, 1.0, 3.0) * 0.4
	return math.Min(100, score)
}

// breakoutVWAPScore is 100 at VWAP and decays to 0 at 0.8% away.
func breakoutVWAPScore(attrs contracts.Attributes) float64 {
	deviation, _ := attrs.Get("vwap_deviation_pct")
	return math.Max(0, 100-deviation/0.8*100)
}

// breakoutAlignmentScore rewards separation between the fast averages;
// a wider gap means a steadier intraday trend.
func breakoutAlignmentScore(attrs contracts.Attributes) float64 {
	ema5, _ := attrs.Get("ema5")
	ema9, _ := attrs.Get("ema9")
	if ema5 == 0 || ema9 == 0 {
		return 0
	}
	separation := math.Abs((ema5-ema9)/ema9) * 100
	return Normalize(separation, 0, 1.0)
}

func breakoutVolatilityScore(attrs contracts.Attributes) float64 {
	atr, _ := attrs.Get("atr")
	return Normalize(atr, 1.5, 10)
}
