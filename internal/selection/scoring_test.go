package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/strategyconfig"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		v, min, max float64
		want        float64
	}{
		{"below range clamps to zero", -3, 0, 10, 0},
		{"at min", 0, 0, 10, 0},
		{"midpoint", 5, 0, 10, 50},
		{"at max", 10, 0, 10, 100},
		{"above range clamps to hundred", 42, 0, 10, 100},
		{"equal anchors are neutral", 7, 3, 3, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Normalize(tt.v, tt.min, tt.max), 1e-9)
		})
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	prev := Normalize(-5, 0, 10)
	for v := -4.5; v <= 15; v += 0.5 {
		n := Normalize(v, 0, 10)
		assert.GreaterOrEqual(t, n, prev, "v=%v", v)
		assert.GreaterOrEqual(t, n, 0.0)
		assert.LessOrEqual(t, n, 100.0)
		prev = n
	}
}

func attrsWith(pairs map[string]float64) contracts.Attributes {
	attrs := contracts.NewAttributes()
	for k, v := range pairs {
		attrs.Set(k, v)
	}
	return attrs
}

func TestSwingMomentumCurve(t *testing.T) {
	// 50-60 is the sweet spot, 40-50 recovers toward it, 60-65 decays
	// off it, everything else is neutral. An unrecorded rsi reads as 0
	// and lands in the neutral default.
	tests := []struct {
		rsi  float64
		want float64
	}{
		{40, 60},
		{45, 80},
		{49, 96},
		{50, 100},
		{55, 100},
		{60, 100},
		{61, 94},
		{65, 70},
		{39, 50},
		{66, 50},
		{0, 50},
	}
	for _, tt := range tests {
		got := swingMomentumScore(attrsWith(map[string]float64{"rsi": tt.rsi}))
		assert.InDelta(t, tt.want, got, 1e-9, "rsi=%v", tt.rsi)
	}
}

func TestSwingWeeklyTriState(t *testing.T) {
	unknown := contracts.NewAttributes()
	assert.InDelta(t, 50, swingWeeklyScore(unknown), 1e-9)

	confirmed := contracts.NewAttributes()
	confirmed.SetFlag("weekly_checked", true)
	confirmed.SetFlag("weekly_suitable", true)
	assert.InDelta(t, 100, swingWeeklyScore(confirmed), 1e-9)

	contradicted := contracts.NewAttributes()
	contradicted.SetFlag("weekly_checked", true)
	contradicted.SetFlag("weekly_suitable", false)
	assert.InDelta(t, 0, swingWeeklyScore(contradicted), 1e-9)
}

func TestSwingPriceActionStacksAndCaps(t *testing.T) {
	all := contracts.NewAttributes()
	all.Set("higher_lows", 4) // Normalize(4,3,5)=50, *0.4 = 20
	all.SetFlag("consolidation_breakout", true)
	all.SetFlag("bullish_engulfing", true)
	all.SetFlag("volume_expanding", true)
	assert.InDelta(t, 100, swingPriceActionScore(all), 1e-9, "20+30+30+40 capped at 100")

	one := contracts.NewAttributes()
	one.SetFlag("bullish_engulfing", true)
	assert.InDelta(t, 30, swingPriceActionScore(one), 1e-9)

	lowsOnly := attrsWith(map[string]float64{"higher_lows": 5})
	assert.InDelta(t, 40, swingPriceActionScore(lowsOnly), 1e-9)
}

func TestSwingTradeQualityCurve(t *testing.T) {
	assert.InDelta(t, 50, swingTradeQualityScore(contracts.NewAttributes()), 1e-9,
		"neutral before setup metrics exist")

	tests := []struct {
		name  string
		attrs map[string]float64
		want  float64
	}{
		{"ideal stop, default r:r", map[string]float64{"stop_distance_pct": 1.0}, 50},
		{"ideal stop, strong r:r", map[string]float64{"stop_distance_pct": 1.0, "risk_reward": 3.0}, 100},
		{"tight stop decays", map[string]float64{"stop_distance_pct": 0.5}, 37.5},
		{"far stop hits the floor", map[string]float64{"stop_distance_pct": 3.0, "risk_reward": 3.0}, 50},
		{"zero stop distance scores r:r only", map[string]float64{"stop_distance_pct": 0, "risk_reward": 2.25}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, swingTradeQualityScore(attrsWith(tt.attrs)), 1e-9)
		})
	}
}

func TestBreakoutMomentumDirections(t *testing.T) {
	up := attrsWith(map[string]float64{
		"orb_direction": 1,
		"orb_high":      100,
		"orb_low":       98,
		"current_price": 101, // a full range past the top, clamps to 100
	})
	assert.InDelta(t, 60, breakoutMomentumScore(up), 1e-9, "no spike recorded defaults to 1.0")

	down := attrsWith(map[string]float64{
		"orb_direction": -1,
		"orb_high":      100,
		"orb_low":       98,
		"current_price": 97.5, // half the scale below the bottom
		"volume_spike":  2,
	})
	assert.InDelta(t, 50, breakoutMomentumScore(down), 1e-9, "0.6*50 + 0.4*50")

	spikeOnly := attrsWith(map[string]float64{"volume_spike": 3})
	assert.InDelta(t, 40, breakoutMomentumScore(spikeOnly), 1e-9,
		"no breakout levels leaves only the spike term")
}

func TestBreakoutAlignmentSeparation(t *testing.T) {
	assert.InDelta(t, 0, breakoutAlignmentScore(contracts.NewAttributes()), 1e-9,
		"missing averages score zero")

	half := attrsWith(map[string]float64{"ema5": 100.5, "ema9": 100})
	assert.InDelta(t, 50, breakoutAlignmentScore(half), 1e-9)
}

func TestBreakoutVWAPDecay(t *testing.T) {
	for _, tt := range []struct{ dev, want float64 }{
		{0, 100},
		{0.4, 50},
		{0.8, 0},
		{1.2, 0},
	} {
		got := breakoutVWAPScore(attrsWith(map[string]float64{"vwap_deviation_pct": tt.dev}))
		assert.InDelta(t, tt.want, got, 1e-9, "dev=%v", tt.dev)
	}
}

func TestBreakoutLiquidityBlend(t *testing.T) {
	floor := attrsWith(map[string]float64{"avg_volume": 2e6})
	assert.InDelta(t, 0, breakoutLiquidityScore(floor), 1e-9,
		"volume at the floor with the default spread")

	mid := attrsWith(map[string]float64{"avg_volume": 26e6, "spread_pct": 0.05})
	assert.InDelta(t, 50, breakoutLiquidityScore(mid), 1e-9, "0.6*50 + 0.4*50")
}

func TestNewScorerUnknownFactor(t *testing.T) {
	p := strategyconfig.SwingProfile()
	p.Weights["luck"] = 10

	_, err := NewScorer(p)

	var verr strategyconfig.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "weights", verr.Field)
	assert.Contains(t, verr.Message, `no factor "luck"`)
}

func TestNewScorerUnknownStrategy(t *testing.T) {
	p := &strategyconfig.StrategyProfile{Name: "scalp", Weights: map[string]int{"momentum": 100}}

	_, err := NewScorer(p)

	var verr strategyconfig.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, `no factor set registered for strategy "scalp"`)
}

func TestCompositeWeighting(t *testing.T) {
	scorer, err := NewScorer(strategyconfig.SwingProfile())
	require.NoError(t, err)

	// Only momentum (100), weekly (50) and trade quality (50) contribute:
	// 100*0.15 + 50*0.10 + 50*0.10 = 25.
	attrs := attrsWith(map[string]float64{"rsi": 55})
	total, parts := scorer.Composite(attrs)

	assert.InDelta(t, 25, total, 1e-9)
	assert.InDelta(t, 100, parts["momentum"], 1e-9)
	assert.InDelta(t, 50, parts["weekly"], 1e-9)
	assert.InDelta(t, 50, parts["trade_quality"], 1e-9)
	assert.InDelta(t, 0, parts["trend"], 1e-9)
	assert.InDelta(t, 0, parts["volume"], 1e-9)
	assert.Len(t, parts, len(strategyconfig.SwingProfile().Weights))
}

func TestCompositeDeterministic(t *testing.T) {
	scorer, err := NewScorer(strategyconfig.SwingProfile())
	require.NoError(t, err)

	attrs := attrsWith(map[string]float64{
		"adx": 31.7, "ema_slope": 1.3, "rsi": 58.2,
		"relative_strength": 4.4, "volume_ratio": 1.8, "atr_ratio": 2.1,
		"higher_lows": 3,
	})
	first, firstParts := scorer.Composite(attrs)
	for i := 0; i < 100; i++ {
		total, parts := scorer.Composite(attrs)
		require.Equal(t, first, total, "iteration %d", i)
		require.Equal(t, firstParts, parts, "iteration %d", i)
	}
}
