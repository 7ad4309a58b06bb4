package selection

import (
	"math"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

// QualityGate re-filters ranked candidates on the geometry of their
// derived setups: stop distance, risk:reward, and room to the nearest
// levels. A failed gate drops the candidate from the final list; the
// next-ranked symbol is not promoted in its place.
type QualityGate struct {
	minStopPct    float64
	maxStopPct    float64
	minRiskReward float64
	minResistPct  float64
	maxSupportPct float64
	srLookback    int
}

func NewQualityGate(p *strategyconfig.StrategyProfile) (*QualityGate, error) {
	r := thresholds(p, "trade_quality")
	g := &QualityGate{
		minStopPct:    r.get("min_stop_distance_pct"),
		maxStopPct:    r.get("max_stop_distance_pct"),
		minRiskReward: r.get("min_risk_reward"),
		minResistPct:  r.get("min_resistance_distance_pct"),
		maxSupportPct: r.get("max_support_distance_pct"),
		srLookback:    r.getInt("sr_lookback"),
	}
	return g, r.err
}

// Levels scans the tail of the daily series for the swing levels the
// resistance and support gates measure against.
func (g *QualityGate) Levels(daily *contracts.Series, price float64) indicators.Levels {
	if seriesLen(daily) == 0 {
		return indicators.Levels{}
	}
	return indicators.FindLevels(daily.Highs(), daily.Lows(), price, g.srLookback)
}

// Check runs the gates in order against a setup, the current price, and
// the nearby levels. Each gate is skipped when its datum is absent.
// An empty reason means the candidate passed; metrics carry the
// measured values for the report.
func (g *QualityGate) Check(setup *contracts.TradeSetup, price float64, levels indicators.Levels) (contracts.Attributes, string) {
	metrics := contracts.NewAttributes()

	if setup.Stop > 0 && price > 0 {
		stopDistance := math.Abs(price-setup.Stop) / price * 100
		metrics.Set("stop_distance_pct", stopDistance)
		if stopDistance < g.minStopPct {
			return nil, "stop too tight"
		}
		if stopDistance > g.maxStopPct {
			return nil, "stop too wide"
		}
	}

	if setup.Risk > 0 && setup.TargetFast > 0 {
		rr := (setup.TargetFast - setup.EntryFast) / setup.Risk
		metrics.Set("risk_reward", rr)
		if rr < g.minRiskReward {
			return nil, "r:r too low"
		}
	}

	if levels.Resistance > 0 {
		metrics.Set("resistance_distance_pct", levels.ResistanceDistancePct)
		if levels.ResistanceDistancePct < g.minResistPct {
			return nil, "too close to resistance"
		}
	}
	if levels.Support > 0 {
		metrics.Set("support_distance_pct", levels.SupportDistancePct)
		if levels.SupportDistancePct > g.maxSupportPct {
			return nil, "too far from support"
		}
	}
	return metrics, ""
}
