package selection

import (
	"fmt"

	"github.com/wonny/sift/internal/strategyconfig"
)

// StageBuilder constructs a stage for a profile, capturing the
// thresholds the stage compares against. Builders fail when the profile
// lacks a threshold the stage needs, so misconfiguration surfaces when
// the pipeline is assembled, never mid-run.
type StageBuilder func(p *strategyconfig.StrategyProfile) (Stage, error)

// stageBuilders maps stage IDs to constructors.
// ⭐ SSOT: the only place stage IDs bind to implementations
var stageBuilders = map[string]StageBuilder{
	"daily_history":        newHistoryStage,
	"trend_structure":      newTrendStructureStage,
	"trend_regime":         newTrendRegimeStage,
	"trend_slope":          newTrendSlopeStage,
	"trend_strength":       newTrendStrengthStage,
	"momentum_band":        newMomentumBandStage,
	"volatility_expansion": newVolatilityExpansionStage,
	"volume_confirmation":  newVolumeConfirmationStage,
	"relative_strength":    newRelativeStrengthStage,
	"higher_lows":          newHigherLowsStage,
	"volume_expansion":     newVolumeExpansionStage,
	"consolidation_break":  newConsolidationBreakStage,
	"bullish_engulfing":    newBullishEngulfingStage,
	"weekly_confirm":       newWeeklyConfirmStage,
	"intraday_confirm":     newIntradayConfirmStage,
	"liquidity":            newLiquidityStage,
	"opening_range":        newOpeningRangeStage,
	"trend_alignment":      newTrendAlignmentStage,
	"volume_spike":         newVolumeSpikeStage,
	"vwap_distance":        newVWAPDistanceStage,
	"volatility_floor":     newVolatilityFloorStage,
}

// RegisterStage adds a stage constructor under a new id. Strategies
// beyond the built-ins register their stages before building pipelines.
func RegisterStage(id string, b StageBuilder) error {
	if _, exists := stageBuilders[id]; exists {
		return fmt.Errorf("stage %q already registered", id)
	}
	stageBuilders[id] = b
	return nil
}

// BuildPipeline assembles the profile's ordered stage list. Unknown
// stage IDs and missing thresholds are ValidationErrors so callers can
// fail fast at startup.
func BuildPipeline(p *strategyconfig.StrategyProfile) (*Pipeline, error) {
	stages := make([]Stage, 0, len(p.Stages))
	for _, id := range p.Stages {
		build, ok := stageBuilders[id]
		if !ok {
			return nil, strategyconfig.ValidationError{
				Field:   "stages",
				Message: fmt.Sprintf("unknown stage %q", id),
			}
		}
		st, err := build(p)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return NewPipeline(stages...), nil
}

// thresholdReader collects threshold lookups for one consumer and hangs
// on to the first failure, so builders read several values without
// checking an error after each.
type thresholdReader struct {
	p     *strategyconfig.StrategyProfile
	owner string
	err   error
}

func thresholds(p *strategyconfig.StrategyProfile, owner string) *thresholdReader {
	return &thresholdReader{p: p, owner: owner}
}

func (r *thresholdReader) get(name string) float64 {
	if r.err != nil {
		return 0
	}
	v, ok := r.p.Threshold(name)
	if !ok {
		r.err = strategyconfig.ValidationError{
			Field:   "thresholds",
			Message: fmt.Sprintf("%s requires threshold %s", r.owner, name),
		}
		return 0
	}
	return v
}

func (r *thresholdReader) getInt(name string) int {
	return int(r.get(name))
}
