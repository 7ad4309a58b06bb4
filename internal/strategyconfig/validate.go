package strategyconfig

import (
	"fmt"

	"github.com/wonny/sift/internal/contracts"
)

// ValidationError marks a profile constraint violation. Any violation
// is fatal before the first run.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the structural constraints of a profile. Stage IDs
// and factor names are resolved against their registries when the
// pipeline and scorer are built, which also happens before the first
// run.
func Validate(p *StrategyProfile) error {
	if p.Name == "" {
		return ValidationError{"name", "required"}
	}
	if p.MaxCandidates < 1 {
		return ValidationError{"max_candidates", "must be >= 1"}
	}

	if len(p.Timeframes) == 0 {
		return ValidationError{"timeframes", "at least one required"}
	}
	for _, tf := range p.Timeframes {
		if !contracts.IsValidTimeframe(tf) {
			return ValidationError{"timeframes", fmt.Sprintf("unknown timeframe %q", tf)}
		}
	}

	if len(p.Stages) == 0 {
		return ValidationError{"stages", "at least one required"}
	}
	seen := make(map[string]bool, len(p.Stages))
	for _, id := range p.Stages {
		if seen[id] {
			return ValidationError{"stages", fmt.Sprintf("duplicate stage %q", id)}
		}
		seen[id] = true
	}

	for tf, n := range p.MinHistory {
		if !contracts.IsValidTimeframe(tf) {
			return ValidationError{"min_history", fmt.Sprintf("unknown timeframe %q", tf)}
		}
		if n < 1 {
			return ValidationError{"min_history", fmt.Sprintf("%s: must be >= 1", tf)}
		}
	}

	if len(p.Weights) == 0 {
		return ValidationError{"weights", "at least one required"}
	}
	for factor, w := range p.Weights {
		if w < 0 {
			return ValidationError{"weights", fmt.Sprintf("%s: must be >= 0", factor)}
		}
	}
	if sum := p.WeightSum(); sum != 100 {
		return ValidationError{"weights", fmt.Sprintf("must sum to 100, got %d", sum)}
	}

	if rsiMin, ok := p.Thresholds["rsi_min"]; ok {
		if rsiMax, ok := p.Thresholds["rsi_max"]; ok && rsiMin >= rsiMax {
			return ValidationError{"thresholds.rsi_min", "must be below rsi_max"}
		}
	}

	// A target multiple below the risk:reward gate would veto every
	// setup the calculator produces.
	if reward, ok := p.Thresholds["reward_multiple"]; ok {
		if minRR, ok := p.Thresholds["min_risk_reward"]; ok && reward < minRR {
			return ValidationError{"thresholds.reward_multiple",
				fmt.Sprintf("must be >= min_risk_reward (%.2f < %.2f)", reward, minRR)}
		}
	}

	if p.DeriveSetups && !p.HasTimeframe(string(contracts.TimeframeIntraday)) {
		return ValidationError{"derive_setups", "requires the intraday timeframe"}
	}

	return nil
}
