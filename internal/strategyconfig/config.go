package strategyconfig

import "errors"

// ErrUnknownStrategy is returned when a strategy name has no registered
// profile
var ErrUnknownStrategy = errors.New("unknown strategy")

// StrategyProfile binds one named strategy to its ordered filter
// stages, threshold values, scoring weights and data requirements. A
// profile is resolved once at startup and never mutated during a run.
// ⭐ SSOT: every tunable screening number lives here
type StrategyProfile struct {
	Name          string             `yaml:"name" json:"name"`
	MaxCandidates int                `yaml:"max_candidates" json:"max_candidates"`
	Timeframes    []string           `yaml:"timeframes" json:"timeframes"`
	MinHistory    map[string]int     `yaml:"min_history" json:"min_history"` // timeframe -> candles
	Stages        []string           `yaml:"stages" json:"stages"`           // ordered stage IDs
	Thresholds    map[string]float64 `yaml:"thresholds" json:"thresholds"`
	Weights       map[string]int     `yaml:"weights" json:"weights"` // factor -> pct, sum 100
	DeriveSetups  bool               `yaml:"derive_setups" json:"derive_setups"`
}

// Threshold looks up a named threshold value.
func (p *StrategyProfile) Threshold(name string) (float64, bool) {
	v, ok := p.Thresholds[name]
	return v, ok
}

// MinHistoryFor returns the required candle count for a timeframe, zero
// when none is configured.
func (p *StrategyProfile) MinHistoryFor(timeframe string) int {
	return p.MinHistory[timeframe]
}

// HasTimeframe reports whether the profile requires a timeframe.
func (p *StrategyProfile) HasTimeframe(timeframe string) bool {
	for _, tf := range p.Timeframes {
		if tf == timeframe {
			return true
		}
	}
	return false
}

// WeightSum returns the total of all factor weights.
func (p *StrategyProfile) WeightSum() int {
	sum := 0
	for _, w := range p.Weights {
		sum += w
	}
	return sum
}

// Clone returns a deep copy so callers can hand out profiles without
// sharing mutable maps.
func (p *StrategyProfile) Clone() *StrategyProfile {
	out := &StrategyProfile{
		Name:          p.Name,
		MaxCandidates: p.MaxCandidates,
		Timeframes:    append([]string(nil), p.Timeframes...),
		MinHistory:    make(map[string]int, len(p.MinHistory)),
		Stages:        append([]string(nil), p.Stages...),
		Thresholds:    make(map[string]float64, len(p.Thresholds)),
		Weights:       make(map[string]int, len(p.Weights)),
		DeriveSetups:  p.DeriveSetups,
	}
	for k, v := range p.MinHistory {
		out.MinHistory[k] = v
	}
	for k, v := range p.Thresholds {
		out.Thresholds[k] = v
	}
	for k, v := range p.Weights {
		out.Weights[k] = v
	}
	return out
}
