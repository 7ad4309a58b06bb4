package contracts

// TradeSetup carries the derived entry/stop/target geometry for a
// candidate that passed every filter stage
type TradeSetup struct {
	EntryFast       float64 `json:"entry_fast"` // aggressive entry (fast EMA)
	EntrySlow       float64 `json:"entry_slow"` // conservative entry (slow EMA)
	Stop            float64 `json:"stop"`       // tighter of swing-low and volatility stop
	TargetFast      float64 `json:"target_fast"`
	TargetSlow      float64 `json:"target_slow"`
	Risk            float64 `json:"risk"`              // entry_fast - stop
	Reward          float64 `json:"reward"`            // target_fast - entry_fast
	RiskReward      float64 `json:"risk_reward"`       // reward / risk
	StopDistancePct float64 `json:"stop_distance_pct"` // risk as % of entry_fast
	SwingLow        float64 `json:"swing_low"`
	Resistance      float64 `json:"resistance,omitempty"` // nearest level above entry, 0 when none
	Support         float64 `json:"support,omitempty"`    // nearest level below entry, 0 when none
}

// RankedCandidate is one surviving symbol with its composite score
// ⭐ SSOT: the final per-symbol decision artifact
type RankedCandidate struct {
	Symbol       string             `json:"symbol"`
	Rank         int                `json:"rank"` // 1-based, assigned after sorting
	Score        float64            `json:"score"`
	FactorScores map[string]float64 `json:"factor_scores"`
	Attributes   Attributes         `json:"attributes"`
	Setup        *TradeSetup        `json:"setup,omitempty"`
}

// IsTopRanked checks if the candidate is in top N ranks
func (r *RankedCandidate) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// Rejection records why a symbol left the pipeline, for diagnostics
type Rejection struct {
	Symbol string `json:"symbol"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}
