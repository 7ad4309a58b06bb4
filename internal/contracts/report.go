package contracts

import "time"

// MarketSnapshot summarizes the benchmark's session for context in the
// final report. Computed by internal/market.
type MarketSnapshot struct {
	Benchmark      string  `json:"benchmark"`
	GapPct         float64 `json:"gap_pct"`
	ChangePct      float64 `json:"change_pct"`
	GapLabel       string  `json:"gap_label"`
	Sentiment      string  `json:"sentiment"`
	Recommendation string  `json:"recommendation"`
}

// ScreenReport is the artifact of one screening run
// ⭐ SSOT: everything a run produces is carried by this report
type ScreenReport struct {
	Strategy    string            `json:"strategy"`
	RunAt       time.Time         `json:"run_at"`
	ConfigHash  string            `json:"config_hash"`
	Universe    []string          `json:"universe"`
	Evaluated   int               `json:"evaluated"`
	Passed      int               `json:"passed"`
	Candidates  []RankedCandidate `json:"candidates"`
	Rejections  []Rejection       `json:"rejections"`
	StageCounts map[string]int    `json:"stage_counts"`
	Sentiment   *MarketSnapshot   `json:"sentiment,omitempty"`
}

// BuildStageCounts aggregates rejections per failing stage
func (r *ScreenReport) BuildStageCounts() {
	counts := make(map[string]int, len(r.Rejections))
	for _, rej := range r.Rejections {
		counts[rej.Stage]++
	}
	r.StageCounts = counts
}

// TopSymbols returns the candidate symbols in rank order
func (r *ScreenReport) TopSymbols() []string {
	out := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.Symbol)
	}
	return out
}

// Empty reports whether no symbol could be evaluated at all, which is
// different from every evaluated symbol being rejected
func (r *ScreenReport) Empty() bool {
	return r.Evaluated == 0
}
