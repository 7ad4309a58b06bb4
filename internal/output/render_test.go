package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/sift/internal/contracts"
)

func sampleReport() *contracts.ScreenReport {
	report := &contracts.ScreenReport{
		Strategy:   "swing",
		RunAt:      time.Date(2025, 6, 2, 15, 40, 0, 0, time.UTC),
		ConfigHash: "0a1b2c3d4e5f66778899aabbccddeeff0a1b2c3d4e5f66778899aabbccddeeff",
		Universe:   []string{"RELIANCE", "INFY", "TCS"},
		Evaluated:  3,
		Passed:     1,
		Candidates: []contracts.RankedCandidate{
			{
				Symbol: "RELIANCE",
				Rank:   1,
				Score:  59.34,
				FactorScores: map[string]float64{
					"trend":    80,
					"momentum": 55.5,
				},
				Setup: &contracts.TradeSetup{
					EntryFast:       100,
					EntrySlow:       99.5,
					Stop:            98.9,
					TargetFast:      101.65,
					TargetSlow:      101.15,
					Risk:            1.1,
					Reward:          1.65,
					RiskReward:      1.5,
					StopDistancePct: 1.1,
					SwingLow:        99,
					Resistance:      110,
					Support:         95,
				},
			},
		},
		Rejections: []contracts.Rejection{
			{Symbol: "INFY", Stage: "trend_structure", Reason: "price below long-term average"},
			{Symbol: "TCS", Stage: "daily_history", Reason: contracts.ReasonInsufficientHistory},
		},
		Sentiment: &contracts.MarketSnapshot{
			Benchmark:      "NIFTY50",
			GapPct:         0.8,
			ChangePct:      1.6,
			GapLabel:       "Bullish",
			Sentiment:      "Strong Bullish",
			Recommendation: "Full confidence - good day for longs",
		},
	}
	report.BuildStageCounts()
	return report
}

func TestRenderFullReport(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Render(sampleReport())
	out := buf.String()

	assert.Contains(t, out, "STOCK SCREENER - SWING")
	assert.Contains(t, out, "Date: 2025-06-02 15:40:00")

	// The config hash is truncated to a short prefix.
	assert.Contains(t, out, "Config: 0a1b2c3d4e5f")
	assert.NotContains(t, out, "66778899")

	assert.Contains(t, out, "MARKET SENTIMENT (NIFTY50)")
	assert.Contains(t, out, "Gap: +0.80% (Bullish)")
	assert.Contains(t, out, "Today: Strong Bullish (+1.60%)")
	assert.Contains(t, out, "Full confidence - good day for longs")

	assert.Contains(t, out, "Universe symbols:")
	assert.Contains(t, out, "Rejections by stage:")
	assert.Contains(t, out, "trend_structure")
	assert.Contains(t, out, "daily_history")

	assert.Contains(t, out, "#1 RELIANCE - Score: 59.34/100")
	assert.Contains(t, out, "TRADE SETUP")
	assert.Contains(t, out, "Risk-Reward:       1:1.50")
	assert.Contains(t, out, "Resistance above:  110.00")
	assert.Contains(t, out, "Support below:     95.00")
}

func TestRenderSortsBreakdowns(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Render(sampleReport())
	out := buf.String()

	// Factor and stage lines come out in name order, not map order.
	assert.Less(t, strings.Index(out, "momentum:"), strings.Index(out, "trend:"))
	assert.Less(t, strings.Index(out, "daily_history"), strings.Index(out, "trend_structure"))
}

func TestRenderNoCandidates(t *testing.T) {
	report := sampleReport()
	report.Candidates = nil
	report.Sentiment = nil

	var buf bytes.Buffer
	NewRenderer(&buf).Render(report)
	out := buf.String()

	assert.Contains(t, out, "NO CANDIDATES TODAY")
	assert.NotContains(t, out, "MARKET SENTIMENT")
	assert.NotContains(t, out, "TRADE SETUP")
}

func TestRenderSetupOmittedWhenAbsent(t *testing.T) {
	report := sampleReport()
	report.Candidates[0].Setup = nil

	var buf bytes.Buffer
	NewRenderer(&buf).Render(report)

	assert.NotContains(t, buf.String(), "TRADE SETUP")
}
