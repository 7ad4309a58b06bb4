// Package output renders screening reports for operators and persists
// them as dated JSON artifacts.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/wonny/sift/internal/contracts"
)

const lineWidth = 60

// Renderer prints a human-readable view of a screening report.
// ⭐ SSOT: console rendering of a report happens here only
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a renderer writing to w, or stdout when w is nil.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{w: w}
}

// Render prints the full report: header, market sentiment, screening
// summary with per-stage rejection counts, and a detail block per
// candidate.
func (r *Renderer) Render(report *contracts.ScreenReport) {
	r.printHeader(report)
	r.printSentiment(report.Sentiment)
	r.printSummary(report)
	r.printCandidates(report)
}

func (r *Renderer) printHeader(report *contracts.ScreenReport) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, strings.Repeat("=", lineWidth))
	fmt.Fprintf(r.w, "STOCK SCREENER - %s\n", strings.ToUpper(report.Strategy))
	fmt.Fprintf(r.w, "Date: %s\n", report.RunAt.Format("2006-01-02 15:04:05"))
	if report.ConfigHash != "" {
		fmt.Fprintf(r.w, "Config: %.12s\n", report.ConfigHash)
	}
	fmt.Fprintln(r.w, strings.Repeat("=", lineWidth))
	fmt.Fprintln(r.w)
}

func (r *Renderer) printSentiment(s *contracts.MarketSnapshot) {
	if s == nil {
		return
	}
	fmt.Fprintf(r.w, "📊 MARKET SENTIMENT (%s):\n", s.Benchmark)
	fmt.Fprintf(r.w, "  Gap: %+.2f%% (%s)\n", s.GapPct, s.GapLabel)
	fmt.Fprintf(r.w, "  Today: %s (%+.2f%%)\n", s.Sentiment, s.ChangePct)
	fmt.Fprintf(r.w, "  %s\n", s.Recommendation)
	fmt.Fprintln(r.w)
}

func (r *Renderer) printSummary(report *contracts.ScreenReport) {
	fmt.Fprintln(r.w, "📊 SCREENING SUMMARY")
	fmt.Fprintln(r.w, strings.Repeat("-", lineWidth))
	fmt.Fprintf(r.w, "%-34s %4d\n", "Universe symbols:", len(report.Universe))
	fmt.Fprintf(r.w, "%-34s %4d\n", "Evaluated:", report.Evaluated)
	fmt.Fprintf(r.w, "%-34s %4d\n", "Passed all filters:", report.Passed)
	fmt.Fprintf(r.w, "%-34s %4d\n", "Final candidates:", len(report.Candidates))

	if len(report.StageCounts) > 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, "Rejections by stage:")
		stages := make([]string, 0, len(report.StageCounts))
		for stage := range report.StageCounts {
			stages = append(stages, stage)
		}
		sort.Strings(stages)
		for _, stage := range stages {
			fmt.Fprintf(r.w, "  ✗ %-30s %4d\n", stage, report.StageCounts[stage])
		}
	}
	fmt.Fprintln(r.w, strings.Repeat("-", lineWidth))
}

func (r *Renderer) printCandidates(report *contracts.ScreenReport) {
	if len(report.Candidates) == 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, "⚠️  NO CANDIDATES TODAY")
		fmt.Fprintln(r.w, "Every symbol failed the filtering criteria.")
		fmt.Fprintln(r.w, "This is normal behavior - not every day has suitable setups.")
		fmt.Fprintln(r.w)
		return
	}

	fmt.Fprintf(r.w, "\n✅ TOP %d CANDIDATE(S)\n", len(report.Candidates))
	fmt.Fprintln(r.w, strings.Repeat("=", lineWidth))

	for _, c := range report.Candidates {
		fmt.Fprintf(r.w, "\n#%d %s - Score: %.2f/100\n", c.Rank, c.Symbol, c.Score)
		fmt.Fprintln(r.w, strings.Repeat("-", lineWidth))

		factors := make([]string, 0, len(c.FactorScores))
		for factor := range c.FactorScores {
			factors = append(factors, factor)
		}
		sort.Strings(factors)
		for _, factor := range factors {
			fmt.Fprintf(r.w, "  %-24s %6.2f\n", factor+":", c.FactorScores[factor])
		}

		r.printSetup(c.Setup)
	}

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, strings.Repeat("=", lineWidth))
}

func (r *Renderer) printSetup(setup *contracts.TradeSetup) {
	if setup == nil {
		return
	}
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "  💰 TRADE SETUP:")
	fmt.Fprintf(r.w, "    Entry (fast EMA):  %.2f\n", setup.EntryFast)
	fmt.Fprintf(r.w, "    Entry (slow EMA):  %.2f\n", setup.EntrySlow)
	fmt.Fprintf(r.w, "    Stop:              %.2f (%.2f%% away)\n", setup.Stop, setup.StopDistancePct)
	fmt.Fprintf(r.w, "    Target (fast):     %.2f\n", setup.TargetFast)
	fmt.Fprintf(r.w, "    Target (slow):     %.2f\n", setup.TargetSlow)
	fmt.Fprintf(r.w, "    Risk-Reward:       1:%.2f\n", setup.RiskReward)
	if setup.Resistance > 0 {
		fmt.Fprintf(r.w, "    Resistance above:  %.2f\n", setup.Resistance)
	}
	if setup.Support > 0 {
		fmt.Fprintf(r.w, "    Support below:     %.2f\n", setup.Support)
	}
}
