// Package selection implements the per-symbol decision core: ordered
// short-circuiting filter stages, weighted composite scoring, ranking,
// and trade setup derivation with quality gates. Everything in this
// package is pure computation over already-materialized series.
package selection

import (
	"math"
	"sort"
	"strings"

	"github.com/wonny/sift/internal/contracts"
)

// SymbolData bundles every series fetched for one symbol. Timeframes a
// strategy does not use stay nil.
type SymbolData struct {
	Symbol   string
	Daily    *contracts.Series
	Weekly   *contracts.Series
	Intraday *contracts.Series
	Opening  *contracts.Series
}

// Series returns the series for a timeframe, nil when absent.
func (d *SymbolData) Series(tf contracts.Timeframe) *contracts.Series {
	switch tf {
	case contracts.TimeframeDaily:
		return d.Daily
	case contracts.TimeframeWeekly:
		return d.Weekly
	case contracts.TimeframeIntraday:
		return d.Intraday
	case contracts.TimeframeOpening:
		return d.Opening
	}
	return nil
}

// StageContext is the shared state of one pipeline run: the symbol's
// series set, the read-only benchmark series, and the attribute
// accumulator every passing stage merges into.
// ⭐ SSOT: stages communicate only through the context, never directly
type StageContext struct {
	Data      *SymbolData
	Benchmark *contracts.Series
	Attrs     contracts.Attributes
}

// Stage is one filter in the pipeline. Implementations are pure: no
// I/O, no mutable state beyond thresholds captured at construction.
type Stage interface {
	ID() string
	Timeframe() contracts.Timeframe
	Evaluate(sctx *StageContext) contracts.Verdict
}

// scoreOnly marks stages that record attributes for the scorer but
// never gate. The pipeline ignores their verdict's Passed field.
type scoreOnly interface {
	ScoreOnly() bool
}

func isScoreOnly(st Stage) bool {
	so, ok := st.(scoreOnly)
	return ok && so.ScoreOnly()
}

// requireValues rejects with an indicator-unavailable reason naming every NaN
// input, sorted for stable messages. Gating stages route their inputs
// through it before comparing anything.
func requireValues(stageID string, values map[string]float64) (contracts.Verdict, bool) {
	var missing []string
	for name, v := range values {
		if math.IsNaN(v) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return contracts.Verdict{}, true
	}
	return rejectMissing(stageID, missing...), false
}

// rejectMissing builds the indicator-unavailable rejection for named
// inputs, used directly when a whole column is absent.
func rejectMissing(stageID string, names ...string) contracts.Verdict {
	sort.Strings(names)
	reason := contracts.ReasonIndicatorMissing + ": " + strings.Join(names, ", ")
	return contracts.Reject(stageID, reason)
}

func seriesLen(s *contracts.Series) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

// lastCandle returns the most recent candle of a possibly nil series.
func lastCandle(s *contracts.Series) (contracts.Candle, bool) {
	if s == nil {
		return contracts.Candle{}, false
	}
	return s.Last()
}
