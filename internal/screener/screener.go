// Package screener orchestrates a full screening run: universe
// resolution, candle fetching, the per-symbol evaluation fan-out,
// ranking, and trade setup qualification.
package screener

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/market"
	"github.com/wonny/sift/internal/selection"
	"github.com/wonny/sift/internal/strategyconfig"
	"github.com/wonny/sift/pkg/logger"
)

const (
	// maxWorkers caps the fan-out regardless of CPU count. Evaluation
	// is cheap next to candle fetching, so a small pool saturates the
	// providers without stampeding them.
	maxWorkers = 8

	// Calendar lookbacks sized so the slowest indicators have their
	// warmup even across holiday-heavy stretches.
	dailyLookbackDays  = 400
	weeklyLookbackDays = 7 * 60
)

// Options tune a run without touching the strategy profile.
type Options struct {
	// Workers bounds the evaluation pool. Zero means one worker per
	// CPU, capped at maxWorkers.
	Workers int
}

// Screener wires a candle provider and a universe source to the
// selection engine for one strategy profile.
// ⭐ SSOT: a run's report is assembled here and nowhere else
type Screener struct {
	provider  contracts.CandleProvider
	universe  contracts.UniverseSource
	profile   *strategyconfig.StrategyProfile
	evaluator *selection.Evaluator
	setups    *selection.SetupCalculator
	quality   *selection.QualityGate
	workers   int
	log       *logger.Logger
}

// New builds a screener, failing fast when the profile references
// unknown stages or is missing thresholds its stages need.
func New(provider contracts.CandleProvider, universe contracts.UniverseSource, p *strategyconfig.StrategyProfile, opts Options, log *logger.Logger) (*Screener, error) {
	if provider == nil || universe == nil {
		return nil, errors.New("screener: provider and universe are required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	evaluator, err := selection.NewEvaluator(p, log)
	if err != nil {
		return nil, fmt.Errorf("build evaluator: %w", err)
	}
	s := &Screener{
		provider:  provider,
		universe:  universe,
		profile:   p,
		evaluator: evaluator,
		workers:   opts.Workers,
		log:       log,
	}
	if p.DeriveSetups {
		if s.setups, err = selection.NewSetupCalculator(p); err != nil {
			return nil, fmt.Errorf("build setup calculator: %w", err)
		}
		if s.quality, err = selection.NewQualityGate(p); err != nil {
			return nil, fmt.Errorf("build quality gate: %w", err)
		}
	}
	return s, nil
}

// Run screens the universe as of the given session date. A zero asOf
// means now. Cancelling the context stops scheduling new symbols;
// evaluations already in flight finish and are included, and the
// partial report is returned alongside the context error.
func (s *Screener) Run(ctx context.Context, asOf time.Time) (*contracts.ScreenReport, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	start := time.Now()

	symbols, err := s.universe.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}
	hash, err := strategyconfig.Hash(s.profile)
	if err != nil {
		return nil, fmt.Errorf("hash profile: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"strategy": s.profile.Name,
		"universe": len(symbols),
		"workers":  s.workerCount(),
	}).Info("Screening run started")

	benchDaily, benchIntraday := s.fetchBenchmark(ctx, asOf)
	slots := s.evaluateUniverse(ctx, symbols, benchDaily, asOf)

	report := &contracts.ScreenReport{
		Strategy:   s.profile.Name,
		RunAt:      asOf,
		ConfigHash: hash,
		Universe:   symbols,
	}

	var candidates []contracts.RankedCandidate
	data := make(map[string]*selection.SymbolData, len(symbols))
	for _, sl := range slots {
		if sl.res.Symbol == "" {
			continue // never scheduled: the run was cancelled
		}
		report.Evaluated++
		if sl.res.Candidate != nil {
			candidates = append(candidates, *sl.res.Candidate)
			data[sl.res.Symbol] = sl.data
			continue
		}
		if sl.res.Rejection != nil {
			report.Rejections = append(report.Rejections, *sl.res.Rejection)
		}
	}
	report.Passed = len(candidates)

	ranked := selection.Rank(candidates, s.profile.MaxCandidates)
	if s.profile.DeriveSetups {
		ranked = s.qualifySetups(ranked, data, report)
	}
	report.Candidates = ranked
	report.BuildStageCounts()
	report.Sentiment = market.Analyze(s.universe.Benchmark(), benchDaily, benchIntraday)

	s.log.WithFields(map[string]interface{}{
		"strategy":   s.profile.Name,
		"evaluated":  report.Evaluated,
		"passed":     report.Passed,
		"candidates": len(report.Candidates),
		"duration":   time.Since(start).String(),
	}).Info("Screening run completed")

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}

type slot struct {
	res  selection.Result
	data *selection.SymbolData
}

// evaluateUniverse fans symbols out over the worker pool. Results land
// in a slice indexed by universe position, so the collection order
// never depends on worker timing.
func (s *Screener) evaluateUniverse(ctx context.Context, symbols []string, benchmark *contracts.Series, asOf time.Time) []slot {
	slots := make([]slot, len(symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workerCount(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				data := s.fetchSymbol(ctx, symbols[i], asOf)
				slots[i] = slot{res: s.evaluator.Evaluate(data, benchmark), data: data}
			}
		}()
	}

scheduling:
	for i := range symbols {
		select {
		case <-ctx.Done():
			s.log.WithField("remaining", len(symbols)-i).Warn("Run cancelled, stopping new evaluations")
			break scheduling
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return slots
}

// fetchSymbol assembles the symbol's series for every timeframe the
// profile screens. A failed fetch is logged and leaves that series
// absent; the pipeline then rejects the symbol at the first stage
// that needs it.
func (s *Screener) fetchSymbol(ctx context.Context, symbol string, asOf time.Time) *selection.SymbolData {
	data := &selection.SymbolData{Symbol: symbol}
	for _, tf := range s.profile.Timeframes {
		timeframe := contracts.Timeframe(tf)
		from, to := fetchWindow(timeframe, asOf)
		candles, err := s.provider.Candles(ctx, symbol, timeframe, from, to)
		if err != nil {
			s.log.WithError(err).WithFields(map[string]interface{}{
				"symbol":    symbol,
				"timeframe": tf,
			}).Warn("Candle fetch failed")
			continue
		}
		series := contracts.NewSeries(symbol, timeframe, candles)
		switch timeframe {
		case contracts.TimeframeDaily:
			data.Daily = series
		case contracts.TimeframeWeekly:
			data.Weekly = series
		case contracts.TimeframeIntraday:
			data.Intraday = series
		case contracts.TimeframeOpening:
			data.Opening = series
		}
	}
	return data
}

// fetchBenchmark pulls the benchmark's daily history for relative
// strength and today's bars for the sentiment snapshot. Both are
// optional: a missing benchmark degrades those readings, not the run.
func (s *Screener) fetchBenchmark(ctx context.Context, asOf time.Time) (daily, intraday *contracts.Series) {
	symbol := s.universe.Benchmark()
	if symbol == "" {
		return nil, nil
	}

	from, to := fetchWindow(contracts.TimeframeDaily, asOf)
	candles, err := s.provider.Candles(ctx, symbol, contracts.TimeframeDaily, from, to)
	if err != nil {
		s.log.WithError(err).WithField("symbol", symbol).Warn("Benchmark daily fetch failed")
	} else {
		daily = contracts.NewSeries(symbol, contracts.TimeframeDaily, candles)
	}

	from, to = fetchWindow(contracts.TimeframeIntraday, asOf)
	candles, err = s.provider.Candles(ctx, symbol, contracts.TimeframeIntraday, from, to)
	if err != nil {
		s.log.WithError(err).WithField("symbol", symbol).Warn("Benchmark intraday fetch failed")
	} else {
		intraday = contracts.NewSeries(symbol, contracts.TimeframeIntraday, candles)
	}
	return daily, intraday
}

// qualifySetups derives a trade setup for each ranked candidate and
// re-filters on its geometry. A failed candidate is dropped and
// reported; the next-ranked symbol is not promoted in its place, so
// the final list may run short of max_candidates.
func (s *Screener) qualifySetups(ranked []contracts.RankedCandidate, data map[string]*selection.SymbolData, report *contracts.ScreenReport) []contracts.RankedCandidate {
	kept := make([]contracts.RankedCandidate, 0, len(ranked))
	for _, cand := range ranked {
		d := data[cand.Symbol]
		setup, err := s.setups.Derive(d.Intraday)
		if err != nil {
			report.Rejections = append(report.Rejections, contracts.Rejection{
				Symbol: cand.Symbol,
				Stage:  "trade_setup",
				Reason: err.Error(),
			})
			continue
		}

		price := currentPrice(d)
		metrics, reason := s.quality.Check(setup, price, s.quality.Levels(d.Daily, price))
		if reason != "" {
			report.Rejections = append(report.Rejections, contracts.Rejection{
				Symbol: cand.Symbol,
				Stage:  "trade_quality",
				Reason: reason,
			})
			continue
		}

		// Quality metrics ride along on the candidate; the composite
		// score is not recomputed from them.
		cand.Setup = setup
		cand.Attributes.Merge(metrics)
		kept = append(kept, cand)
	}
	return kept
}

// currentPrice is the reference price for gate distances: the last
// intraday close when today's bars exist, the daily close otherwise.
func currentPrice(d *selection.SymbolData) float64 {
	if d.Intraday != nil {
		if last, ok := d.Intraday.Last(); ok {
			return last.Close
		}
	}
	if d.Daily != nil {
		if last, ok := d.Daily.Last(); ok {
			return last.Close
		}
	}
	return 0
}

func (s *Screener) workerCount() int {
	n := s.workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

// fetchWindow sizes the candle request per timeframe: enough daily and
// weekly history to warm the slowest indicators, the session itself
// for intraday and opening bars. Windows are half-open ending at the
// session's midnight, so the as-of day itself is always covered.
func fetchWindow(tf contracts.Timeframe, asOf time.Time) (time.Time, time.Time) {
	y, m, d := asOf.Date()
	sessionStart := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location())
	sessionEnd := sessionStart.AddDate(0, 0, 1)

	switch tf {
	case contracts.TimeframeDaily:
		return sessionStart.AddDate(0, 0, -dailyLookbackDays), sessionEnd
	case contracts.TimeframeWeekly:
		return sessionStart.AddDate(0, 0, -weeklyLookbackDays), sessionEnd
	default:
		return sessionStart, sessionEnd
	}
}
