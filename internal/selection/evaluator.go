package selection

import (
	"fmt"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
	"github.com/wonny/sift/pkg/logger"
)

// Evaluator runs one symbol through enrichment, the filter pipeline and
// the scorer. It is built once per run from a validated profile; Run is
// safe for concurrent use because every field is read-only afterwards.
// ⭐ SSOT: the per-symbol decision sequence lives here and nowhere else
type Evaluator struct {
	profile  *strategyconfig.StrategyProfile
	pipeline *Pipeline
	scorer   *Scorer
	log      *logger.Logger
}

// NewEvaluator assembles the profile's pipeline and scorer. Unknown
// stage IDs, missing thresholds, and unresolvable weight names all fail
// here, before any symbol is touched.
func NewEvaluator(p *strategyconfig.StrategyProfile, log *logger.Logger) (*Evaluator, error) {
	pipeline, err := BuildPipeline(p)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorer(p)
	if err != nil {
		return nil, err
	}
	return &Evaluator{profile: p, pipeline: pipeline, scorer: scorer, log: log}, nil
}

// Profile returns the profile the evaluator was built from.
func (e *Evaluator) Profile() *strategyconfig.StrategyProfile {
	return e.profile
}

// Result is the outcome of one symbol's evaluation. Exactly one of
// Candidate and Rejection is non-nil.
type Result struct {
	Symbol    string
	Candidate *contracts.RankedCandidate
	Rejection *contracts.Rejection
}

// Evaluate enriches the symbol's series, runs the pipeline, and scores
// a survivor. A panic anywhere inside is recovered and recorded as a
// computation-error rejection so one corrupt symbol cannot take down
// the whole run.
func (e *Evaluator) Evaluate(data *SymbolData, benchmark *contracts.Series) (res Result) {
	res.Symbol = data.Symbol
	defer func() {
		if r := recover(); r != nil {
			e.log.WithFields(map[string]interface{}{
				"symbol": data.Symbol,
				"panic":  fmt.Sprintf("%v", r),
			}).Error("evaluation panicked")
			res.Candidate = nil
			res.Rejection = &contracts.Rejection{
				Symbol: data.Symbol,
				Stage:  "pipeline",
				Reason: contracts.ReasonComputationError,
			}
		}
	}()

	if err := enrichData(data); err != nil {
		e.log.WithError(err).WithField("symbol", data.Symbol).Error("enrichment failed")
		res.Rejection = &contracts.Rejection{
			Symbol: data.Symbol,
			Stage:  "enrich",
			Reason: contracts.ReasonComputationError,
		}
		return res
	}

	sctx := &StageContext{
		Data:      data,
		Benchmark: benchmark,
		Attrs:     contracts.NewAttributes(),
	}
	verdict := e.pipeline.Run(sctx)
	if !verdict.Passed {
		res.Rejection = &contracts.Rejection{
			Symbol: data.Symbol,
			Stage:  verdict.Stage,
			Reason: verdict.Reason,
		}
		return res
	}

	score, parts := e.scorer.Composite(sctx.Attrs)
	res.Candidate = &contracts.RankedCandidate{
		Symbol:       data.Symbol,
		Score:        score,
		FactorScores: parts,
		Attributes:   sctx.Attrs,
	}
	return res
}

// enrichData attaches the indicator columns each present series needs.
func enrichData(data *SymbolData) error {
	for _, s := range []*contracts.Series{data.Daily, data.Weekly, data.Intraday, data.Opening} {
		if s == nil || s.Len() == 0 {
			continue
		}
		if err := indicators.Enrich(s); err != nil {
			return err
		}
	}
	return nil
}
