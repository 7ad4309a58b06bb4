package selection

import (
	"github.com/wonny/sift/internal/contracts"
)

// Pipeline executes stages strictly in profile order. The first gating
// failure short-circuits the run; later stages are never invoked.
// ⭐ SSOT: short-circuit and attribute accumulation live here only
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds a pipeline from already-constructed stages.
// BuildPipeline is the profile-driven entry point; this constructor
// exists for composing stages directly.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages returns the ordered stage list.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// Run evaluates every stage in order against the context. Attributes of
// passing verdicts merge into sctx.Attrs so later stages and the scorer
// can read them. Score-only stages never gate. The returned verdict is
// either the first gating rejection or a pass carrying the full
// attribute accumulation.
func (p *Pipeline) Run(sctx *StageContext) contracts.Verdict {
	if sctx.Attrs == nil {
		sctx.Attrs = contracts.NewAttributes()
	}
	for _, st := range p.stages {
		v := st.Evaluate(sctx)
		if v.Attributes != nil {
			sctx.Attrs.Merge(v.Attributes)
		}
		if !v.Passed && !isScoreOnly(st) {
			return v
		}
	}
	return contracts.Pass(sctx.Attrs)
}
