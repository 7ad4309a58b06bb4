package selection

import (
	"fmt"
	"math"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

// intradayConfirmStage validates the session open before committing to
// an entry: price holding above VWAP through the confirmation window,
// no heavy selling wicks on the opening candles, and participation at
// or above the session average.
type intradayConfirmStage struct {
	startMin   int
	endMin     int
	minCandles int
	wickMax    float64
	volumeMult float64
}

func newIntradayConfirmStage(p *strategyconfig.StrategyProfile) (Stage, error) {
	r := thresholds(p, "intraday_confirm")
	st := &intradayConfirmStage{
		startMin:   r.getInt("confirm_start_min"),
		endMin:     r.getInt("confirm_end_min"),
		minCandles: r.getInt("intraday_min_candles"),
		wickMax:    r.get("upper_wick_max"),
		volumeMult: r.get("intraday_volume_multiplier"),
	}
	return st, r.err
}

func (st *intradayConfirmStage) ID() string { return "intraday_confirm" }

func (st *intradayConfirmStage) Timeframe() contracts.Timeframe { return contracts.TimeframeIntraday }

// windowIndexes returns the positions of candles inside the
// confirmation window, in series order. Index positions matter because
// indicator columns are aligned with the full series, not the window.
func (st *intradayConfirmStage) windowIndexes(s *contracts.Series) []int {
	var idx []int
	for i, c := range s.Candles() {
		minutes := c.Time.Hour()*60 + c.Time.Minute()
		if minutes >= st.startMin && minutes <= st.endMin {
			idx = append(idx, i)
		}
	}
	return idx
}

func (st *intradayConfirmStage) Evaluate(sctx *StageContext) contracts.Verdict {
	s := sctx.Data.Intraday
	if seriesLen(s) == 0 {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}
	window := st.windowIndexes(s)
	if len(window) < st.minCandles {
		return contracts.Reject(st.ID(), contracts.ReasonInsufficientHistory)
	}

	lastIdx := window[len(window)-1]
	last := s.Candle(lastIdx)
	lastVWAP := s.Value(indicators.ColVWAP, lastIdx)
	if v, ok := requireValues(st.ID(), map[string]float64{indicators.ColVWAP: lastVWAP}); !ok {
		return v
	}
	if last.Close <= lastVWAP {
		return contracts.Reject(st.ID(), "price not above vwap")
	}

	// The first candles of the window carry the open's intent: a low
	// under VWAP or a dominant upper wick means sellers are active.
	for n, idx := range window {
		if n >= 2 {
			break
		}
		c := s.Candle(idx)
		vwap := s.Value(indicators.ColVWAP, idx)
		if math.IsNaN(vwap) {
			return rejectMissing(st.ID(), indicators.ColVWAP)
		}
		if c.Low < vwap {
			return contracts.Reject(st.ID(), fmt.Sprintf("candle %d dropped below vwap", n+1))
		}
		if r := c.Range(); r > 0 {
			if c.UpperWick()/r > st.wickMax {
				return contracts.Reject(st.ID(), fmt.Sprintf("candle %d upper wick too large", n+1))
			}
		}
	}

	attrs := contracts.NewAttributes()
	attrs.Set("intraday_close", last.Close)
	attrs.Set("intraday_vwap", lastVWAP)

	// Volume check is best-effort: early in the session the average is
	// not established yet, so an unavailable baseline skips the check.
	volAvg := s.Value(indicators.ColVolAvg20, lastIdx)
	if !math.IsNaN(volAvg) && volAvg > 0 {
		if last.Volume < st.volumeMult*volAvg {
			return contracts.Reject(st.ID(), "intraday volume below average")
		}
		attrs.Set("intraday_volume_ratio", last.Volume/volAvg)
	}
	return contracts.Pass(attrs)
}
