package selection

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/indicators"
	"github.com/wonny/sift/internal/strategyconfig"
)

// The swing-low stop sits just under the lowest recent low so a retest
// of the level does not stop the trade out.
const swingLowStopFactor = 0.999

// EMA20 must exist on the intraday series before a setup makes sense.
const setupMinBars = 20

// SetupCalculator derives entry, stop and target levels for candidates
// that passed every filter stage. Entries anchor on the intraday fast
// averages; the stop is the tighter of the swing-low stop and the
// volatility stop, tighter meaning closer to entry for a long.
type SetupCalculator struct {
	lookback   int
	atrMult    float64
	rewardMult float64
}

func NewSetupCalculator(p *strategyconfig.StrategyProfile) (*SetupCalculator, error) {
	r := thresholds(p, "trade_setup")
	c := &SetupCalculator{
		lookback:   r.getInt("swing_low_lookback"),
		atrMult:    r.get("stop_atr_multiplier"),
		rewardMult: r.get("reward_multiple"),
	}
	return c, r.err
}

// Derive computes the setup from the intraday series. When the series
// is too short or an anchor indicator is missing there is no setup; the
// error text becomes the drop reason in the report.
func (c *SetupCalculator) Derive(intraday *contracts.Series) (*contracts.TradeSetup, error) {
	if seriesLen(intraday) < setupMinBars {
		return nil, errors.New(contracts.ReasonInsufficientHistory)
	}
	ema9 := intraday.Latest(indicators.ColEMA9)
	ema20 := intraday.Latest(indicators.ColEMA20)
	if math.IsNaN(ema9) || math.IsNaN(ema20) {
		var missing []string
		if math.IsNaN(ema9) {
			missing = append(missing, indicators.ColEMA9)
		}
		if math.IsNaN(ema20) {
			missing = append(missing, indicators.ColEMA20)
		}
		return nil, fmt.Errorf("%s: %s", contracts.ReasonIndicatorMissing, strings.Join(missing, ", "))
	}

	swingLow := indicators.SwingLow(intraday.Lows(), c.lookback)
	stop := swingLow * swingLowStopFactor
	atr := intraday.Latest(indicators.ColATR14)
	if !math.IsNaN(atr) && atr > 0 {
		if volStop := ema9 - c.atrMult*atr; volStop > stop {
			stop = volStop
		}
	}

	setup := &contracts.TradeSetup{
		EntryFast: ema9,
		EntrySlow: ema20,
		Stop:      stop,
		SwingLow:  swingLow,
	}
	setup.Risk = ema9 - stop
	if setup.Risk > 0 {
		setup.TargetFast = ema9 + setup.Risk*c.rewardMult
		setup.Reward = setup.TargetFast - ema9
		setup.RiskReward = setup.Reward / setup.Risk
		setup.StopDistancePct = setup.Risk / ema9 * 100
	}
	if riskSlow := ema20 - stop; riskSlow > 0 {
		setup.TargetSlow = ema20 + riskSlow*c.rewardMult
	}
	return setup, nil
}
