package strategyconfig

// Built-in strategy names.
const (
	StrategySwing    = "swing"
	StrategyBreakout = "breakout"
)

// SwingProfile returns the multi-day trend continuation profile. Daily
// structure filters feed a weekly confirmation and a 15m entry window
// check; survivors get a full trade setup with quality gates.
func SwingProfile() *StrategyProfile {
	return &StrategyProfile{
		Name:          StrategySwing,
		MaxCandidates: 3,
		Timeframes:    []string{"daily", "weekly", "intraday"},
		MinHistory:    map[string]int{"daily": 200},
		Stages: []string{
			"daily_history",
			"trend_structure",
			"trend_regime",
			"trend_slope",
			"trend_strength",
			"momentum_band",
			"volatility_expansion",
			"volume_confirmation",
			"relative_strength",
			"higher_lows",
			"volume_expansion",
			"consolidation_break",
			"bullish_engulfing",
			"weekly_confirm",
			"intraday_confirm",
		},
		Thresholds: map[string]float64{
			"ema_slope_days": 5,
			"adx_min":        23,
			"rsi_min":        42,
			"rsi_max":        62,

			"atr_ratio_min":       1.15,
			"atr_ratio_period":    20,
			"volume_ratio_min":    1.0,
			"volume_ratio_period": 20,
			"rs_period":           20,

			"min_higher_lows":       2,
			"consolidation_days":    5,
			"consolidation_range":   0.03,
			"volume_expansion_days": 3,

			"weekly_min_history": 50,
			"weekly_rsi_min":     40,
			"weekly_rsi_max":     70,

			// entry confirmation window, minutes since midnight exchange time
			"confirm_start_min":          570,
			"confirm_end_min":            600,
			"intraday_min_candles":       2,
			"upper_wick_max":             0.5,
			"intraday_volume_multiplier": 1.2,

			"swing_low_lookback":          10,
			"stop_atr_multiplier":         0.7,
			"reward_multiple":             1.5,
			"min_stop_distance_pct":       0.5,
			"max_stop_distance_pct":       2.0,
			"min_risk_reward":             1.5,
			"min_resistance_distance_pct": 2.0,
			"max_support_distance_pct":    5.0,
			"sr_lookback":                 30,
		},
		Weights: map[string]int{
			"trend":             25,
			"momentum":          15,
			"relative_strength": 15,
			"volume":            10,
			"volatility":        5,
			"weekly":            10,
			"price_action":      10,
			"trade_quality":     10,
		},
		DeriveSetups: true,
	}
}

// BreakoutProfile returns the same-day opening range breakout profile.
// It trades liquid symbols only, keyed on the 09:15-09:30 range, and
// reports raw levels without a pullback setup.
func BreakoutProfile() *StrategyProfile {
	return &StrategyProfile{
		Name:          StrategyBreakout,
		MaxCandidates: 10,
		Timeframes:    []string{"daily", "intraday", "opening"},
		MinHistory:    map[string]int{"daily": 20, "intraday": 5},
		Stages: []string{
			"daily_history",
			"liquidity",
			"opening_range",
			"trend_alignment",
			"volume_spike",
			"vwap_distance",
			"volatility_floor",
		},
		Thresholds: map[string]float64{
			"min_avg_volume":        2000000,
			"avg_volume_period":     20,
			"max_spread_pct":        0.1,
			"orb_buffer_pct":        0.2,
			"volume_spike_mult":     1.5,
			"volume_spike_window":   10,
			"max_vwap_distance_pct": 0.3,
			"min_atr":               3.0,
		},
		Weights: map[string]int{
			"liquidity":       30,
			"momentum":        25,
			"vwap_setup":      20,
			"trend_alignment": 15,
			"volatility":      10,
		},
		DeriveSetups: false,
	}
}

func builtins() map[string]func() *StrategyProfile {
	return map[string]func() *StrategyProfile{
		StrategySwing:    SwingProfile,
		StrategyBreakout: BreakoutProfile,
	}
}
