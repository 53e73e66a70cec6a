// Package pullback implements two pullback detectors over a bar series: a
// stateful breakout/retest engine and a multi-factor confluence engine.
package pullback

import "time"

// DefaultPipSize is the pip of a four-decimal forex quote.
const DefaultPipSize = 0.0001

// signalLogCap bounds the per-engine signal log kept for Signals and Stats.
const signalLogCap = 500

// appendCapped appends v and drops the oldest entries beyond limit.
func appendCapped[T any](list []T, v T, limit int) []T {
	list = append(list, v)
	if limit > 0 && len(list) > limit {
		list = append(list[:0:0], list[len(list)-limit:]...)
	}
	return list
}

// BreakoutConfig configures a BreakoutEngine.
type BreakoutConfig struct {
	EMAFast         int     `yaml:"ema_fast" json:"ema_fast"`
	EMASlow         int     `yaml:"ema_slow" json:"ema_slow"`
	ATRPeriod       int     `yaml:"atr_period" json:"atr_period"`
	ATRMinMult      float64 `yaml:"atr_min_mult" json:"atr_min_mult"`
	MaxLevels       int     `yaml:"max_levels" json:"max_levels"`
	MaxAgeMinutes   int     `yaml:"max_age_minutes" json:"max_age_minutes"`
	ArrowOffsetPips float64 `yaml:"arrow_offset_pips" json:"arrow_offset_pips"`
	PipSize         float64 `yaml:"-" json:"pip_size"`
}

func DefaultBreakoutConfig() BreakoutConfig {
	return BreakoutConfig{
		EMAFast:         20,
		EMASlow:         50,
		ATRPeriod:       14,
		ATRMinMult:      0.2,
		MaxLevels:       5,
		MaxAgeMinutes:   60,
		ArrowOffsetPips: 10,
		PipSize:         DefaultPipSize,
	}
}

// MinBars is the shortest series on which a breakout can register.
func (c BreakoutConfig) MinBars() int {
	return max(c.EMASlow, c.ATRPeriod) + 4
}

// WithDefaults fills zero fields from DefaultBreakoutConfig.
func (c BreakoutConfig) WithDefaults() BreakoutConfig {
	d := DefaultBreakoutConfig()
	if c.EMAFast <= 0 {
		c.EMAFast = d.EMAFast
	}
	if c.EMASlow <= 0 {
		c.EMASlow = d.EMASlow
	}
	if c.ATRPeriod <= 0 {
		c.ATRPeriod = d.ATRPeriod
	}
	if c.ATRMinMult <= 0 {
		c.ATRMinMult = d.ATRMinMult
	}
	if c.MaxLevels <= 0 {
		c.MaxLevels = d.MaxLevels
	}
	if c.MaxAgeMinutes <= 0 {
		c.MaxAgeMinutes = d.MaxAgeMinutes
	}
	if c.ArrowOffsetPips <= 0 {
		c.ArrowOffsetPips = d.ArrowOffsetPips
	}
	if c.PipSize <= 0 {
		c.PipSize = d.PipSize
	}
	return c
}

// ConfluenceConfig configures a ConfluenceEngine. Tolerances are in pips.
type ConfluenceConfig struct {
	EMAFast          int           `yaml:"ema_fast" json:"ema_fast"`
	EMASlow          int           `yaml:"ema_slow" json:"ema_slow"`
	BBPeriod         int           `yaml:"bb_period" json:"bb_period"`
	BBDeviation      float64       `yaml:"bb_deviation" json:"bb_deviation"`
	RSIPeriod        int           `yaml:"rsi_period" json:"rsi_period"`
	LookbackImpulse  int           `yaml:"lookback_impulse" json:"lookback_impulse"`
	WickFactor       float64       `yaml:"wick_factor" json:"wick_factor"` // wick as % of body, 200 = 2x
	EMATouchPips     float64       `yaml:"ema_touch_pips" json:"ema_touch_pips"`
	FibTolerancePips float64       `yaml:"fib_tolerance_pips" json:"fib_tolerance_pips"`
	BBTouchPips      float64       `yaml:"bb_touch_pips" json:"bb_touch_pips"`
	BBCheckBars      int           `yaml:"bb_check_bars" json:"bb_check_bars"`
	MinConfirmations int           `yaml:"min_confirmations" json:"min_confirmations"`
	Cooldown         time.Duration `yaml:"cooldown" json:"cooldown"`
	PipSize          float64       `yaml:"-" json:"pip_size"`
}

func DefaultConfluenceConfig() ConfluenceConfig {
	return ConfluenceConfig{
		EMAFast:          20,
		EMASlow:          50,
		BBPeriod:         20,
		BBDeviation:      2.0,
		RSIPeriod:        14,
		LookbackImpulse:  60,
		WickFactor:       200,
		EMATouchPips:     8,
		FibTolerancePips: 5,
		BBTouchPips:      10,
		BBCheckBars:      10,
		MinConfirmations: 2,
		Cooldown:         60 * time.Second,
		PipSize:          DefaultPipSize,
	}
}

// MinBars is the shortest series evaluate accepts.
func (c ConfluenceConfig) MinBars() int {
	return max(c.EMASlow, c.LookbackImpulse, c.BBPeriod, c.RSIPeriod) + 10
}

// WithDefaults fills zero fields from DefaultConfluenceConfig.
func (c ConfluenceConfig) WithDefaults() ConfluenceConfig {
	d := DefaultConfluenceConfig()
	if c.EMAFast <= 0 {
		c.EMAFast = d.EMAFast
	}
	if c.EMASlow <= 0 {
		c.EMASlow = d.EMASlow
	}
	if c.BBPeriod <= 0 {
		c.BBPeriod = d.BBPeriod
	}
	if c.BBDeviation <= 0 {
		c.BBDeviation = d.BBDeviation
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.LookbackImpulse <= 0 {
		c.LookbackImpulse = d.LookbackImpulse
	}
	if c.WickFactor <= 0 {
		c.WickFactor = d.WickFactor
	}
	if c.EMATouchPips <= 0 {
		c.EMATouchPips = d.EMATouchPips
	}
	if c.FibTolerancePips <= 0 {
		c.FibTolerancePips = d.FibTolerancePips
	}
	if c.BBTouchPips <= 0 {
		c.BBTouchPips = d.BBTouchPips
	}
	if c.BBCheckBars <= 0 {
		c.BBCheckBars = d.BBCheckBars
	}
	if c.MinConfirmations <= 0 {
		c.MinConfirmations = d.MinConfirmations
	}
	if c.Cooldown <= 0 {
		c.Cooldown = d.Cooldown
	}
	if c.PipSize <= 0 {
		c.PipSize = d.PipSize
	}
	return c
}
