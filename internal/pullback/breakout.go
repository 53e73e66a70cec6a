package pullback

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"ForexSentinel/internal/calculator"
	"ForexSentinel/internal/model"
)

// BreakoutEngine registers levels broken with enough volatility and signals
// when a later bar retests one with an agreeing candle. A touched level is
// consumed. Level age is measured against the latest bar timestamp.
type BreakoutEngine struct {
	mu             sync.Mutex
	cfg            BreakoutConfig
	levels         []model.PullbackLevel
	signals        []model.PullbackSignal
	logCap         int
	lastBreakoutAt int64
	hasBreakout    bool
}

// NewBreakoutEngine creates an engine with cfg, zero fields taking defaults.
func NewBreakoutEngine(cfg BreakoutConfig) *BreakoutEngine {
	return &BreakoutEngine{cfg: cfg.WithDefaults(), logCap: signalLogCap}
}

// Analyze runs one cycle: purge expired levels, register a new breakout and
// test every active level against the latest bar. It returns the signals
// emitted by this cycle.
func (e *BreakoutEngine) Analyze(bars []model.Bar) []model.PullbackSignal {
	e.mu.Lock()
	defer e.mu.Unlock()

	latest, ok := model.Last(bars)
	if !ok {
		return nil
	}

	e.purge(latest.Timestamp)

	if lvl, ok := e.detectBreakout(bars); ok {
		e.levels = append(e.levels, lvl)
	}

	return e.checkTouch(bars)
}

func (e *BreakoutEngine) purge(now int64) {
	maxAge := int64(e.cfg.MaxAgeMinutes) * 60 * 1000
	kept := e.levels[:0]
	for _, lvl := range e.levels {
		if now-lvl.CreatedAt < maxAge {
			kept = append(kept, lvl)
		}
	}
	e.levels = kept
}

// detectBreakout looks at the last four bars c3 c2 c1 c0 and accepts a break
// of c2's extreme by c1 in the trend direction.
func (e *BreakoutEngine) detectBreakout(bars []model.Bar) (model.PullbackLevel, bool) {
	n := len(bars)
	if n < e.cfg.MinBars() {
		return model.PullbackLevel{}, false
	}
	if len(e.levels) >= e.cfg.MaxLevels {
		return model.PullbackLevel{}, false
	}

	c2, c1 := bars[n-3], bars[n-2]
	if e.hasBreakout && c1.Timestamp == e.lastBreakoutAt {
		return model.PullbackLevel{}, false
	}

	fast := calculator.EMAOf(model.Closes(bars), e.cfg.EMAFast)
	slow := calculator.EMAOf(model.Closes(bars), e.cfg.EMASlow)
	if len(fast) == 0 || len(slow) == 0 {
		return model.PullbackLevel{}, false
	}
	emaFast, emaSlow := fast[len(fast)-1], slow[len(slow)-1]

	atr := calculator.CalculateATR(bars, e.cfg.ATRPeriod)
	if atr <= 0 {
		return model.PullbackLevel{}, false
	}
	minVolatility := atr * e.cfg.ATRMinMult

	var lvl model.PullbackLevel
	switch {
	case emaFast > emaSlow && c1.High > c2.High && c1.High-c2.High >= minVolatility:
		lvl = model.PullbackLevel{Price: c2.High, Direction: 1, BreakoutSize: c1.High - c2.High}
	case emaFast < emaSlow && c1.Low < c2.Low && c2.Low-c1.Low >= minVolatility:
		lvl = model.PullbackLevel{Price: c2.Low, Direction: -1, BreakoutSize: c2.Low - c1.Low}
	default:
		return model.PullbackLevel{}, false
	}

	lvl.ID = uuid.NewString()
	lvl.CreatedAt = c1.Timestamp
	lvl.ATR = atr
	e.lastBreakoutAt = c1.Timestamp
	e.hasBreakout = true
	return lvl, true
}

func (e *BreakoutEngine) checkTouch(bars []model.Bar) []model.PullbackSignal {
	if len(bars) < 2 {
		return nil
	}
	cur := bars[len(bars)-1]

	var out []model.PullbackSignal
	for i := len(e.levels) - 1; i >= 0; i-- {
		lvl := e.levels[i]
		if cur.Low > lvl.Price || lvl.Price > cur.High {
			continue
		}

		var sig model.PullbackSignal
		switch {
		case lvl.Direction == 1 && cur.Bullish():
			sig = model.PullbackSignal{Type: model.SignalBuy, ArrowPrice: cur.Low - e.cfg.ArrowOffsetPips*e.cfg.PipSize}
		case lvl.Direction == -1 && cur.Bearish():
			sig = model.PullbackSignal{Type: model.SignalSell, ArrowPrice: cur.High + e.cfg.ArrowOffsetPips*e.cfg.PipSize}
		default:
			continue
		}
		sig.Price = lvl.Price
		sig.Time = cur.Timestamp
		sig.Level = lvl
		sig.Confidence = breakoutConfidence(lvl, cur)

		out = append(out, sig)
		e.signals = appendCapped(e.signals, sig, e.logCap)
		e.levels = append(e.levels[:i], e.levels[i+1:]...)
	}
	return out
}

// breakoutConfidence scores a retest from the breakout/ATR ratio and the body
// share of the confirming bar, capped at 95.
func breakoutConfidence(lvl model.PullbackLevel, cur model.Bar) float64 {
	confidence := 50.0

	if lvl.ATR > 0 {
		ratio := lvl.BreakoutSize / lvl.ATR
		if ratio > 0.5 {
			confidence += 15
		}
		if ratio > 1.0 {
			confidence += 10
		}
	}

	if rng := cur.Range(); rng > 0 {
		bodyRatio := cur.Body() / rng
		if bodyRatio > 0.6 {
			confidence += 15
		}
		if bodyRatio > 0.8 {
			confidence += 10
		}
	}

	return math.Min(confidence, 95)
}

// Levels returns a copy of the active levels.
func (e *BreakoutEngine) Levels() []model.PullbackLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.PullbackLevel{}, e.levels...)
}

// Signals returns a copy of the most recent signals, oldest first. The log
// keeps at most signalLogCap entries.
func (e *BreakoutEngine) Signals() []model.PullbackSignal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.PullbackSignal{}, e.signals...)
}

func (e *BreakoutEngine) Stats() model.PullbackStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := model.PullbackStats{TotalSignals: len(e.signals), ActiveLevels: len(e.levels)}
	var sum float64
	for _, s := range e.signals {
		switch s.Type {
		case model.SignalBuy:
			st.BuySignals++
		case model.SignalSell:
			st.SellSignals++
		}
		sum += s.Confidence
	}
	if len(e.signals) > 0 {
		st.AverageConfidence = sum / float64(len(e.signals))
	}
	return st
}

// Reset drops every level and signal.
func (e *BreakoutEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.levels = nil
	e.signals = nil
	e.hasBreakout = false
	e.lastBreakoutAt = 0
}

func (e *BreakoutEngine) Config() BreakoutConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// UpdateConfig replaces the configuration; zero fields take defaults.
func (e *BreakoutEngine) UpdateConfig(cfg BreakoutConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg.WithDefaults()
}
