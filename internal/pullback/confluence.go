package pullback

import (
	"math"
	"sync"

	"ForexSentinel/internal/calculator"
	"ForexSentinel/internal/model"
)

// ConfluenceEngine emits a pullback signal when enough of four independent
// checks agree on the latest bar: EMA touch, Fibonacci retracement, RSI with
// a rejection wick, and a Bollinger return to the mean. Emissions are spaced
// by the configured cooldown measured in bar time.
type ConfluenceEngine struct {
	mu         sync.Mutex
	cfg        ConfluenceConfig
	signals    []model.ConfluenceSignal
	logCap     int
	lastSignal int64
	emitted    bool
}

// NewConfluenceEngine creates an engine with cfg, zero fields taking defaults.
func NewConfluenceEngine(cfg ConfluenceConfig) *ConfluenceEngine {
	return &ConfluenceEngine{cfg: cfg.WithDefaults(), logCap: signalLogCap}
}

// Evaluate runs the four checks on the latest bar without touching the
// cooldown or the signal log. Nil means fewer than the minimum confirmed or
// the series is too short.
func (e *ConfluenceEngine) Evaluate(bars []model.Bar) *model.ConfluenceSignal {
	e.mu.Lock()
	cfg := e.cfg
	e.mu.Unlock()
	return evaluate(bars, cfg)
}

// Analyze evaluates the latest bar and records the signal unless it falls
// inside the cooldown window of the previous emission.
func (e *ConfluenceEngine) Analyze(bars []model.Bar) *model.ConfluenceSignal {
	e.mu.Lock()
	defer e.mu.Unlock()

	sig := evaluate(bars, e.cfg)
	if sig == nil {
		return nil
	}
	if e.emitted && sig.Time-e.lastSignal <= e.cfg.Cooldown.Milliseconds() {
		return nil
	}

	e.signals = appendCapped(e.signals, *sig, e.logCap)
	e.lastSignal = sig.Time
	e.emitted = true
	return sig
}

func evaluate(bars []model.Bar, cfg ConfluenceConfig) *model.ConfluenceSignal {
	if len(bars) < cfg.MinBars() {
		return nil
	}
	cur := bars[len(bars)-1]

	up, emaTouch, ok := checkEMA(bars, cur, cfg)
	if !ok {
		return nil
	}

	checks := model.ConfluenceChecks{
		EMA:       emaTouch,
		Fibonacci: checkFibonacci(bars, cur, up, cfg),
		RSICandle: checkRSICandle(bars, cur, up, cfg),
		Bollinger: checkBollinger(bars, cur, cfg),
	}

	confirmed := checks.Count()
	if confirmed < cfg.MinConfirmations {
		return nil
	}

	sigType := model.SignalSell
	if up {
		sigType = model.SignalBuy
	}
	return &model.ConfluenceSignal{
		Type:       sigType,
		Price:      cur.Close,
		Time:       cur.Timestamp,
		Confirmed:  confirmed,
		Checks:     checks,
		Confidence: confluenceConfidence(checks),
		Bar:        cur,
	}
}

// checkEMA reports the trend (up when EMA fast is above EMA slow) and whether
// the close sits within the touch tolerance of EMA fast.
func checkEMA(bars []model.Bar, cur model.Bar, cfg ConfluenceConfig) (up, touch, ok bool) {
	closes := model.Closes(bars)
	fast := calculator.EMAOf(closes, cfg.EMAFast)
	slow := calculator.EMAOf(closes, cfg.EMASlow)
	if len(fast) == 0 || len(slow) == 0 {
		return false, false, false
	}
	emaFast, emaSlow := fast[len(fast)-1], slow[len(slow)-1]

	up = emaFast > emaSlow
	touch = math.Abs(cur.Close-emaFast)/cfg.PipSize <= cfg.EMATouchPips
	return up, touch, true
}

// checkFibonacci tests the close against the 50% and 61.8% retracements of
// the impulse range, measured from the low in an uptrend and from the high
// in a downtrend.
func checkFibonacci(bars []model.Bar, cur model.Bar, up bool, cfg ConfluenceConfig) bool {
	lookback := min(cfg.LookbackImpulse, len(bars)-1)
	window := bars[len(bars)-lookback:]

	highest, lowest := math.Inf(-1), math.Inf(1)
	for _, b := range window {
		highest = math.Max(highest, b.High)
		lowest = math.Min(lowest, b.Low)
	}
	if highest <= lowest {
		return false
	}

	rng := highest - lowest
	tolerance := cfg.FibTolerancePips * cfg.PipSize

	var fib50, fib618 float64
	if up {
		fib50, fib618 = lowest+rng*0.5, lowest+rng*0.618
	} else {
		fib50, fib618 = highest-rng*0.5, highest-rng*0.618
	}
	return math.Abs(cur.Close-fib50) <= tolerance || math.Abs(cur.Close-fib618) <= tolerance
}

// checkRSICandle wants a rejection wick longer than WickFactor% of the body
// on the trend side and RSI not yet stretched in the trend direction.
func checkRSICandle(bars []model.Bar, cur model.Bar, up bool, cfg ConfluenceConfig) bool {
	rsi := calculator.CalculateRSI(bars, cfg.RSIPeriod)
	if len(rsi.Values) == 0 {
		return false
	}

	body := math.Max(cur.Body(), 0.00001)
	minWick := body * cfg.WickFactor / 100

	if up {
		return cur.LowerShadow() > minWick && rsi.Current < 55
	}
	return cur.UpperShadow() > minWick && rsi.Current > 45
}

// checkBollinger wants an outer band pierced by one of the previous
// BBCheckBars bars and the close back near the middle band.
func checkBollinger(bars []model.Bar, cur model.Bar, cfg ConfluenceConfig) bool {
	bb := calculator.CalculateBollinger(bars, cfg.BBPeriod, cfg.BBDeviation)
	if len(bb.Middle) == 0 {
		return false
	}
	band := bb.Current
	if band.Upper <= band.Lower {
		return false
	}

	touchedOuter := false
	checkBars := min(cfg.BBCheckBars, len(bars)-1)
	for i := 1; i <= checkBars; i++ {
		b := bars[len(bars)-1-i]
		if b.High > band.Upper || b.Low < band.Lower {
			touchedOuter = true
			break
		}
	}

	nearMiddle := math.Abs(cur.Close-band.Middle) <= cfg.BBTouchPips*cfg.PipSize
	return touchedOuter && nearMiddle
}

// confluenceConfidence is 40 plus 15 per confirmed check, with bonuses for all
// four and for the EMA+Fibonacci and RSI+Bollinger pairs, capped at 95.
func confluenceConfidence(c model.ConfluenceChecks) float64 {
	n := c.Count()
	confidence := 40 + float64(n)*15
	if n == 4 {
		confidence += 10
	}
	if c.EMA && c.Fibonacci {
		confidence += 5
	}
	if c.RSICandle && c.Bollinger {
		confidence += 5
	}
	return math.Min(confidence, 95)
}

// Signals returns a copy of the most recent signals, oldest first. The log
// keeps at most signalLogCap entries.
func (e *ConfluenceEngine) Signals() []model.ConfluenceSignal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.ConfluenceSignal{}, e.signals...)
}

func (e *ConfluenceEngine) Stats() model.PullbackStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := model.PullbackStats{TotalSignals: len(e.signals)}
	var conf, confirmed float64
	for _, s := range e.signals {
		switch s.Type {
		case model.SignalBuy:
			st.BuySignals++
		case model.SignalSell:
			st.SellSignals++
		}
		conf += s.Confidence
		confirmed += float64(s.Confirmed)
	}
	if n := float64(len(e.signals)); n > 0 {
		st.AverageConfidence = conf / n
		st.AverageConfirmed = confirmed / n
	}
	return st
}

// Reset drops the signal log and the cooldown.
func (e *ConfluenceEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signals = nil
	e.lastSignal = 0
	e.emitted = false
}

func (e *ConfluenceEngine) Config() ConfluenceConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// UpdateConfig replaces the configuration; zero fields take defaults.
func (e *ConfluenceEngine) UpdateConfig(cfg ConfluenceConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg.WithDefaults()
}
