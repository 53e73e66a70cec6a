// Package strategy fuses indicator readings and candlestick patterns into a
// scored TradingSignal and keeps a bounded most-recent-first history.
package strategy

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ForexSentinel/internal/calculator"
	"ForexSentinel/internal/model"
)

// Classification thresholds on the normalized strength.
const (
	BuyThreshold  = 65
	SellThreshold = 35
)

// Config controls history retention and alerting.
type Config struct {
	HistoryCap       int     `yaml:"history_cap"`
	HistoryThreshold float64 `yaml:"history_threshold"`
	AlertThreshold   float64 `yaml:"alert_threshold"`
	AlertsEnabled    *bool   `yaml:"alerts_enabled"`
}

func DefaultConfig() Config {
	enabled := true
	return Config{HistoryCap: 50, HistoryThreshold: 60, AlertThreshold: 70, AlertsEnabled: &enabled}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.HistoryCap <= 0 {
		c.HistoryCap = d.HistoryCap
	}
	if c.HistoryThreshold <= 0 {
		c.HistoryThreshold = d.HistoryThreshold
	}
	if c.AlertThreshold <= 0 {
		c.AlertThreshold = d.AlertThreshold
	}
	if c.AlertsEnabled == nil {
		c.AlertsEnabled = d.AlertsEnabled
	}
	return c
}

// Composer is safe for concurrent use; its history is read by the API while
// the scheduler composes.
type Composer struct {
	mu            sync.RWMutex
	cfg           Config
	alertsEnabled bool
	history       []model.TradingSignal
	now           func() time.Time
}

func NewComposer(cfg Config) *Composer {
	cfg = cfg.WithDefaults()
	return &Composer{
		cfg:           cfg,
		alertsEnabled: *cfg.AlertsEnabled,
		now:           time.Now,
	}
}

// Compose scores the latest bar. It returns nil for an empty series. Signals
// at or above the history threshold are prepended to the history; a signal
// for the bar already at the head replaces that entry and keeps its ID.
func (c *Composer) Compose(pair, timeframe string, bars []model.Bar, ind model.IndicatorSnapshot, patterns []model.Pattern) *model.TradingSignal {
	latest, ok := model.Last(bars)
	if !ok {
		return nil
	}
	if patterns == nil {
		patterns = []model.Pattern{}
	}

	sc := &scorecard{}
	scoreRSI(sc, ind.RSI.Current)
	scoreMACD(sc, ind.MACD)
	scoreBollinger(sc, latest.Close, ind.Bollinger.Current)
	scorePatterns(sc, patterns)
	scoreStochastic(sc, ind.Stochastic.Current)
	scoreADX(sc, ind.ADX.Current)

	strength := clamp(sc.strength+50, 0, 100)
	confidence := clamp(sc.confidence, 0, 100)
	switch n := len(sc.reasons); {
	case n >= 4:
		confidence += 10
	case n <= 2:
		confidence -= 15
	}
	confidence = clamp(confidence, 0, 100)

	sig := &model.TradingSignal{
		ID:         uuid.NewString(),
		Timestamp:  c.now().UnixMilli(),
		BarTime:    latest.Timestamp,
		Pair:       pair,
		Timeframe:  timeframe,
		Price:      latest.Close,
		Type:       Classify(strength),
		Strength:   strength,
		Confidence: confidence,
		Reasons:    sc.reasons,
		Technical: model.TechnicalSnapshot{
			RSI:               ind.RSI.Current,
			MACD:              ind.MACD.Current,
			BollingerPosition: calculator.BandPosition(latest.Close, ind.Bollinger.Current),
			Patterns:          patterns,
		},
	}

	if sig.Strength >= c.cfg.HistoryThreshold {
		c.mu.Lock()
		c.push(sig)
		c.mu.Unlock()
	}
	return sig
}

// Classify maps a normalized strength onto buy, sell or neutral.
func Classify(strength float64) model.SignalType {
	switch {
	case strength >= BuyThreshold:
		return model.SignalBuy
	case strength <= SellThreshold:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func (c *Composer) push(sig *model.TradingSignal) {
	if len(c.history) > 0 && sameBar(c.history[0], *sig) {
		sig.ID = c.history[0].ID
		c.history[0] = *sig
		return
	}
	c.history = append([]model.TradingSignal{*sig}, c.history...)
	if len(c.history) > c.cfg.HistoryCap {
		c.history = c.history[:c.cfg.HistoryCap]
	}
}

func sameBar(a, b model.TradingSignal) bool {
	return a.BarTime == b.BarTime && a.Pair == b.Pair && a.Timeframe == b.Timeframe
}

// History returns a copy of the retained signals, most recent first.
func (c *Composer) History() []model.TradingSignal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.TradingSignal{}, c.history...)
}

// RestoreHistory replaces the history with a persisted one, truncated to the cap.
func (c *Composer) RestoreHistory(signals []model.TradingSignal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(signals) > c.cfg.HistoryCap {
		signals = signals[:c.cfg.HistoryCap]
	}
	c.history = append([]model.TradingSignal{}, signals...)
}

// Recent returns up to n of the most recent signals.
func (c *Composer) Recent(n int) []model.TradingSignal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n = max(0, min(n, len(c.history)))
	return append([]model.TradingSignal{}, c.history[:n]...)
}

// Filter returns the signals of type t; "all" or empty returns everything.
func (c *Composer) Filter(t string) []model.TradingSignal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []model.TradingSignal{}
	for _, s := range c.history {
		if t == "" || t == "all" || string(s.Type) == t {
			out = append(out, s)
		}
	}
	return out
}

// Statistics summarizes the history. HighConfidenceRatio is the percentage of
// the last 20 signals with confidence above 70, or 0 below 10 signals.
func (c *Composer) Statistics() model.SignalStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := model.SignalStats{Total: len(c.history)}
	if st.Total == 0 {
		return st
	}

	var strength, confidence float64
	for _, s := range c.history {
		switch s.Type {
		case model.SignalBuy:
			st.Buy++
		case model.SignalSell:
			st.Sell++
		default:
			st.Neutral++
		}
		strength += s.Strength
		confidence += s.Confidence
	}
	st.AvgStrength = strength / float64(st.Total)
	st.AvgConfidence = confidence / float64(st.Total)

	if st.Total >= 10 {
		recent := c.history[:min(20, st.Total)]
		high := 0
		for _, s := range recent {
			if s.Confidence > 70 {
				high++
			}
		}
		st.HighConfidenceRatio = float64(high) / float64(len(recent)) * 100
	}
	return st
}

// AlertsEnabled reports the current alert flag.
func (c *Composer) AlertsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alertsEnabled
}

// ToggleAlerts flips the alert flag and returns the new value.
func (c *Composer) ToggleAlerts() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alertsEnabled = !c.alertsEnabled
	return c.alertsEnabled
}

// AlertFor returns the alert for sig, or nil when alerts are off or the
// signal is below the alert threshold.
func (c *Composer) AlertFor(sig *model.TradingSignal) *model.Alert {
	if sig == nil {
		return nil
	}
	c.mu.RLock()
	enabled, threshold := c.alertsEnabled, c.cfg.AlertThreshold
	c.mu.RUnlock()
	if !enabled || sig.Strength < threshold {
		return nil
	}
	return &model.Alert{
		Pair:       sig.Pair,
		Type:       sig.Type,
		Strength:   sig.Strength,
		Confidence: sig.Confidence,
		Reasons:    append([]string{}, sig.Reasons...),
		Message:    FormatAlert(sig),
	}
}

// FormatAlert renders the one-line alert text of a signal.
func FormatAlert(sig *model.TradingSignal) string {
	action := "NEUTRO"
	switch sig.Type {
	case model.SignalBuy:
		action = "COMPRA"
	case model.SignalSell:
		action = "VENDA"
	}
	return fmt.Sprintf("🚨 SINAL %s - %s - Força: %.0f%% - Confiança: %.0f%%", action, sig.Pair, sig.Strength, sig.Confidence)
}

// csvHeader matches the column names of the exported spreadsheet.
var csvHeader = []string{"Data", "Par", "Tipo", "Força", "Confiança", "Preço", "Razões"}

// ExportCSV writes the history, most recent first, as CSV.
func (c *Composer) ExportCSV(w io.Writer) error {
	history := c.History()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range history {
		row := []string{
			time.UnixMilli(s.Timestamp).UTC().Format("02/01/2006 15:04:05"),
			s.Pair,
			strings.ToUpper(string(s.Type)),
			decimal.NewFromFloat(s.Strength).StringFixed(2),
			decimal.NewFromFloat(s.Confidence).StringFixed(2),
			decimal.NewFromFloat(s.Price).StringFixed(5),
			strings.Join(s.Reasons, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
