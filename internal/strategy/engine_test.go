package strategy

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"ForexSentinel/internal/calculator"
	"ForexSentinel/internal/model"
)

func fixedComposer(cfg Config) *Composer {
	c := NewComposer(cfg)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func baseSnapshot() model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		RSI:        model.RSIResult{Current: 50},
		MACD:       model.MACDResult{Current: -0.0001},
		Bollinger:  model.BollingerResult{Current: model.BandValue{Upper: 1.2, Middle: 1.1, Lower: 1.0}},
		Stochastic: model.StochasticResult{Current: model.StochasticValue{K: 50, D: 50}},
		ADX:        model.ADXResult{Current: 20},
	}
}

func strongBuySnapshot() model.IndicatorSnapshot {
	ind := baseSnapshot()
	ind.RSI.Current = 10
	ind.MACD = model.MACDResult{Current: 0.001, Histogram: []float64{-0.001, 0.001}}
	ind.Stochastic.Current = model.StochasticValue{K: 10, D: 5}
	ind.ADX.Current = 30
	return ind
}

func bullishPatterns() []model.Pattern {
	p := model.Pattern{Name: "Bullish Engulfing", Type: model.PatternBullishReversal, Reliability: model.ReliabilityHigh}
	return []model.Pattern{p, p, p}
}

func hasReason(sig *model.TradingSignal, substr string) bool {
	for _, r := range sig.Reasons {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

func TestCompose_EmptySeries(t *testing.T) {
	c := fixedComposer(Config{})
	if sig := c.Compose("EURUSD", "H1", nil, baseSnapshot(), nil); sig != nil {
		t.Fatalf("expected nil signal, got %+v", sig)
	}
}

func TestCompose_OversoldSeries(t *testing.T) {
	bars := make([]model.Bar, 30)
	for i := range bars {
		c := 1.1300 - 0.001*float64(i)
		bars[i] = model.Bar{Timestamp: int64(i) * 3600000, Open: c + 0.0008, High: c + 0.001, Low: c - 0.0002, Close: c}
	}
	ind := calculator.CalculateAll(bars)
	if ind.RSI.Current > 30 {
		t.Fatalf("expected RSI <= 30, got %.2f", ind.RSI.Current)
	}

	sig := fixedComposer(Config{}).Compose("EURUSD", "H1", bars, ind, nil)
	if sig == nil {
		t.Fatal("expected non-nil signal")
	}
	if !hasReason(sig, "sobrevenda") {
		t.Errorf("expected an oversold reason, got %v", sig.Reasons)
	}
	if sig.Reasons[0] != "RSI em sobrevenda (<30)" {
		t.Errorf("expected RSI reason first, got %q", sig.Reasons[0])
	}
}

func TestCompose_NeutralHandComputed(t *testing.T) {
	bars := []model.Bar{{Open: 1.14, High: 1.16, Low: 1.13, Close: 1.15}}
	c := fixedComposer(Config{})

	sig := c.Compose("EURUSD", "H1", bars, baseSnapshot(), nil)
	// MACD negativo -10, acima da média +5, ADX fraco -10 confidence
	if sig.Strength != 45 {
		t.Errorf("expected strength 45, got %.2f", sig.Strength)
	}
	if math.Abs(sig.Confidence-2) > 1e-9 {
		t.Errorf("expected confidence 2, got %.4f", sig.Confidence)
	}
	if sig.Type != model.SignalNeutral {
		t.Errorf("expected neutral, got %s", sig.Type)
	}
	if sig.Technical.BollingerPosition != model.BandUpperMiddle {
		t.Errorf("expected upper_middle, got %s", sig.Technical.BollingerPosition)
	}
	if len(sig.Reasons) != 3 {
		t.Errorf("expected 3 reasons, got %v", sig.Reasons)
	}
	if len(c.History()) != 0 {
		t.Error("signal below threshold must not enter history")
	}
}

func TestCompose_ClampedStrongBuy(t *testing.T) {
	bars := []model.Bar{{Open: 0.995, High: 0.996, Low: 0.985, Close: 0.99}}
	c := fixedComposer(Config{})

	sig := c.Compose("EURUSD", "H1", bars, strongBuySnapshot(), bullishPatterns())
	if sig.Strength != 100 || sig.Confidence != 100 {
		t.Errorf("expected clamped 100/100, got %.2f/%.2f", sig.Strength, sig.Confidence)
	}
	if sig.Type != model.SignalBuy {
		t.Errorf("expected buy, got %s", sig.Type)
	}
	if sig.Timestamp != 1700000000000 {
		t.Errorf("unexpected timestamp %d", sig.Timestamp)
	}
	if h := c.History(); len(h) != 1 || h[0].ID != sig.ID {
		t.Errorf("expected signal in history, got %d entries", len(h))
	}
}

func TestCompose_UndirectedPatternOnlyAddsReason(t *testing.T) {
	bars := []model.Bar{{Open: 1.14, High: 1.16, Low: 1.13, Close: 1.15}}
	doji := model.Pattern{Name: "Doji", Type: model.PatternReversal, Reliability: model.ReliabilityMedium}

	sig := fixedComposer(Config{}).Compose("EURUSD", "H1", bars, baseSnapshot(), []model.Pattern{doji})
	if sig.Strength != 45 {
		t.Errorf("undirected pattern moved strength to %.2f", sig.Strength)
	}
	if !hasReason(sig, "Padrão: Doji") {
		t.Errorf("expected pattern reason, got %v", sig.Reasons)
	}
	// four reasons earn the +10 confidence bonus
	if math.Abs(sig.Confidence-12) > 1e-9 {
		t.Errorf("expected confidence 12, got %.4f", sig.Confidence)
	}
}

func TestScoreStochastic_RulesAreIndependent(t *testing.T) {
	sc := &scorecard{}
	scoreStochastic(sc, model.StochasticValue{K: 90, D: 85})
	if len(sc.reasons) != 2 {
		t.Fatalf("expected zone and crossover reasons, got %v", sc.reasons)
	}
	if sc.strength != -2 {
		t.Errorf("expected -10+8=-2, got %.2f", sc.strength)
	}
}

func TestScoreMACD_Crossover(t *testing.T) {
	tests := []struct {
		name string
		hist []float64
		want float64
	}{
		{"bullish cross", []float64{-0.1, 0.1}, 30},
		{"bearish cross", []float64{0.1, -0.1}, -10},
		{"no cross", []float64{0.1, 0.2}, 10},
		{"single point", []float64{0.1}, 10},
	}
	for _, tt := range tests {
		sc := &scorecard{}
		scoreMACD(sc, model.MACDResult{Current: 1, Histogram: tt.hist})
		if sc.strength != tt.want {
			t.Errorf("%s: expected %.0f, got %.0f", tt.name, tt.want, sc.strength)
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		strength float64
		want     model.SignalType
	}{
		{100, model.SignalBuy},
		{65, model.SignalBuy},
		{64.9, model.SignalNeutral},
		{50, model.SignalNeutral},
		{35.1, model.SignalNeutral},
		{35, model.SignalSell},
		{0, model.SignalSell},
	}
	for _, tt := range tests {
		if got := Classify(tt.strength); got != tt.want {
			t.Errorf("strength %.1f: expected %s, got %s", tt.strength, tt.want, got)
		}
	}
}

func TestHistory_CapAndOrder(t *testing.T) {
	bars := []model.Bar{{Open: 0.995, High: 0.996, Low: 0.985, Close: 0.99}}
	c := fixedComposer(Config{})

	var last *model.TradingSignal
	for i := 0; i < 60; i++ {
		bars[0].Timestamp = int64(i) * time.Hour.Milliseconds()
		last = c.Compose("EURUSD", "H1", bars, strongBuySnapshot(), nil)
	}
	h := c.History()
	if len(h) != 50 {
		t.Fatalf("expected 50 retained signals, got %d", len(h))
	}
	if h[0].ID != last.ID {
		t.Error("expected most recent signal first")
	}
	if got := c.Recent(10); len(got) != 10 || got[0].ID != last.ID {
		t.Errorf("unexpected Recent(10): %d entries", len(got))
	}
	if got := c.Recent(100); len(got) != 50 {
		t.Errorf("expected Recent to cap at history length, got %d", len(got))
	}
}

func TestHistory_SameBarReplacesHead(t *testing.T) {
	bars := []model.Bar{{Timestamp: 1699999200000, Open: 0.995, High: 0.996, Low: 0.985, Close: 0.99}}
	c := fixedComposer(Config{})

	first := c.Compose("EURUSD", "H1", bars, strongBuySnapshot(), nil)
	for i := 0; i < 59; i++ {
		bars[0].Close = 0.99 + float64(i)*0.00001
		sig := c.Compose("EURUSD", "H1", bars, strongBuySnapshot(), nil)
		if sig.ID != first.ID {
			t.Fatalf("recompose of the same bar changed ID: %s != %s", sig.ID, first.ID)
		}
	}
	h := c.History()
	if len(h) != 1 {
		t.Fatalf("expected one entry for a single bar, got %d", len(h))
	}
	if h[0].BarTime != bars[0].Timestamp || h[0].Price != bars[0].Close {
		t.Errorf("head should hold the latest scoring of the bar, got %+v", h[0])
	}

	// another timeframe on the same bar time is a separate entry
	c.Compose("EURUSD", "M15", bars, strongBuySnapshot(), nil)
	bars[0].Timestamp += time.Hour.Milliseconds()
	next := c.Compose("EURUSD", "H1", bars, strongBuySnapshot(), nil)
	h = c.History()
	if len(h) != 3 || h[0].ID != next.ID || next.ID == first.ID {
		t.Errorf("expected a new head for the next bar, got %d entries", len(h))
	}
}

func TestFilterAndStatistics(t *testing.T) {
	c := fixedComposer(Config{})
	if st := c.Statistics(); st.Total != 0 || st.HighConfidenceRatio != 0 {
		t.Errorf("expected empty stats, got %+v", st)
	}

	var signals []model.TradingSignal
	for i := 0; i < 12; i++ {
		s := model.TradingSignal{Type: model.SignalBuy, Strength: 80, Confidence: 60}
		if i%2 == 0 {
			s.Type = model.SignalSell
			s.Confidence = 80
		}
		signals = append(signals, s)
	}
	c.RestoreHistory(signals)

	if got := len(c.Filter("buy")); got != 6 {
		t.Errorf("expected 6 buy signals, got %d", got)
	}
	if got := len(c.Filter("all")); got != 12 {
		t.Errorf("expected 12 signals, got %d", got)
	}

	st := c.Statistics()
	if st.Total != 12 || st.Buy != 6 || st.Sell != 6 || st.Neutral != 0 {
		t.Errorf("unexpected counts %+v", st)
	}
	if st.AvgConfidence != 70 || st.AvgStrength != 80 {
		t.Errorf("unexpected averages %+v", st)
	}
	if st.HighConfidenceRatio != 50 {
		t.Errorf("expected 50%% high confidence, got %.1f", st.HighConfidenceRatio)
	}

	c.RestoreHistory(signals[:9])
	if st := c.Statistics(); st.HighConfidenceRatio != 0 {
		t.Errorf("expected 0 below 10 signals, got %.1f", st.HighConfidenceRatio)
	}
}

func TestAlertFor(t *testing.T) {
	bars := []model.Bar{{Open: 0.995, High: 0.996, Low: 0.985, Close: 0.99}}
	c := fixedComposer(Config{})
	sig := c.Compose("EURUSD", "H1", bars, strongBuySnapshot(), bullishPatterns())

	alert := c.AlertFor(sig)
	if alert == nil {
		t.Fatal("expected alert for strength >= 70")
	}
	want := "🚨 SINAL COMPRA - EURUSD - Força: 100% - Confiança: 100%"
	if alert.Message != want {
		t.Errorf("expected %q, got %q", want, alert.Message)
	}

	if c.ToggleAlerts() {
		t.Fatal("expected alerts disabled after toggle")
	}
	if c.AlertFor(sig) != nil {
		t.Error("expected no alert while disabled")
	}

	weak := &model.TradingSignal{Strength: 69}
	c.ToggleAlerts()
	if c.AlertFor(weak) != nil {
		t.Error("expected no alert below threshold")
	}
}

func TestExportCSV(t *testing.T) {
	c := fixedComposer(Config{})
	c.RestoreHistory([]model.TradingSignal{{
		Timestamp:  1700000000000,
		Pair:       "EURUSD",
		Type:       model.SignalSell,
		Strength:   30,
		Confidence: 72.5,
		Price:      1.08501,
		Reasons:    []string{"MACD negativo", "RSI bearish (<40)"},
	}})

	var buf bytes.Buffer
	if err := c.ExportCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != "Data,Par,Tipo,Força,Confiança,Preço,Razões" {
		t.Errorf("unexpected header %q", lines[0])
	}
	want := "14/11/2023 22:13:20,EURUSD,SELL,30.00,72.50,1.08501,MACD negativo; RSI bearish (<40)"
	if lines[1] != want {
		t.Errorf("expected %q, got %q", want, lines[1])
	}
}

func TestTradingSignal_JSONRoundTrip(t *testing.T) {
	bars := []model.Bar{{Open: 0.995, High: 0.996, Low: 0.985, Close: 0.99}}
	sig := fixedComposer(Config{}).Compose("EURUSD", "H1", bars, strongBuySnapshot(), bullishPatterns())

	raw, err := json.Marshal(sig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back model.TradingSignal
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(*sig, back) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", *sig, back)
	}
	if back.Strength < 0 || back.Strength > 100 || back.Confidence < 0 || back.Confidence > 100 {
		t.Errorf("out of range after round trip: %+v", back)
	}
}
