package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ForexSentinel/internal/model"
)

func TestFormatPullback(t *testing.T) {
	msg := FormatPullback("EURUSD", "M15", &model.PullbackSignal{
		Type:       model.SignalBuy,
		Price:      1.0851234,
		Time:       1700000000000,
		ArrowPrice: 1.0841,
		Confidence: 65,
		Level:      model.PullbackLevel{Price: 1.085, ATR: 0.00042},
	})

	assert.Contains(t, msg, "Pullback COMPRA")
	assert.Contains(t, msg, "Preço: 1.08512")
	assert.Contains(t, msg, "Nível: 1.08500 (ATR 0.00042)")
	assert.Contains(t, msg, "Seta: 1.08410")
	assert.Contains(t, msg, "Confiança: 65%")
	assert.Contains(t, msg, "14/11/2023 22:13 UTC")
}

func TestFormatConfluence(t *testing.T) {
	msg := FormatConfluence("EURUSD", "H1", &model.ConfluenceSignal{
		Type:       model.SignalSell,
		Price:      1.1,
		Confirmed:  3,
		Checks:     model.ConfluenceChecks{EMA: true, Fibonacci: true, Bollinger: true},
		Confidence: 80,
	})

	assert.Contains(t, msg, "Confluência VENDA")
	assert.Contains(t, msg, "Confirmações: 3/4 | Confiança: 80%")
	assert.Contains(t, msg, "✅ EMA")
	assert.Contains(t, msg, "❌ RSI + candle")
}

func TestFormatReport(t *testing.T) {
	assert.Equal(t, "Nenhuma análise disponível ainda.", FormatReport(nil))
	assert.Equal(t, "Nenhuma análise disponível ainda.", FormatReport(&model.AnalysisReport{}))

	r := &model.AnalysisReport{
		Pair:       "EURUSD",
		Timeframe:  "H1",
		Timestamp:  1700000000000,
		Price:      1.085,
		Bars:       200,
		Trend:      model.Trend{Direction: "bullish", Strength: "strong"},
		Levels:     model.Levels{Support: 1.08, Resistance: 1.09},
		Patterns:   []model.Pattern{{Name: "Hammer"}, {Name: "Doji"}},
		Divergence: model.DivergenceSummary{Description: "Nenhuma divergência"},
		Signal: &model.TradingSignal{
			Type:       model.SignalBuy,
			Strength:   72,
			Confidence: 64.4,
			Reasons:    []string{"MACD positivo"},
		},
	}
	msg := FormatReport(r)
	assert.Contains(t, msg, "EURUSD H1")
	assert.Contains(t, msg, "Tendência: bullish (strong)")
	assert.Contains(t, msg, "Suporte: 1.08000 | Resistência: 1.09000")
	assert.Contains(t, msg, "Padrões: Hammer, Doji")
	assert.Contains(t, msg, "Nenhuma divergência")
	assert.Contains(t, msg, "Sinal: COMPRA</b> | Força: 72% | Confiança: 64%")
	assert.Contains(t, msg, "• MACD positivo")
}

func TestFormatHistoryAndStats(t *testing.T) {
	assert.Equal(t, "Nenhum sinal no histórico.", FormatHistory(nil))

	msg := FormatHistory([]model.TradingSignal{
		{Timestamp: 1700000000000, Pair: "EURUSD", Type: model.SignalSell, Price: 1.08501, Strength: 30, Confidence: 72.5},
	})
	assert.Contains(t, msg, "14/11/2023 22:13 EURUSD VENDA @ 1.08501 | 30% / 73%")

	st := FormatStats(model.SignalStats{Total: 4, Buy: 2, Sell: 1, Neutral: 1, AvgStrength: 61.25, AvgConfidence: 70, HighConfidenceRatio: 0})
	assert.Contains(t, st, "Total: 4 (compra 2, venda 1, neutro 1)")
	assert.Contains(t, st, "Força média: 61.2")
}

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert(&model.Alert{Message: "🚨 SINAL VENDA - EURUSD", Reasons: []string{"a", "b"}})
	assert.True(t, strings.HasPrefix(msg, "<b>🚨 SINAL VENDA - EURUSD</b>\n"))
	assert.Equal(t, 2, strings.Count(msg, "•"))
}

// fakeTelegram answers sendMessage, failing the first `fail` calls.
type fakeTelegram struct {
	mu    sync.Mutex
	calls int
	fail  int
	texts []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
		w.Write([]byte(`{"ok":true,"result":[]}`))
		return
	}
	f.calls++
	if f.calls <= f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"ok":false,"error_code":500,"description":"internal"}`))
		return
	}
	_ = r.ParseMultipartForm(1 << 20)
	f.texts = append(f.texts, r.FormValue("text"))
	w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier(TelegramOptions{BotToken: "123:test", ChatID: "42", ServerURL: srv.URL})
	require.NoError(t, err)
	n.retryBase = time.Millisecond
	return n
}

func TestTelegramNotifier_Send(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.Send(context.Background(), "olá"))
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, []string{"olá"}, fake.texts)
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	fake := &fakeTelegram{fail: 2}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.SendWithRetry(context.Background(), "retry", 3))
	assert.Equal(t, 3, fake.calls)

	fake = &fakeTelegram{fail: 10}
	n = newTestNotifier(t, fake)
	err := n.SendWithRetry(context.Background(), "retry", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
	assert.Equal(t, 2, fake.calls)
}

func TestTelegramNotifier_SendWithRetryCancelled(t *testing.T) {
	fake := &fakeTelegram{fail: 10}
	n := newTestNotifier(t, fake)
	n.retryBase = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "x", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
