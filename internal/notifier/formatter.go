package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ForexSentinel/internal/model"
)

// price renders a quote with five decimals, the usual precision of major pairs.
func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(5)
}

func pct(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(0) + "%"
}

func action(t model.SignalType) string {
	switch t {
	case model.SignalBuy:
		return "COMPRA"
	case model.SignalSell:
		return "VENDA"
	default:
		return "NEUTRO"
	}
}

func arrow(t model.SignalType) string {
	switch t {
	case model.SignalBuy:
		return "🟢"
	case model.SignalSell:
		return "🔴"
	default:
		return "⚪"
	}
}

func barTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("02/01/2006 15:04")
}

// FormatAlert renders a composer alert with its reasons.
func FormatAlert(a *model.Alert) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b>\n", a.Message))
	for _, r := range a.Reasons {
		b.WriteString(fmt.Sprintf("  • %s\n", r))
	}
	return b.String()
}

// FormatPullback renders a breakout retest signal.
func FormatPullback(pair, timeframe string, s *model.PullbackSignal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>Pullback %s</b> | %s %s\n\n", arrow(s.Type), action(s.Type), pair, timeframe))
	b.WriteString(fmt.Sprintf("Preço: %s\n", price(s.Price)))
	b.WriteString(fmt.Sprintf("Nível: %s (ATR %s)\n", price(s.Level.Price), price(s.Level.ATR)))
	b.WriteString(fmt.Sprintf("Seta: %s\n", price(s.ArrowPrice)))
	b.WriteString(fmt.Sprintf("Confiança: %s\n", pct(s.Confidence)))
	b.WriteString(fmt.Sprintf("Candle: %s UTC\n", barTime(s.Time)))
	return b.String()
}

// FormatConfluence renders a multi-factor pullback signal with its check list.
func FormatConfluence(pair, timeframe string, s *model.ConfluenceSignal) string {
	mark := func(ok bool) string {
		if ok {
			return "✅"
		}
		return "❌"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>Confluência %s</b> | %s %s\n\n", arrow(s.Type), action(s.Type), pair, timeframe))
	b.WriteString(fmt.Sprintf("Preço: %s\n", price(s.Price)))
	b.WriteString(fmt.Sprintf("Confirmações: %d/4 | Confiança: %s\n", s.Confirmed, pct(s.Confidence)))
	b.WriteString(fmt.Sprintf("  %s EMA\n", mark(s.Checks.EMA)))
	b.WriteString(fmt.Sprintf("  %s Fibonacci\n", mark(s.Checks.Fibonacci)))
	b.WriteString(fmt.Sprintf("  %s RSI + candle\n", mark(s.Checks.RSICandle)))
	b.WriteString(fmt.Sprintf("  %s Bollinger\n", mark(s.Checks.Bollinger)))
	return b.String()
}

// FormatReport renders the latest analysis cycle for the /signal command.
func FormatReport(r *model.AnalysisReport) string {
	if r == nil || r.Bars == 0 {
		return "Nenhuma análise disponível ainda."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s %s</b> | %s UTC\n\n", r.Pair, r.Timeframe, barTime(r.Timestamp)))
	b.WriteString(fmt.Sprintf("Preço: %s\n", price(r.Price)))
	b.WriteString(fmt.Sprintf("Tendência: %s (%s)\n", r.Trend.Direction, r.Trend.Strength))
	b.WriteString(fmt.Sprintf("Suporte: %s | Resistência: %s\n\n", price(r.Levels.Support), price(r.Levels.Resistance)))

	ind := r.Indicators
	b.WriteString("📈 <b>Indicadores</b>\n")
	b.WriteString(fmt.Sprintf("  RSI: %.1f\n", ind.RSI.Current))
	b.WriteString(fmt.Sprintf("  MACD: %.5f\n", ind.MACD.Current))
	b.WriteString(fmt.Sprintf("  Stoch: %.1f / %.1f\n", ind.Stochastic.Current.K, ind.Stochastic.Current.D))
	b.WriteString(fmt.Sprintf("  ADX: %.1f | CCI: %.1f | W%%R: %.1f\n\n", ind.ADX.Current, ind.CCI.Current, ind.WilliamsR.Current))

	if len(r.Patterns) > 0 {
		names := make([]string, len(r.Patterns))
		for i, p := range r.Patterns {
			names[i] = p.Name
		}
		b.WriteString(fmt.Sprintf("🕯 Padrões: %s\n", strings.Join(names, ", ")))
	}
	b.WriteString(fmt.Sprintf("🔀 %s\n", r.Divergence.Description))

	if s := r.Signal; s != nil {
		b.WriteString(fmt.Sprintf("\n%s <b>Sinal: %s</b> | Força: %s | Confiança: %s\n",
			arrow(s.Type), action(s.Type), pct(s.Strength), pct(s.Confidence)))
		for _, reason := range s.Reasons {
			b.WriteString(fmt.Sprintf("  • %s\n", reason))
		}
	}
	return b.String()
}

// FormatHistory lists the most recent composer signals.
func FormatHistory(signals []model.TradingSignal) string {
	if len(signals) == 0 {
		return "Nenhum sinal no histórico."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Histórico de sinais</b>\n\n")
	for _, s := range signals {
		b.WriteString(fmt.Sprintf("%s %s %s @ %s | %s / %s\n",
			barTime(s.Timestamp), s.Pair, action(s.Type), price(s.Price), pct(s.Strength), pct(s.Confidence)))
	}
	return b.String()
}

// FormatStats renders the history statistics.
func FormatStats(st model.SignalStats) string {
	var b strings.Builder
	b.WriteString("📋 <b>Estatísticas</b>\n\n")
	b.WriteString(fmt.Sprintf("Total: %d (compra %d, venda %d, neutro %d)\n", st.Total, st.Buy, st.Sell, st.Neutral))
	b.WriteString(fmt.Sprintf("Força média: %.1f\n", st.AvgStrength))
	b.WriteString(fmt.Sprintf("Confiança média: %.1f\n", st.AvgConfidence))
	b.WriteString(fmt.Sprintf("Alta confiança: %.1f%%\n", st.HighConfidenceRatio))
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Comandos disponíveis:\n" +
		"/signal - última análise\n" +
		"/history - sinais recentes\n" +
		"/stats - estatísticas do histórico\n" +
		"/alerts - ligar/desligar alertas"
}
