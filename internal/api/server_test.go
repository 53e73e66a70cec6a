package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ForexSentinel/internal/analysis"
	"ForexSentinel/internal/model"
)

type staticReports struct{ report *model.AnalysisReport }

func (s staticReports) Latest() *model.AnalysisReport { return s.report }

func newTestServer(t *testing.T, report *model.AnalysisReport) (*Server, *analysis.Analyzer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	an := analysis.New(analysis.Options{Pair: "EURUSD", Timeframe: "H1"})
	an.Composer().RestoreHistory([]model.TradingSignal{
		{ID: "3", Timestamp: 1700000200000, Pair: "EURUSD", Type: model.SignalBuy, Strength: 80, Confidence: 90, Price: 1.1, Reasons: []string{"MACD positivo"}},
		{ID: "2", Timestamp: 1700000100000, Pair: "EURUSD", Type: model.SignalSell, Strength: 30, Confidence: 60, Price: 1.09, Reasons: []string{"MACD negativo"}},
		{ID: "1", Timestamp: 1700000000000, Pair: "EURUSD", Type: model.SignalBuy, Strength: 70, Confidence: 75, Price: 1.08, Reasons: []string{}},
	})
	return NewServer(Config{Addr: ":0"}, staticReports{report}, an), an
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","pair":"EURUSD","timeframe":"H1"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestReport(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/v1/report")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s, _ = newTestServer(t, &model.AnalysisReport{Pair: "EURUSD", Timeframe: "H1", Bars: 200, Price: 1.085})
	w = do(t, s, http.MethodGet, "/api/v1/report")
	require.Equal(t, http.StatusOK, w.Code)

	var got model.AnalysisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 200, got.Bars)
	assert.Equal(t, 1.085, got.Price)
}

func TestSignals(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		target string
		code   int
		ids    []string
	}{
		{"/api/v1/signals", http.StatusOK, []string{"3", "2", "1"}},
		{"/api/v1/signals?type=buy", http.StatusOK, []string{"3", "1"}},
		{"/api/v1/signals?type=sell", http.StatusOK, []string{"2"}},
		{"/api/v1/signals?type=neutral", http.StatusOK, []string{}},
		{"/api/v1/signals?limit=2", http.StatusOK, []string{"3", "2"}},
		{"/api/v1/signals?type=buy&limit=10", http.StatusOK, []string{"3", "1"}},
		{"/api/v1/signals?type=hold", http.StatusBadRequest, nil},
		{"/api/v1/signals?limit=-1", http.StatusBadRequest, nil},
		{"/api/v1/signals?limit=abc", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.target)
			require.Equal(t, tt.code, w.Code)
			if tt.ids == nil {
				return
			}
			var body struct {
				Signals []model.TradingSignal `json:"signals"`
				Count   int                   `json:"count"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			ids := []string{}
			for _, sig := range body.Signals {
				ids = append(ids, sig.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, len(tt.ids), body.Count)
		})
	}
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/v1/signals/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var st model.SignalStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Buy)
	assert.Equal(t, 1, st.Sell)
	assert.Equal(t, 60.0, st.AvgStrength)
	assert.Equal(t, 75.0, st.AvgConfidence)
}

func TestExportCSV(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/v1/signals/export.csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"forex_signals_")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Data,Par,Tipo,Força,Confiança,Preço,Razões", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "14/11/2023 22:16:40,EURUSD,BUY,80.00,90.00,1.10000"))
}

func TestToggleAlerts(t *testing.T) {
	s, an := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/api/v1/alerts/toggle")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"alerts_enabled":false}`, w.Body.String())
	assert.False(t, an.Composer().AlertsEnabled())
}

func TestLevels(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/v1/pullback/levels")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Levels     []model.PullbackLevel `json:"levels"`
		Breakout   model.PullbackStats   `json:"breakout"`
		Confluence model.PullbackStats   `json:"confluence"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Levels)
	assert.Zero(t, body.Breakout.TotalSignals)
}
