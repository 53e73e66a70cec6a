// Package api exposes the latest analysis and the signal history over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ForexSentinel/internal/analysis"
	"ForexSentinel/internal/model"
)

// ReportSource provides the report of the last analysis cycle.
type ReportSource interface {
	Latest() *model.AnalysisReport
}

type Config struct {
	Addr         string
	AllowOrigins []string
	ReleaseMode  bool
}

type Server struct {
	router   *gin.Engine
	http     *http.Server
	reports  ReportSource
	analyzer *analysis.Analyzer
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(cfg Config, reports ReportSource, an *analysis.Analyzer) *Server {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		router:   router,
		reports:  reports,
		analyzer: an,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.GET("/report", s.handleReport)
	v1.GET("/signals", s.handleSignals)
	v1.GET("/signals/stats", s.handleStats)
	v1.GET("/signals/export.csv", s.handleExport)
	v1.POST("/alerts/toggle", s.handleToggleAlerts)
	v1.GET("/pullback/levels", s.handleLevels)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("component", "api").Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("component", "api").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"pair":      s.analyzer.Pair(),
		"timeframe": s.analyzer.Timeframe(),
	})
}

func (s *Server) handleReport(c *gin.Context) {
	report := s.reports.Latest()
	if report == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no analysis available yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleSignals(c *gin.Context) {
	typ := c.DefaultQuery("type", "all")
	switch typ {
	case "all", string(model.SignalBuy), string(model.SignalSell), string(model.SignalNeutral):
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be buy, sell, neutral or all"})
		return
	}

	signals := s.analyzer.Composer().Filter(typ)
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		signals = signals[:min(limit, len(signals))]
	}

	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.analyzer.Composer().Statistics())
}

func (s *Server) handleExport(c *gin.Context) {
	filename := fmt.Sprintf("forex_signals_%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := s.analyzer.Composer().ExportCSV(c.Writer); err != nil {
		log.Error().Err(err).Str("component", "api").Msg("export csv")
	}
}

func (s *Server) handleToggleAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts_enabled": s.analyzer.Composer().ToggleAlerts()})
}

func (s *Server) handleLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"levels":     s.analyzer.Breakout().Levels(),
		"breakout":   s.analyzer.Breakout().Stats(),
		"confluence": s.analyzer.Confluence().Stats(),
	})
}
