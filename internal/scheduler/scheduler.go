package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"ForexSentinel/internal/analysis"
	"ForexSentinel/internal/collector"
	"ForexSentinel/internal/history"
	"ForexSentinel/internal/model"
	"ForexSentinel/internal/notifier"
	"ForexSentinel/internal/recorder"
)

const (
	sendRetries  = 3
	historyShown = 10
)

// Sender delivers a formatted message to the operator.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the analysis cycle on a cron schedule and fans its results
// out to the notifier, the recorder and the history store.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Analyzer  *analysis.Analyzer
	Notifier  Sender // nil logs messages instead
	Recorder  recorder.Recorder
	History   history.Store
	Ctx       context.Context

	runMu            sync.Mutex
	mu               sync.RWMutex
	latest           *model.AnalysisReport
	lastSignalAt     int64
	lastAlertAt      int64
	lastDivergenceAt int64
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, an *analysis.Analyzer, n Sender, rec recorder.Recorder, store history.Store) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Collector: col,
		Analyzer:  an,
		Notifier:  n,
		Recorder:  rec,
		History:   store,
		Ctx:       ctx,
	}
}

// RegisterAll registers the analysis task.
func (s *Scheduler) RegisterAll(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.analysisTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Str("component", "scheduler").Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Str("component", "scheduler").Msg("scheduler stopped")
}

// RestoreHistory loads the persisted signal history into the composer.
// A missing history is not an error.
func (s *Scheduler) RestoreHistory() error {
	signals, err := s.History.Load(s.Ctx, s.Analyzer.Pair(), s.Analyzer.Timeframe())
	if errors.Is(err, history.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	s.Analyzer.Composer().RestoreHistory(signals)
	log.Info().Str("component", "scheduler").Int("signals", len(signals)).Msg("signal history restored")
	return nil
}

// RunNow executes one analysis cycle immediately.
func (s *Scheduler) RunNow() {
	s.analysisTask()
}

// Latest returns the report of the last completed cycle, or nil.
func (s *Scheduler) Latest() *model.AnalysisReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Scheduler) analysisTask() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	bars, err := s.Collector.Refresh(s.Ctx)
	if err != nil {
		log.Error().Err(err).Str("component", "scheduler").Msg("collect bars")
		return
	}

	report := s.Analyzer.Run(bars)

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()

	logEvt := log.Debug().Str("component", "scheduler").Int("bars", report.Bars).Float64("price", report.Price)
	if report.Signal != nil {
		logEvt = logEvt.Str("signal", string(report.Signal.Type)).Float64("strength", report.Signal.Strength)
	}
	logEvt.Msg("analysis cycle done")

	s.dispatch(report)
}

// dispatch persists and announces what a cycle produced. Signals and alerts
// go out once per bar; the history is saved whenever its head changed.
// Failures are logged and never abort the cycle.
func (s *Scheduler) dispatch(report *model.AnalysisReport) {
	evt := recorder.Event{Pair: report.Pair, Timeframe: report.Timeframe}

	if sig := report.Signal; sig != nil && s.enteredHistory(sig) {
		if report.Timestamp > s.lastSignalAt {
			s.lastSignalAt = report.Timestamp
			if err := s.Recorder.RecordSignal(sig); err != nil {
				log.Error().Err(err).Str("component", "scheduler").Msg("record signal")
			}
		}
		if err := s.History.Save(s.Ctx, report.Pair, report.Timeframe, s.Analyzer.Composer().History()); err != nil {
			log.Error().Err(err).Str("component", "scheduler").Msg("persist history")
		}
	}

	if report.Alert != nil && report.Timestamp > s.lastAlertAt {
		s.lastAlertAt = report.Timestamp
		s.trySend(notifier.FormatAlert(report.Alert))
	}

	for i := range report.Pullbacks {
		p := &report.Pullbacks[i]
		if err := s.Recorder.RecordPullback(evt, p); err != nil {
			log.Error().Err(err).Str("component", "scheduler").Msg("record pullback")
		}
		s.trySend(notifier.FormatPullback(report.Pair, report.Timeframe, p))
	}

	if c := report.Confluence; c != nil {
		if err := s.Recorder.RecordConfluence(evt, c); err != nil {
			log.Error().Err(err).Str("component", "scheduler").Msg("record confluence")
		}
		s.trySend(notifier.FormatConfluence(report.Pair, report.Timeframe, c))
	}

	if report.Divergence.HasDivergence && report.Timestamp != s.lastDivergenceAt {
		s.lastDivergenceAt = report.Timestamp
		if err := s.Recorder.RecordDivergence(&recorder.DivergenceEvent{
			Event:   evt,
			BarTime: report.Timestamp,
			Summary: report.Divergence,
		}); err != nil {
			log.Error().Err(err).Str("component", "scheduler").Msg("record divergence")
		}
	}
}

func (s *Scheduler) enteredHistory(sig *model.TradingSignal) bool {
	recent := s.Analyzer.Composer().Recent(1)
	return len(recent) == 1 && recent[0].ID == sig.ID
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	cmd, _, _ := strings.Cut(strings.TrimSpace(command), " ")
	// Strip the bot mention Telegram appends in group chats.
	cmd, _, _ = strings.Cut(cmd, "@")

	composer := s.Analyzer.Composer()
	switch strings.ToLower(cmd) {
	case "/signal":
		return notifier.FormatReport(s.Latest())
	case "/history":
		return notifier.FormatHistory(composer.Recent(historyShown))
	case "/stats":
		return notifier.FormatStats(composer.Statistics())
	case "/alerts":
		if composer.ToggleAlerts() {
			return "🔔 Alertas ativados"
		}
		return "🔕 Alertas desativados"
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Info().Str("component", "scheduler").Msg(text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Error().Err(err).Str("component", "scheduler").Msg("send notification")
	}
}
