package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"ForexSentinel/internal/model"
)

// SQLiteRecorder persists emitted signals to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the API and dashboards can read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("component", "recorder").Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			pair        TEXT,
			timeframe   TEXT,
			price       REAL,
			type        TEXT,
			strength    REAL,
			confidence  REAL,
			rsi         REAL,
			macd        REAL,
			band        TEXT,
			patterns    TEXT,
			reasons     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,

		`CREATE TABLE IF NOT EXISTS pullback_signals (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at   INTEGER NOT NULL,
			pair          TEXT,
			timeframe     TEXT,
			bar_time      INTEGER,
			type          TEXT,
			price         REAL,
			arrow_price   REAL,
			confidence    REAL,
			level_id      TEXT,
			level_price   REAL,
			atr           REAL,
			breakout_size REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pullback_ts ON pullback_signals(bar_time)`,

		`CREATE TABLE IF NOT EXISTS confluence_signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			pair        TEXT,
			timeframe   TEXT,
			bar_time    INTEGER,
			type        TEXT,
			price       REAL,
			confirmed   INTEGER,
			ema         INTEGER,
			fibonacci   INTEGER,
			rsi_candle  INTEGER,
			bollinger   INTEGER,
			confidence  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_confluence_ts ON confluence_signals(bar_time)`,

		`CREATE TABLE IF NOT EXISTS divergences (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			pair        TEXT,
			timeframe   TEXT,
			bar_time    INTEGER,
			kind        TEXT,
			signal      TEXT,
			strength    REAL,
			confidence  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_divergence_ts ON divergences(bar_time)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSignal stores a composite signal. Re-recording the same id is a no-op.
func (r *SQLiteRecorder) RecordSignal(sig *model.TradingSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(sig.Technical.Patterns))
	for i, p := range sig.Technical.Patterns {
		names[i] = p.Name
	}

	_, err := r.db.Exec(`INSERT OR IGNORE INTO signals
		(id, timestamp, pair, timeframe, price, type, strength, confidence,
		 rsi, macd, band, patterns, reasons)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sig.ID, sig.Timestamp, sig.Pair, sig.Timeframe, sig.Price,
		string(sig.Type), sig.Strength, sig.Confidence,
		sig.Technical.RSI, sig.Technical.MACD, sig.Technical.BollingerPosition,
		strings.Join(names, ","), strings.Join(sig.Reasons, "; "),
	)
	return err
}

func (r *SQLiteRecorder) RecordPullback(evt Event, sig *model.PullbackSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO pullback_signals
		(recorded_at, pair, timeframe, bar_time, type, price, arrow_price, confidence,
		 level_id, level_price, atr, breakout_size)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Pair, evt.Timeframe, sig.Time, string(sig.Type),
		sig.Price, sig.ArrowPrice, sig.Confidence,
		sig.Level.ID, sig.Level.Price, sig.Level.ATR, sig.Level.BreakoutSize,
	)
	return err
}

func (r *SQLiteRecorder) RecordConfluence(evt Event, sig *model.ConfluenceSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO confluence_signals
		(recorded_at, pair, timeframe, bar_time, type, price, confirmed,
		 ema, fibonacci, rsi_candle, bollinger, confidence)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Pair, evt.Timeframe, sig.Time, string(sig.Type),
		sig.Price, sig.Confirmed,
		sig.Checks.EMA, sig.Checks.Fibonacci, sig.Checks.RSICandle, sig.Checks.Bollinger,
		sig.Confidence,
	)
	return err
}

func (r *SQLiteRecorder) RecordDivergence(evt *DivergenceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := evt.Summary
	_, err := r.db.Exec(`INSERT INTO divergences
		(recorded_at, pair, timeframe, bar_time, kind, signal, strength, confidence)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Pair, evt.Timeframe, evt.BarTime,
		string(s.Kind), string(s.Signal), s.Strength, s.Confidence,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Str("component", "recorder").Msg("closing sqlite recorder")
	return r.db.Close()
}
