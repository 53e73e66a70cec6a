package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ForexSentinel/internal/calculator"
	"ForexSentinel/internal/collector"
	"ForexSentinel/internal/divergence"
	"ForexSentinel/internal/pullback"
	"ForexSentinel/internal/strategy"
)

// levelAgeBars is the breakout level lifetime, in bars, used when
// breakout.max_age_minutes is unset.
const levelAgeBars = 60

// Config holds all application configuration.
type Config struct {
	Market struct {
		Pair      string  `yaml:"pair"`
		Timeframe string  `yaml:"timeframe"`
		Window    int     `yaml:"window"`
		PipSize   float64 `yaml:"pip_size"`
	} `yaml:"market"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Mock    bool   `yaml:"mock"`
	} `yaml:"data_source"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
		RunOnStart   bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`

	Indicators calculator.Params         `yaml:"indicators"`
	Divergence divergence.Config         `yaml:"divergence"`
	Breakout   pullback.BreakoutConfig   `yaml:"breakout"`
	Confluence pullback.ConfluenceConfig `yaml:"confluence"`
	Composer   strategy.Config           `yaml:"composer"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`
	History struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"history"`
	HTTP struct {
		Addr         string   `yaml:"addr"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A .env file in the working directory is loaded first when present; it never
// overrides variables already set in the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	str("FEED_BASE_URL", &c.DataSource.BaseURL)
	str("FEED_API_KEY", &c.DataSource.APIKey)
	str("HTTPS_PROXY", &c.Proxy)
	str("PAIR", &c.Market.Pair)
	str("TIMEFRAME", &c.Market.Timeframe)
	str("CRON_ANALYSIS", &c.Schedule.AnalysisCron)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("HTTP_ADDR", &c.HTTP.Addr)
	str("LOG_LEVEL", &c.Log.Level)

	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Schedule.RunOnStart = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Market.Pair == "" {
		c.Market.Pair = "EURUSD"
	}
	if c.Market.Timeframe == "" {
		c.Market.Timeframe = "H1"
	}
	if c.Market.Window == 0 {
		c.Market.Window = 200
	}
	if c.Market.PipSize == 0 {
		c.Market.PipSize = pullback.DefaultPipSize
	}
	if c.Schedule.AnalysisCron == "" {
		c.Schedule.AnalysisCron = "@every 30s"
	}
	if c.History.StateFile == "" {
		c.History.StateFile = "data/signal_history.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/forex_sentinel.db"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "forexsentinel:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Indicators = c.Indicators.WithDefaults()
	c.Divergence = c.Divergence.WithDefaults()
	c.Composer = c.Composer.WithDefaults()
	c.Breakout.PipSize = c.Market.PipSize
	c.Confluence.PipSize = c.Market.PipSize
	if c.Breakout.MaxAgeMinutes == 0 {
		if d, err := collector.TimeframeDuration(c.Market.Timeframe); err == nil {
			c.Breakout.MaxAgeMinutes = levelAgeBars * int(d/time.Minute)
		}
	}
	c.Breakout = c.Breakout.WithDefaults()
	c.Confluence = c.Confluence.WithDefaults()
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Market.Pair == "" {
		return fmt.Errorf("market.pair is required")
	}
	tf, err := collector.TimeframeDuration(c.Market.Timeframe)
	if err != nil {
		return fmt.Errorf("market.timeframe: %w", err)
	}
	if need := c.minWindow(); c.Market.Window < need {
		return fmt.Errorf("market.window must be at least %d", need)
	}
	if c.Market.PipSize <= 0 {
		return fmt.Errorf("market.pip_size must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be below indicators.macd_slow")
	}
	if time.Duration(c.Breakout.MaxAgeMinutes)*time.Minute < 2*tf {
		return fmt.Errorf("breakout.max_age_minutes must cover at least 2 bars of %s", c.Market.Timeframe)
	}
	if c.Breakout.EMAFast >= c.Breakout.EMASlow {
		return fmt.Errorf("breakout.ema_fast must be below breakout.ema_slow")
	}
	if c.Confluence.EMAFast >= c.Confluence.EMASlow {
		return fmt.Errorf("confluence.ema_fast must be below confluence.ema_slow")
	}
	if c.Confluence.MinConfirmations > 4 {
		return fmt.Errorf("confluence.min_confirmations must be at most 4")
	}
	if c.Composer.AlertThreshold > 100 || c.Composer.HistoryThreshold > 100 {
		return fmt.Errorf("composer thresholds must be at most 100")
	}
	return nil
}

// minWindow is the smallest bar window on which every engine can fire.
func (c *Config) minWindow() int {
	return max(
		c.Breakout.MinBars(),
		c.Confluence.MinBars(),
		c.Indicators.MACDSlow+c.Indicators.MACDSignal,
		c.Divergence.Lookback+c.Indicators.RSIPeriod+1,
	)
}
