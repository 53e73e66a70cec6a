// Package analysis runs one full analysis cycle over a bar window: indicators,
// patterns, divergence, both pullback engines and the signal composer.
package analysis

import (
	"ForexSentinel/internal/calculator"
	"ForexSentinel/internal/divergence"
	"ForexSentinel/internal/model"
	"ForexSentinel/internal/pattern"
	"ForexSentinel/internal/pullback"
	"ForexSentinel/internal/strategy"
)

// levelsLookback is the bar window of the support/resistance levels.
const levelsLookback = 20

type Options struct {
	Pair       string
	Timeframe  string
	Indicators calculator.Params
	Divergence divergence.Config
	Breakout   pullback.BreakoutConfig
	Confluence pullback.ConfluenceConfig
	Composer   strategy.Config
}

// Analyzer owns the stateful engines of one pair and timeframe. Run must not
// be called concurrently; the engine accessors are safe to read meanwhile.
type Analyzer struct {
	pair       string
	timeframe  string
	params     calculator.Params
	divCfg     divergence.Config
	breakout   *pullback.BreakoutEngine
	confluence *pullback.ConfluenceEngine
	composer   *strategy.Composer
}

func New(opts Options) *Analyzer {
	return &Analyzer{
		pair:       opts.Pair,
		timeframe:  opts.Timeframe,
		params:     opts.Indicators.WithDefaults(),
		divCfg:     opts.Divergence.WithDefaults(),
		breakout:   pullback.NewBreakoutEngine(opts.Breakout),
		confluence: pullback.NewConfluenceEngine(opts.Confluence),
		composer:   strategy.NewComposer(opts.Composer),
	}
}

// Run analyzes bars and returns the cycle report. An empty window yields a
// report with default indicator readings and no signal.
func (a *Analyzer) Run(bars []model.Bar) *model.AnalysisReport {
	ind := calculator.CalculateAllWith(bars, a.params)
	patterns := pattern.Detect(bars)

	report := &model.AnalysisReport{
		Pair:       a.pair,
		Timeframe:  a.timeframe,
		Bars:       len(bars),
		Indicators: ind,
		Trend:      calculator.DetermineTrend(ind),
		Levels:     calculator.SupportResistance(bars, levelsLookback),
		Patterns:   patterns,
		Divergence: divergence.Summary(ind.RSI.Values, model.Closes(bars), a.divCfg),
		Pullbacks:  a.breakout.Analyze(bars),
		Confluence: a.confluence.Analyze(bars),
	}
	report.Active = a.breakout.Levels()
	if report.Pullbacks == nil {
		report.Pullbacks = []model.PullbackSignal{}
	}

	latest, ok := model.Last(bars)
	if !ok {
		return report
	}
	report.Timestamp = latest.Timestamp
	report.Price = latest.Close

	report.Signal = a.composer.Compose(a.pair, a.timeframe, bars, ind, patterns)
	report.Alert = a.composer.AlertFor(report.Signal)
	return report
}

func (a *Analyzer) Pair() string      { return a.pair }
func (a *Analyzer) Timeframe() string { return a.timeframe }

func (a *Analyzer) Composer() *strategy.Composer           { return a.composer }
func (a *Analyzer) Breakout() *pullback.BreakoutEngine     { return a.breakout }
func (a *Analyzer) Confluence() *pullback.ConfluenceEngine { return a.confluence }
