package recorder

import "ForexSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ *model.TradingSignal) error                 { return nil }
func (n *NoopRecorder) RecordPullback(_ Event, _ *model.PullbackSignal) error     { return nil }
func (n *NoopRecorder) RecordConfluence(_ Event, _ *model.ConfluenceSignal) error { return nil }
func (n *NoopRecorder) RecordDivergence(_ *DivergenceEvent) error                 { return nil }
func (n *NoopRecorder) Close() error                                              { return nil }
