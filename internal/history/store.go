// Package history persists the signal composer history per pair and timeframe.
package history

import (
	"context"
	"errors"
	"fmt"

	"ForexSentinel/internal/model"
)

// ErrNotFound is returned by Load when nothing was saved under the key.
var ErrNotFound = errors.New("history: not found")

// Store saves and restores the bounded signal history, most recent first.
type Store interface {
	Load(ctx context.Context, pair, timeframe string) ([]model.TradingSignal, error)
	Save(ctx context.Context, pair, timeframe string, signals []model.TradingSignal) error
	Close() error
}

// Key builds the storage key of a pair and timeframe.
func Key(prefix, pair, timeframe string) string {
	return fmt.Sprintf("%ssignals:%s:%s", prefix, pair, timeframe)
}
