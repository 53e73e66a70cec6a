package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"ForexSentinel/internal/model"
)

// fileState is the on-disk layout of a FileStore.
type fileState struct {
	UpdatedAt time.Time                        `json:"updated_at"`
	Signals   map[string][]model.TradingSignal `json:"signals"`
}

// FileStore keeps every history in one JSON file.
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

// loadState reads the state file. Returns an empty state if the file doesn't exist.
func (s *FileStore) loadState() (*fileState, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileState{Signals: map[string][]model.TradingSignal{}}, nil
		}
		return nil, err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.filePath, err)
	}
	if state.Signals == nil {
		state.Signals = map[string][]model.TradingSignal{}
	}
	return &state, nil
}

func (s *FileStore) saveState(state *fileState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func (s *FileStore) Load(_ context.Context, pair, timeframe string) ([]model.TradingSignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState()
	if err != nil {
		return nil, err
	}
	signals, ok := state.Signals[Key("", pair, timeframe)]
	if !ok {
		return nil, ErrNotFound
	}
	return signals, nil
}

func (s *FileStore) Save(_ context.Context, pair, timeframe string, signals []model.TradingSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState()
	if err != nil {
		return err
	}
	state.Signals[Key("", pair, timeframe)] = signals
	return s.saveState(state)
}

func (s *FileStore) Close() error { return nil }
