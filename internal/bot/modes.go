package bot

import (
	"fmt"
	"sync"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

// ModeStore keeps the answer mode chosen per chat. The mapping lives in
// memory only and resets when the bot restarts.
type ModeStore struct {
	mu    sync.Mutex
	modes map[int64]string
}

// NewModeStore creates a new ModeStore.
func NewModeStore() *ModeStore {
	return &ModeStore{modes: make(map[int64]string)}
}

// Get returns the mode for a chat, defaulting to synthesis.
func (s *ModeStore) Get(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode, ok := s.modes[chatID]; ok {
		return mode
	}
	return rag.ModeSynthesis
}

// Set stores the mode for a chat after validating it.
func (s *ModeStore) Set(chatID int64, mode string) error {
	if !rag.ValidMode(mode) {
		return fmt.Errorf("unknown mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[chatID] = mode
	return nil
}
