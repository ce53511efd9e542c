package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// SavedState contains the runtime state restored at startup.
type SavedState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// RadioStates is the radio bitmask at save time.
	RadioStates uint32 `json:"radio_states"`

	// LEDEnabled is the global LED enable toggle at save time.
	LEDEnabled bool `json:"led_enabled"`
}

// StateStore manages persistence of saved state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a store backed by the given path.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Save persists the state to disk.
func (s *StateStore) Save(state *SavedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the state from disk.
// Returns nil, nil if the file doesn't exist (fresh start).
func (s *StateStore) Load() (*SavedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &SavedState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
