package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"stocksence/models"
)

// MemoryRepository keeps the state as JSON in memory, round-tripping it the
// way a durable repository would.
type MemoryRepository struct {
	mu      sync.Mutex
	payload []byte
	saves   int

	failSaves bool
}

var ErrSaveFailed = errors.New("memory repository: save failed")

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Load(_ context.Context) (models.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return models.NewState(), false, nil
	}
	state := models.NewState()
	if err := json.Unmarshal(m.payload, &state); err != nil {
		return models.State{}, false, err
	}
	return state, true, nil
}

func (m *MemoryRepository) Save(_ context.Context, state models.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return ErrSaveFailed
	}
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.payload = b
	m.saves++
	return nil
}

// Saves counts successful saves.
func (m *MemoryRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryRepository) SetFailSaves(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaves = fail
}
