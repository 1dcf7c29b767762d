package storage

import (
	"context"
	"sync"

	"plantify/internal/domain/entity"
	"plantify/internal/domain/port"
)

// MemoryStateRepository in-memory хранилище последнего состояния каждого чата
type MemoryStateRepository struct {
	mu     sync.RWMutex
	states map[int64]entity.SessionState
}

// NewMemoryStateRepository создаёт новое in-memory хранилище
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		states: make(map[int64]entity.SessionState),
	}
}

// Get возвращает состояние чата, Idle если чат ещё не встречался
func (r *MemoryStateRepository) Get(ctx context.Context, chatID int64) (entity.SessionState, error) {
	r.mu.RLock()
	state, exists := r.states[chatID]
	r.mu.RUnlock()

	if !exists {
		return entity.Idle(), nil
	}
	return state, nil
}

// Save заменяет состояние чата, предыдущее не сохраняется
func (r *MemoryStateRepository) Save(ctx context.Context, chatID int64, state entity.SessionState) error {
	r.mu.Lock()
	r.states[chatID] = state
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.StateRepository = (*MemoryStateRepository)(nil)
