package port

import (
	"context"

	"plantify/internal/domain/entity"
)

// StateRepository хранит последнее состояние сессии каждого чата (не историю)
type StateRepository interface {
	// Get возвращает состояние чата, Idle если его ещё нет
	Get(ctx context.Context, chatID int64) (entity.SessionState, error)

	// Save заменяет состояние чата
	Save(ctx context.Context, chatID int64, state entity.SessionState) error
}

// StatePresenter отображает состояние пользователю
type StatePresenter interface {
	Present(ctx context.Context, chatID int64, state entity.SessionState)
}
