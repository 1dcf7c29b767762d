package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"plantify/internal/domain/entity"
	"plantify/internal/domain/port"
)

// ErrNothingToShare в чате нет успешного результата.
var ErrNothingToShare = errors.New("no identification result to share")

// IdentificationService держит по одной сессии на чат и связывает её с хранилищем
// состояний и слоем отображения.
type IdentificationService struct {
	acquirer   *Acquirer
	encoder    *Encoder
	identifier port.Identifier
	parser     *Parser
	states     port.StateRepository
	opts       SessionOptions

	mu       sync.Mutex
	sessions map[int64]*Session

	presenterMu sync.RWMutex
	presenter   port.StatePresenter
}

// NewIdentificationService создаёт сервис распознавания.
func NewIdentificationService(acquirer *Acquirer, identifier port.Identifier, parser *Parser, states port.StateRepository, opts SessionOptions) *IdentificationService {
	return &IdentificationService{
		acquirer:   acquirer,
		encoder:    &Encoder{MaxBytes: opts.MaxImageBytes},
		identifier: identifier,
		parser:     parser,
		states:     states,
		opts:       opts,
		sessions:   make(map[int64]*Session),
	}
}

// SetPresenter подключает слой отображения. Действует и на уже созданные сессии.
func (s *IdentificationService) SetPresenter(p port.StatePresenter) {
	s.presenterMu.Lock()
	s.presenter = p
	s.presenterMu.Unlock()
}

func (s *IdentificationService) currentPresenter() port.StatePresenter {
	s.presenterMu.RLock()
	defer s.presenterMu.RUnlock()
	return s.presenter
}

// CameraAvailable сообщает, можно ли снимать с камеры.
func (s *IdentificationService) CameraAvailable() bool {
	return s.acquirer.HasCamera()
}

// Session возвращает сессию чата, создаёт новую если её нет.
func (s *IdentificationService) Session(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[chatID]; ok {
		return session
	}

	session := NewSession(s.encoder, s.identifier, s.parser, s.opts)
	session.Subscribe(func(state entity.SessionState) {
		ctx := context.Background()
		if err := s.states.Save(ctx, chatID, state); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("save session state")
		}
		if presenter := s.currentPresenter(); presenter != nil {
			presenter.Present(ctx, chatID, state)
		}
	})
	s.sessions[chatID] = session
	return session
}

// IdentifyFile запускает распознавание файла, вытесняя текущий запуск чата.
func (s *IdentificationService) IdentifyFile(ctx context.Context, chatID int64, file port.ImageFile) (*Run, error) {
	return s.Session(chatID).StartAcquisition(ctx, func(ctx context.Context) (entity.RawImage, error) {
		return s.acquirer.AcquireFromFile(ctx, file)
	})
}

// IdentifyCamera снимает кадр с камеры и распознаёт его.
func (s *IdentificationService) IdentifyCamera(ctx context.Context, chatID int64) (*Run, error) {
	return s.Session(chatID).StartAcquisition(ctx, s.acquirer.AcquireFromCamera)
}

// State возвращает последнее состояние чата.
func (s *IdentificationService) State(ctx context.Context, chatID int64) (entity.SessionState, error) {
	return s.states.Get(ctx, chatID)
}

// ShareSummary возвращает текст для «поделиться» по последнему успешному результату.
func (s *IdentificationService) ShareSummary(ctx context.Context, chatID int64) (string, error) {
	state, err := s.states.Get(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("get state: %w", err)
	}
	if state.Kind != entity.StateSuccess || state.Record == nil {
		return "", ErrNothingToShare
	}
	return state.Record.ShareSummary(), nil
}
