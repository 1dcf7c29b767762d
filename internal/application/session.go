package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"plantify/internal/domain/entity"
	"plantify/internal/domain/port"
	"plantify/internal/infrastructure/metrics"
)

// AcquireFunc получает изображение внутри запуска, например снимает кадр с камеры.
type AcquireFunc func(ctx context.Context) (entity.RawImage, error)

// Observer получает каждое зафиксированное состояние в порядке фиксации.
type Observer func(state entity.SessionState)

// SessionOptions настройки сессии.
type SessionOptions struct {
	// Timeout ограничивает вызов сервиса распознавания, 0 означает без ограничения
	Timeout time.Duration

	// MaxImageBytes предел размера изображения, 0 означает без ограничения
	MaxImageBytes int64
}

// Session управляет жизненным циклом распознавания: Idle → Loading → Success | Error.
// Новый запуск вытесняет текущий: его контекст отменяется, а результат отбрасывается.
type Session struct {
	encoder    *Encoder
	identifier port.Identifier
	parser     *Parser
	opts       SessionOptions

	mu         sync.Mutex
	state      entity.SessionState
	generation uint64
	cancel     context.CancelFunc
	observers  []Observer
}

// NewSession создаёт сессию в состоянии Idle.
func NewSession(encoder *Encoder, identifier port.Identifier, parser *Parser, opts SessionOptions) *Session {
	return &Session{
		encoder:    encoder,
		identifier: identifier,
		parser:     parser,
		opts:       opts,
		state:      entity.Idle(),
	}
}

// Run один запуск распознавания.
type Run struct {
	ID         string
	generation uint64
	started    time.Time
	done       chan struct{}
	err        error
	superseded bool
}

// Done закрывается после завершения запуска.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait ждёт завершения запуска и возвращает его внутреннюю ошибку.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return r.err
	}
}

// Err возвращает внутреннюю ошибку завершённого запуска. Только для диагностики.
func (r *Run) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Superseded сообщает, что результат запуска был отброшен из-за более нового запуска.
func (r *Run) Superseded() bool {
	select {
	case <-r.done:
		return r.superseded
	default:
		return false
	}
}

// State возвращает текущее состояние.
func (s *Session) State() entity.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe добавляет наблюдателя. Наблюдатель вызывается под блокировкой сессии
// и не должен обращаться к ней.
func (s *Session) Subscribe(observer Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Start запускает распознавание уже полученного изображения.
func (s *Session) Start(ctx context.Context, img entity.RawImage) (*Run, error) {
	return s.StartAcquisition(ctx, func(context.Context) (entity.RawImage, error) {
		return img, nil
	})
}

// StartAcquisition переводит сессию в Loading синхронно и запускает конвейер
// получение → кодирование → распознавание → разбор в отдельной горутине.
// Если у клиента нет ключа, сессия сразу переходит в Error, сеть не трогается.
func (s *Session) StartAcquisition(ctx context.Context, acquire AcquireFunc) (*Run, error) {
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{ID: uuid.NewString(), started: time.Now(), done: make(chan struct{})}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	run.generation = s.generation
	s.cancel = cancel
	s.commitLocked(entity.Loading(run.ID))
	s.mu.Unlock()

	if err := s.identifier.Ready(); err != nil {
		s.finish(run, entity.SessionState{}, err)
		return nil, err
	}

	go s.execute(runCtx, run, acquire)
	return run, nil
}

func (s *Session) execute(ctx context.Context, run *Run, acquire AcquireFunc) {
	img, err := acquire(ctx)
	if err != nil {
		s.finish(run, entity.SessionState{}, fmt.Errorf("acquire: %w", err))
		return
	}
	img.AcquisitionID = run.ID

	payload, err := s.encoder.Encode(img)
	if err != nil {
		s.finish(run, entity.SessionState{}, fmt.Errorf("encode: %w", err))
		return
	}

	callCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	text, err := s.identifier.Identify(callCtx, payload)
	if err != nil {
		s.finish(run, entity.SessionState{}, fmt.Errorf("identify: %w", err))
		return
	}

	record, err := s.parser.Parse(text)
	if err != nil {
		s.finish(run, entity.SessionState{}, fmt.Errorf("parse: %w", err))
		return
	}

	s.finish(run, entity.Success(run.ID, record, img), nil)
}

// finish фиксирует итог запуска, только если он всё ещё текущий.
func (s *Session) finish(run *Run, state entity.SessionState, err error) {
	s.mu.Lock()
	current := run.generation == s.generation
	if current {
		if err != nil {
			state = entity.Failed(run.ID)
		}
		s.commitLocked(state)
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
	}
	s.mu.Unlock()

	run.err = err
	run.superseded = !current
	close(run.done)

	switch {
	case !current:
		metrics.IncSuperseded()
		log.Debug().Str("acquisition", run.ID).AnErr("discarded_error", err).Msg("superseded run finished, result discarded")
	case err != nil:
		kind := entity.ErrorKind(err)
		metrics.ObserveIdentification(kind, time.Since(run.started))
		log.Error().Err(err).Str("acquisition", run.ID).Str("kind", kind).Msg("identification failed")
	default:
		metrics.ObserveIdentification("success", time.Since(run.started))
		log.Info().Str("acquisition", run.ID).Str("plant", state.Record.Name).Msg("plant identified")
	}
}

func (s *Session) commitLocked(next entity.SessionState) {
	if !entity.CanTransition(s.state.Kind, next.Kind) {
		log.Warn().Str("from", string(s.state.Kind)).Str("to", string(next.Kind)).Msg("rejected session transition")
		return
	}
	s.state = next
	for _, observer := range s.observers {
		observer(next)
	}
}
