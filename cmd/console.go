package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	app "plantify/internal/application"
	"plantify/internal/domain/entity"
)

// cliChatID единственный «чат» командной строки.
const cliChatID int64 = 0

// console печатает переходы состояния в stderr, а итоговую карточку в stdout.
// В режиме follow карточка печатается при каждом успехе, а не один раз в Finish.
type console struct {
	out    io.Writer
	status io.Writer
	asJSON bool
	follow bool

	mu sync.Mutex
}

func newConsole(out, status io.Writer, asJSON bool) *console {
	return &console{out: out, status: status, asJSON: asJSON}
}

// Present реализует port.StatePresenter.
func (c *console) Present(_ context.Context, _ int64, state entity.SessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch state.Kind {
	case entity.StateLoading:
		fmt.Fprintln(c.status, "⏳ Identifying plant...")
	case entity.StateSuccess:
		fmt.Fprintln(c.status, "✅ Plant identified")
		if c.follow && state.Record != nil {
			if err := writeRecord(c.out, *state.Record, c.asJSON); err != nil {
				log.Error().Err(err).Msg("write plant record")
			}
		}
	case entity.StateError:
		if c.follow {
			fmt.Fprintln(c.status, "⚠️ "+state.Message)
		}
	}
}

// Finish ждёт завершения запуска и печатает результат. Ошибка распознавания
// возвращается с текстом для пользователя, подробности уже записаны в лог.
func (c *console) Finish(ctx context.Context, service *app.IdentificationService, run *app.Run, startErr error) error {
	if startErr == nil {
		if err := run.Wait(ctx); err != nil && errors.Is(err, ctx.Err()) {
			return err
		}
	}

	state, err := service.State(ctx, cliChatID)
	if err != nil {
		return err
	}
	if state.Kind != entity.StateSuccess || state.Record == nil {
		return errors.New(entity.GenericErrorMessage)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return writeRecord(c.out, *state.Record, c.asJSON)
}

func writeRecord(w io.Writer, rec entity.PlantRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	_, err := fmt.Fprintf(w, `%s (%s)
Family: %s

Description:
%s

Care:
%s

Fun facts:
%s

%s
`, rec.Name, rec.ScientificName, rec.Family, rec.Description, rec.Care, rec.FunFacts, rec.ShareSummary())
	return err
}
