package container

import (
	"context"
	"fmt"
	"io"

	"plantify/config"
	app "plantify/internal/application"
	"plantify/internal/domain/port"
	"plantify/internal/infrastructure/camera"
	"plantify/internal/infrastructure/gemini"
	"plantify/internal/infrastructure/storage"
)

type Container struct {
	Acquirer              *app.Acquirer
	Identifier            port.Identifier
	States                port.StateRepository
	IdentificationService *app.IdentificationService
}

// Options позволяют подменить инфраструктуру, например в тестах.
type Options struct {
	Camera      port.CaptureDevice // если nil, камера из конфигурации
	Identifier  port.Identifier    // если nil, клиент Gemini
	ForceCamera bool               // использовать камеру, даже если она выключена в конфигурации
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	identifier := opts.Identifier
	if identifier == nil {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:   cfg.Gemini.APIKey,
			Model:    cfg.Gemini.Model,
			Endpoint: cfg.Gemini.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("create inference client: %w", err)
		}
		identifier = client
	}

	device := opts.Camera
	if device == nil && (cfg.Camera.Enabled || opts.ForceCamera) {
		device = camera.NewGoCVCamera(cfg.Camera.Device)
	}

	acquirer := app.NewAcquirer(device, app.CaptureOptions{
		Warmup:      cfg.Camera.Warmup,
		FrameWidth:  app.DefaultFrameWidth,
		FrameHeight: app.DefaultFrameHeight,
	})
	maxImage, err := cfg.MaxImageBytes()
	if err != nil {
		return nil, err
	}

	states := storage.NewMemoryStateRepository()
	service := app.NewIdentificationService(acquirer, identifier, app.NewParser(), states, app.SessionOptions{
		Timeout:       cfg.IdentifyTimeout,
		MaxImageBytes: maxImage,
	})

	return &Container{
		Acquirer:              acquirer,
		Identifier:            identifier,
		States:                states,
		IdentificationService: service,
	}, nil
}

// Close освобождает соединения инфраструктуры.
func (c *Container) Close() error {
	if closer, ok := c.Identifier.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
