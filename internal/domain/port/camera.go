package port

import (
	"context"
	"image"
)

// CaptureDevice интерфейс источника живого видео
type CaptureDevice interface {
	// Open запрашивает поток. Блокируется до разрешения или отказа.
	Open(ctx context.Context) (VideoStream, error)
}

// VideoStream открытый видеопоток камеры
type VideoStream interface {
	// Play запускает воспроизведение во внеэкранный приёмник
	Play(ctx context.Context) error

	// Frame возвращает текущий кадр
	Frame(ctx context.Context) (image.Image, error)

	// Tracks возвращает дорожки потока, каждую нужно остановить
	Tracks() []Track
}

// Track дорожка видеопотока
type Track interface {
	Stop() error
}

// ReadinessProber реализуют потоки, умеющие сообщить о стабилизации кадра
type ReadinessProber interface {
	WaitReady(ctx context.Context) error
}
