//go:build gocv
// +build gocv

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"plantify/internal/domain/port"
)

// GoCVCamera камера, открываемая через OpenCV.
type GoCVCamera struct {
	DeviceID int
}

// NewGoCVCamera создаёт камеру по номеру устройства.
func NewGoCVCamera(deviceID int) *GoCVCamera {
	return &GoCVCamera{DeviceID: deviceID}
}

// Open открывает устройство захвата.
func (c *GoCVCamera) Open(ctx context.Context) (port.VideoStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	capture, err := gocv.OpenVideoCapture(c.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open device %d: %w", c.DeviceID, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("device %d is not available", c.DeviceID)
	}
	return &gocvStream{capture: capture, frame: gocv.NewMat()}, nil
}

type gocvStream struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	once    sync.Once
	stopErr error
}

// Play у OpenCV захват начинается при открытии, читаем один кадр, чтобы запустить сенсор.
func (s *gocvStream) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ok := s.capture.Read(&s.frame); !ok {
		return errors.New("device returned no frame")
	}
	return nil
}

// Frame читает текущий кадр и переводит его в image.Image.
func (s *gocvStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, errors.New("failed to read frame")
	}
	return s.frame.ToImage()
}

func (s *gocvStream) Tracks() []port.Track {
	return []port.Track{s}
}

// Stop освобождает кадр и устройство. Повторный вызов безопасен.
func (s *gocvStream) Stop() error {
	s.once.Do(func() {
		_ = s.frame.Close()
		s.stopErr = s.capture.Close()
	})
	return s.stopErr
}

// Проверка реализации интерфейса
var _ port.CaptureDevice = (*GoCVCamera)(nil)
