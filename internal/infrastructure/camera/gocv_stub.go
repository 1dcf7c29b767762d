//go:build !gocv
// +build !gocv

package camera

import (
	"context"
	"errors"

	"plantify/internal/domain/port"
)

// GoCVCamera камера-заглушка для сборки без OpenCV.
type GoCVCamera struct {
	DeviceID int
}

// NewGoCVCamera создаёт камеру-заглушку.
func NewGoCVCamera(deviceID int) *GoCVCamera {
	return &GoCVCamera{DeviceID: deviceID}
}

// Open возвращает ошибку, если сборка без тега gocv.
func (c *GoCVCamera) Open(_ context.Context) (port.VideoStream, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

// Проверка реализации интерфейса
var _ port.CaptureDevice = (*GoCVCamera)(nil)
