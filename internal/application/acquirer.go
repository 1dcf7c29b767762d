package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"

	"plantify/internal/domain/entity"
	"plantify/internal/domain/port"
	"plantify/internal/infrastructure/metrics"
)

const (
	DefaultWarmup      = 1000 * time.Millisecond
	DefaultFrameWidth  = 640
	DefaultFrameHeight = 480
)

// CaptureOptions параметры захвата кадра с камеры.
type CaptureOptions struct {
	Warmup      time.Duration // пауза до стабилизации кадра
	FrameWidth  int
	FrameHeight int
}

// Acquirer получает исходное изображение из файла или с камеры.
type Acquirer struct {
	camera port.CaptureDevice
	opts   CaptureOptions
	sleep  func(ctx context.Context, d time.Duration) error

	// device удерживается от открытия потока до остановки дорожек
	device *semaphore.Weighted
}

// NewAcquirer создаёт Acquirer. camera может быть nil, тогда захват с камеры недоступен.
func NewAcquirer(camera port.CaptureDevice, opts CaptureOptions) *Acquirer {
	if opts.Warmup < 0 {
		opts.Warmup = 0
	}
	if opts.FrameWidth <= 0 || opts.FrameHeight <= 0 {
		opts.FrameWidth, opts.FrameHeight = DefaultFrameWidth, DefaultFrameHeight
	}
	return &Acquirer{camera: camera, opts: opts, sleep: sleepContext, device: semaphore.NewWeighted(1)}
}

// HasCamera сообщает, настроена ли камера.
func (a *Acquirer) HasCamera() bool { return a.camera != nil }

// AcquireFromFile проверяет тип файла и возвращает RawImage. Не-изображения дальше не передаются.
func (a *Acquirer) AcquireFromFile(ctx context.Context, file port.ImageFile) (entity.RawImage, error) {
	if err := ctx.Err(); err != nil {
		return entity.RawImage{}, err
	}
	if file == nil {
		return entity.RawImage{}, fmt.Errorf("%w: no image provided", entity.ErrEncoding)
	}

	mimeType := normalizeMIME(file.ContentType())
	if mimeType == "" || mimeType == "application/octet-stream" {
		detected, err := sniffMIME(file)
		if err != nil {
			return entity.RawImage{}, err
		}
		mimeType = detected
	}

	if !strings.HasPrefix(mimeType, "image/") {
		return entity.RawImage{}, fmt.Errorf("%w: %q is %s", entity.ErrUnsupportedMedia, file.Name(), mimeType)
	}

	size := int64(-1)
	if sized, ok := file.(interface{ Size() int }); ok {
		size = int64(sized.Size())
	}

	return entity.RawImage{
		AcquisitionID: uuid.NewString(),
		Name:          file.Name(),
		MIMEType:      mimeType,
		Size:          size,
		Blob:          file,
	}, nil
}

// AcquireFromCamera открывает поток, ждёт прогрева, снимает один кадр в PNG и
// останавливает все дорожки на любом пути выхода.
func (a *Acquirer) AcquireFromCamera(ctx context.Context) (img entity.RawImage, err error) {
	defer func() {
		if err != nil {
			metrics.IncCapture(entity.ErrorKind(err))
		} else {
			metrics.IncCapture("success")
		}
	}()

	if a.camera == nil {
		return entity.RawImage{}, fmt.Errorf("%w: no camera configured", entity.ErrCaptureDevice)
	}

	// Устройство одно: следующий захват ждёт, пока предыдущий не отпустит дорожки.
	if err := a.device.Acquire(ctx, 1); err != nil {
		return entity.RawImage{}, err
	}
	defer a.device.Release(1)

	stream, err := a.camera.Open(ctx)
	if err != nil {
		return entity.RawImage{}, fmt.Errorf("%w: %v", entity.ErrCaptureDevice, err)
	}
	defer func() {
		if releaseErr := stopTracks(stream); releaseErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: release stream: %v", entity.ErrCaptureDevice, releaseErr))
		}
	}()

	if err := stream.Play(ctx); err != nil {
		return entity.RawImage{}, fmt.Errorf("%w: play: %v", entity.ErrCaptureDevice, err)
	}

	if prober, ok := stream.(port.ReadinessProber); ok {
		if err := prober.WaitReady(ctx); err != nil {
			return entity.RawImage{}, fmt.Errorf("%w: wait ready: %w", entity.ErrCaptureDevice, err)
		}
	} else if err := a.sleep(ctx, a.opts.Warmup); err != nil {
		return entity.RawImage{}, err
	}

	frame, err := stream.Frame(ctx)
	if err != nil {
		return entity.RawImage{}, fmt.Errorf("%w: read frame: %v", entity.ErrCaptureDevice, err)
	}

	data, err := a.rasterize(frame)
	if err != nil {
		return entity.RawImage{}, fmt.Errorf("%w: encode frame: %v", entity.ErrEncoding, err)
	}

	return entity.RawImage{
		AcquisitionID: uuid.NewString(),
		Name:          "captured-image.png",
		MIMEType:      "image/png",
		Size:          int64(len(data)),
		Blob:          entity.BytesBlob(data),
	}, nil
}

// rasterize рисует кадр на холсте фиксированного размера и кодирует его в PNG.
func (a *Acquirer) rasterize(frame image.Image) ([]byte, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, errors.New("empty frame")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, a.opts.FrameWidth, a.opts.FrameHeight))
	draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), frame, frame.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stopTracks(stream port.VideoStream) error {
	var errs []error
	for _, track := range stream.Tracks() {
		if err := track.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sniffMIME(file port.ImageFile) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %q: %v", entity.ErrEncoding, file.Name(), err)
	}
	defer rc.Close()

	mtype, err := mimetype.DetectReader(rc)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: detect type of %q: %v", entity.ErrEncoding, file.Name(), err)
	}
	return normalizeMIME(mtype.String()), nil
}

func normalizeMIME(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(s); err == nil {
		return mediaType
	}
	return strings.ToLower(s)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
