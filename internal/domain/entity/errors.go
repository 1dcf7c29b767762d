package entity

import (
	"context"
	"errors"
	"fmt"
)

// Классы ошибок конвейера. Конкретные ошибки оборачивают их через %w.
var (
	ErrUnsupportedMedia  = errors.New("unsupported media")
	ErrCaptureDevice     = errors.New("capture device unavailable")
	ErrEncoding          = errors.New("image encoding failed")
	ErrCredentialMissing = errors.New("inference credential is not configured")
	ErrTransport         = errors.New("inference transport failure")
	ErrMalformedResponse = errors.New("malformed inference response")
)

// TransportError ошибка сети или сервиса распознавания.
type TransportError struct {
	StatusCode int // HTTP-код, 0 если ответа не было
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("inference transport: HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("inference transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is позволяет проверять errors.Is(err, ErrTransport).
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ErrorKind возвращает короткое имя класса ошибки для логов и метрик.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnsupportedMedia):
		return "unsupported_media"
	case errors.Is(err, ErrCaptureDevice):
		return "capture_device"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrCredentialMissing):
		return "credential_missing"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
