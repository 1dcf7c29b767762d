package app

import (
	"fmt"
	"io"

	"github.com/docker/go-units"

	"plantify/internal/domain/entity"
)

// Encoder превращает RawImage в base64 payload без изменения байтов.
type Encoder struct {
	// MaxBytes предел размера изображения, 0 означает без ограничения
	MaxBytes int64
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode читает изображение целиком. Пустые изображения отклоняются до отправки.
func (e *Encoder) Encode(img entity.RawImage) (entity.EncodedPayload, error) {
	if img.Blob == nil {
		return entity.EncodedPayload{}, fmt.Errorf("%w: no image provided", entity.ErrEncoding)
	}

	rc, err := img.Blob.Open()
	if err != nil {
		return entity.EncodedPayload{}, fmt.Errorf("%w: open: %v", entity.ErrEncoding, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if e.MaxBytes > 0 {
		r = io.LimitReader(rc, e.MaxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return entity.EncodedPayload{}, fmt.Errorf("%w: read: %v", entity.ErrEncoding, err)
	}
	if len(data) == 0 {
		return entity.EncodedPayload{}, fmt.Errorf("%w: empty image", entity.ErrEncoding)
	}
	if e.MaxBytes > 0 && int64(len(data)) > e.MaxBytes {
		return entity.EncodedPayload{}, fmt.Errorf("%w: image exceeds %s", entity.ErrEncoding, units.HumanSize(float64(e.MaxBytes)))
	}

	return entity.NewEncodedPayload(img.MIMEType, data), nil
}
