package port

import (
	"context"

	"plantify/internal/domain/entity"
)

// Identifier интерфейс удалённого мультимодального сервиса распознавания
type Identifier interface {
	// Ready проверяет предусловия вызова (наличие ключа) без обращения к сети
	Ready() error

	// Identify отправляет изображение с фиксированной инструкцией и возвращает сырой текст ответа
	Identify(ctx context.Context, payload entity.EncodedPayload) (string, error)
}

// ResponseNormalizer убирает из ответа сервиса обёртку, не относящуюся к данным
type ResponseNormalizer interface {
	Normalize(raw string) string
}
