package entity

import (
	"bytes"
	"encoding/base64"
	"io"
)

// Blob отдаёт байты изображения по запросу.
type Blob interface {
	Open() (io.ReadCloser, error)
}

// BytesBlob — изображение, уже загруженное в память.
type BytesBlob []byte

// Open возвращает reader поверх байтов.
func (b BytesBlob) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// RawImage — исходное изображение одной попытки получения (файл или кадр камеры).
type RawImage struct {
	AcquisitionID string // идентификатор попытки получения
	Name          string // имя файла, если известно
	MIMEType      string // тип, всегда начинается с image/
	Size          int64  // длина в байтах, -1 если неизвестна
	Blob          Blob
}

// EncodedPayload — изображение в виде, пригодном для отправки в сервис распознавания.
// После создания не меняется.
type EncodedPayload struct {
	mimeType string
	data     string
}

// NewEncodedPayload кодирует байты в base64 и связывает их с MIME-типом.
func NewEncodedPayload(mimeType string, raw []byte) EncodedPayload {
	return EncodedPayload{
		mimeType: mimeType,
		data:     base64.StdEncoding.EncodeToString(raw),
	}
}

// MIMEType возвращает тип исходного изображения.
func (p EncodedPayload) MIMEType() string { return p.mimeType }

// Data возвращает base64-строку.
func (p EncodedPayload) Data() string { return p.data }

// Decode восстанавливает исходные байты.
func (p EncodedPayload) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.data)
}

// IsZero сообщает, что payload не был создан.
func (p EncodedPayload) IsZero() bool {
	return p.mimeType == "" && p.data == ""
}
