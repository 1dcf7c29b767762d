package imagefile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"plantify/internal/domain/port"
)

// File файл изображения на диске.
type File struct {
	path        string
	contentType string
}

// FromPath определяет тип файла по сигнатуре, а не по расширению.
func FromPath(path string) (*File, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect file type: %w", err)
	}
	return &File{path: path, contentType: mtype.String()}, nil
}

func (f *File) Name() string        { return filepath.Base(f.path) }
func (f *File) ContentType() string { return f.contentType }

func (f *File) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// Memory файл, уже загруженный в память (например, скачанный из чата).
type Memory struct {
	name        string
	contentType string
	data        []byte
}

// FromBytes создаёт файл из байтов. Пустой contentType будет определён при получении.
func FromBytes(name, contentType string, data []byte) *Memory {
	return &Memory{name: name, contentType: contentType, data: data}
}

func (m *Memory) Name() string        { return m.name }
func (m *Memory) ContentType() string { return m.contentType }
func (m *Memory) Size() int           { return len(m.data) }

func (m *Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

// Проверка реализации интерфейса
var (
	_ port.ImageFile = (*File)(nil)
	_ port.ImageFile = (*Memory)(nil)
)
