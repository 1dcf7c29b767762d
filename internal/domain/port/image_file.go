package port

import "io"

// ImageFile интерфейс файла, выбранного пользователем или полученного из чата
type ImageFile interface {
	// Name возвращает имя файла, может быть пустым
	Name() string

	// ContentType возвращает заявленный MIME-тип, может быть пустым
	ContentType() string

	// Open открывает содержимое файла для чтения
	Open() (io.ReadCloser, error)
}
