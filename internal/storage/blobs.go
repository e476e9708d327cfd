package storage

//go:generate mockgen -source=blobs.go -destination=../../mocks/mock_blobs.go -package=mocks

import (
	"context"
	"io"
)

// Object сохранённый blob.
type Object struct {
	Key string
	URL string
}

// Blobs хранит загруженные файлы под префиксом-каталогом.
type Blobs interface {
	// Put загружает size байт из r как dir/<random><ext>.
	Put(ctx context.Context, dir string, r io.Reader, size int64, contentType string) (*Object, error)
	// Remove удаляет key. Отсутствующий ключ ошибкой не считается.
	Remove(ctx context.Context, key string) error
}
