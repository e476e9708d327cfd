package service

import (
	"io"
	"slices"
	"strings"
)

// Upload входящий файл. ContentType определяет по байтам транспорт.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

func (s *Service) checkUpload(u Upload) error {
	if u.Reader == nil || u.Size <= 0 || u.Size > s.cfg.Upload.MaxSizeBytes {
		return ErrInvalidArgument
	}

	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if !slices.Contains(s.cfg.Upload.AllowedContentTypes, ct) {
		return ErrInvalidArgument
	}

	return nil
}
