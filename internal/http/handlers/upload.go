package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
	"github.com/pribylovaa/school-site/internal/service"
)

const (
	uploadField = "file"
	// заголовки multipart и остальные поля формы.
	formOverhead = 64 << 10
	sniffLen     = 512
)

// readUpload разбирает multipart-тело и возвращает часть "file". Тип содержимого
// определяется по байтам, заявленный клиентом игнорируется.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return service.Upload{}, noop, err
		}
		return service.Upload{}, noop, fmt.Errorf("%w: %w", apierrors.ErrBadRequest, err)
	}

	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	file, hdr, err := r.FormFile(uploadField)
	if err != nil {
		return service.Upload{}, cleanup, apierrors.ErrBadRequest
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return service.Upload{}, cleanup, apierrors.ErrBadRequest
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return service.Upload{}, cleanup, apierrors.ErrBadRequest
	}

	up := service.Upload{
		Reader:      file,
		Size:        hdr.Size,
		ContentType: http.DetectContentType(head[:n]),
	}

	return up, func() {
		_ = file.Close()
		cleanup()
	}, nil
}
