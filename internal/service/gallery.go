package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
)

const galleryDir = "gallery"

func (s *Service) ListImages(ctx context.Context) ([]models.GalleryImage, error) {
	const op = "service.gallery.ListImages"

	lg := log.From(ctx).With("op", op)

	imgs, err := s.db.ListImages(ctx)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return imgs, nil
}

// UploadImage сохраняет сначала blob, потом строку; если строку записать
// не удалось, blob удаляется.
func (s *Service) UploadImage(ctx context.Context, title string, up Upload) (*models.GalleryImage, error) {
	const op = "service.gallery.UploadImage"

	lg := log.From(ctx).With("op", op)

	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.checkUpload(up); err != nil {
		lg.Warn("upload rejected", "content_type", up.ContentType, "size", up.Size)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	obj, err := s.blobs.Put(ctx, galleryDir, up.Reader, up.Size, up.ContentType)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	img := &models.GalleryImage{
		ID:        uuid.New(),
		Title:     title,
		ImageKey:  obj.Key,
		ImageURL:  obj.URL,
		CreatedAt: s.now(),
	}

	if err := s.db.SaveImage(ctx, img); err != nil {
		s.removeBlob(ctx, op, obj.Key)
		return nil, fromStorage(lg, op, err)
	}

	lg.Info("image uploaded", "id", img.ID.String(), "key", img.ImageKey)

	return img, nil
}

// DeleteImage удаляет строку, затем blob.
func (s *Service) DeleteImage(ctx context.Context, id uuid.UUID) error {
	const op = "service.gallery.DeleteImage"

	lg := log.From(ctx).With("op", op, "id", id.String())

	img, err := s.db.ImageByID(ctx, id)
	if err != nil {
		return fromStorage(lg, op, err)
	}

	if err := s.db.DeleteImage(ctx, id); err != nil {
		return fromStorage(lg, op, err)
	}

	s.removeBlob(ctx, op, img.ImageKey)

	return nil
}
