package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/storage"
)

func (s *Storage) SaveImage(ctx context.Context, img *models.GalleryImage) error {
	const op = "storage.postgres.SaveImage"

	_, err := s.db.Exec(ctx, `
		INSERT INTO gallery_images (id, title, image_key, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, img.ID, img.Title, img.ImageKey, img.ImageURL, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapWriteErr(err))
	}

	return nil
}

func (s *Storage) ImageByID(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	const op = "storage.postgres.ImageByID"

	var img models.GalleryImage
	err := s.db.QueryRow(ctx, `
		SELECT id, title, image_key, image_url, created_at
		FROM gallery_images
		WHERE id = $1
	`, id).Scan(&img.ID, &img.Title, &img.ImageKey, &img.ImageURL, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	img.CreatedAt = img.CreatedAt.UTC()

	return &img, nil
}

// ListImages возвращает изображения, новые первыми.
func (s *Storage) ListImages(ctx context.Context) ([]models.GalleryImage, error) {
	const op = "storage.postgres.ListImages"

	rows, err := s.db.Query(ctx, `
		SELECT id, title, image_key, image_url, created_at
		FROM gallery_images
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.GalleryImage, 0)
	for rows.Next() {
		var img models.GalleryImage
		if err := rows.Scan(&img.ID, &img.Title, &img.ImageKey, &img.ImageURL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		img.CreatedAt = img.CreatedAt.UTC()
		out = append(out, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return out, nil
}

func (s *Storage) DeleteImage(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteImage"

	tag, err := s.db.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := expectOne(tag); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
