package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryImage изображение галереи.
type GalleryImage struct {
	ID        uuid.UUID
	Title     string
	ImageKey  string
	ImageURL  string
	CreatedAt time.Time
}
