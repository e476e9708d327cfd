// storage описывает контракты хранения сайта.
//
// storage.go - реляционные записи (учётки, объявления, персонал, галерея, обратная связь).
// blobs.go - объектное хранилище загруженных изображений.
// counters.go - счётчики просмотров.
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-site/internal/models"
)

var (
	// ErrNotFound - записи нет.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists - нарушена уникальность (username).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCursor - битый или чужой page_token.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidArgument - запрос нарушает ограничения хранилища (тип, размер).
	ErrInvalidArgument = errors.New("invalid argument")
)

// Users учётные записи админки.
type Users interface {
	SaveUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte) error
	// UpdateUsername возвращает ErrAlreadyExists, если имя занято.
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Announcements объявления, включая черновики.
type Announcements interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	// UpdateAnnouncement заменяет заголовок, текст и статус публикации; updated_at ставит реализация.
	UpdateAnnouncement(ctx context.Context, a *models.Announcement) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
	AnnouncementByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	// ListAnnouncements отдаёт новые первыми. Битый page token даёт ErrInvalidCursor.
	ListAnnouncements(ctx context.Context, opts models.ListOptions) (*models.AnnouncementPage, error)
}

// Staff справочник персонала.
type Staff interface {
	CreateStaff(ctx context.Context, member *models.StaffMember) error
	UpdateStaff(ctx context.Context, member *models.StaffMember) (*models.StaffMember, error)
	DeleteStaff(ctx context.Context, id uuid.UUID) error
	StaffByID(ctx context.Context, id uuid.UUID) (*models.StaffMember, error)
	// ListStaff сортирует по sort_order, затем по имени.
	ListStaff(ctx context.Context) ([]models.StaffMember, error)
	SetStaffPhoto(ctx context.Context, id uuid.UUID, key, publicURL string) (*models.StaffMember, error)
}

// Gallery метаданные изображений галереи.
type Gallery interface {
	SaveImage(ctx context.Context, img *models.GalleryImage) error
	ImageByID(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error)
	ListImages(ctx context.Context) ([]models.GalleryImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

// Contacts входящие сообщения формы обратной связи.
type Contacts interface {
	SaveMessage(ctx context.Context, msg *models.ContactMessage) error
	ListMessages(ctx context.Context) ([]models.ContactMessage, error)
	MarkMessageRead(ctx context.Context, id uuid.UUID) error
	DeleteMessage(ctx context.Context, id uuid.UUID) error
}

// Database реляционное хранилище целиком.
type Database interface {
	Users
	Announcements
	Staff
	Gallery
	Contacts
	Close()
}
