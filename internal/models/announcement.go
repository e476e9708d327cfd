package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement новость на публичном сайте.
//
// PublishedAt равен nil, пока объявление в черновиках.
type Announcement struct {
	ID          uuid.UUID
	Title       string
	Body        string
	Published   bool
	PublishedAt *time.Time
	// AuthorID user id из сессии, env-admin тоже.
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListOptions управляет постраничной выдачей.
//
//   - Limit <= 0 заменяется умолчанием сервиса;
//   - PageToken == "" означает первую страницу.
type ListOptions struct {
	Limit         int32
	PageToken     string
	IncludeDrafts bool
}

// AnnouncementPage страница выдачи объявлений.
type AnnouncementPage struct {
	Items         []Announcement
	NextPageToken string
}
