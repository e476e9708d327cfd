package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
	"github.com/pribylovaa/school-site/internal/session"
)

const maxTitleLen = 200

type AnnouncementInput struct {
	Title     string
	Body      string
	Published bool
}

func (in *AnnouncementInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)

	if in.Title == "" || utf8.RuneCountInString(in.Title) > maxTitleLen {
		return ErrInvalidArgument
	}

	return nil
}

// ListAnnouncements возвращает одну страницу, новые первыми. Черновики попадают
// в выдачу, только если вызывающий из админки выставил opts.IncludeDrafts.
func (s *Service) ListAnnouncements(ctx context.Context, opts models.ListOptions) (*models.AnnouncementPage, error) {
	const op = "service.announcements.ListAnnouncements"

	lg := log.From(ctx).With("op", op)

	opts.Limit = clampLimit(opts.Limit)

	page, err := s.db.ListAnnouncements(ctx, opts)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return page, nil
}

// AnnouncementByID прячет черновики от публичных вызовов за ErrNotFound.
func (s *Service) AnnouncementByID(ctx context.Context, id uuid.UUID, includeDrafts bool) (*models.Announcement, error) {
	const op = "service.announcements.AnnouncementByID"

	lg := log.From(ctx).With("op", op, "id", id.String())

	a, err := s.db.AnnouncementByID(ctx, id)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	if !a.Published && !includeDrafts {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return a, nil
}

func (s *Service) CreateAnnouncement(ctx context.Context, claims *session.Claims, in AnnouncementInput) (*models.Announcement, error) {
	const op = "service.announcements.CreateAnnouncement"

	lg := log.From(ctx).With("op", op)

	if claims == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := in.normalize(); err != nil {
		lg.Warn("invalid announcement")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	a := &models.Announcement{
		ID:        uuid.New(),
		Title:     in.Title,
		Body:      in.Body,
		Published: in.Published,
		AuthorID:  claims.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Published {
		a.PublishedAt = &now
	}

	if err := s.db.CreateAnnouncement(ctx, a); err != nil {
		return nil, fromStorage(lg, op, err)
	}

	lg.Info("announcement created", "id", a.ID.String(), "published", a.Published)

	return a, nil
}

// UpdateAnnouncement сохраняет время первой публикации; снятие с публикации его сбрасывает.
func (s *Service) UpdateAnnouncement(ctx context.Context, id uuid.UUID, in AnnouncementInput) (*models.Announcement, error) {
	const op = "service.announcements.UpdateAnnouncement"

	lg := log.From(ctx).With("op", op, "id", id.String())

	if err := in.normalize(); err != nil {
		lg.Warn("invalid announcement")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.db.AnnouncementByID(ctx, id)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	current.Title = in.Title
	current.Body = in.Body
	current.Published = in.Published

	switch {
	case !in.Published:
		current.PublishedAt = nil
	case current.PublishedAt == nil:
		now := s.now()
		current.PublishedAt = &now
	}

	updated, err := s.db.UpdateAnnouncement(ctx, current)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return updated, nil
}

func (s *Service) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	const op = "service.announcements.DeleteAnnouncement"

	lg := log.From(ctx).With("op", op, "id", id.String())

	if err := s.db.DeleteAnnouncement(ctx, id); err != nil {
		return fromStorage(lg, op, err)
	}

	return nil
}
