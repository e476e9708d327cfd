package postgres

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/storage"
)

const announcementColumns = `id, title, body, published, published_at, author_id, created_at, updated_at`

func scanAnnouncement(row rowScanner) (*models.Announcement, error) {
	var a models.Announcement

	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Body,
		&a.Published,
		&a.PublishedAt,
		&a.AuthorID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if a.PublishedAt != nil {
		t := a.PublishedAt.UTC()
		a.PublishedAt = &t
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	return &a, nil
}

// sortKey порядок выдачи: время публикации, у черновиков время создания.
func sortKey(a *models.Announcement) time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}

	return a.CreatedAt
}

func (s *Storage) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	const op = "storage.postgres.CreateAnnouncement"

	_, err := s.db.Exec(ctx, `
		INSERT INTO announcements (id, title, body, published, published_at, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.Title, a.Body, a.Published, a.PublishedAt, a.AuthorID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapWriteErr(err))
	}

	return nil
}

func (s *Storage) UpdateAnnouncement(ctx context.Context, a *models.Announcement) (*models.Announcement, error) {
	const op = "storage.postgres.UpdateAnnouncement"

	out, err := scanAnnouncement(s.db.QueryRow(ctx, `
		UPDATE announcements
		SET title = $2, body = $3, published = $4, published_at = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+announcementColumns,
		a.ID, a.Title, a.Body, a.Published, a.PublishedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storage) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteAnnouncement"

	tag, err := s.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := expectOne(tag); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) AnnouncementByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	const op = "storage.postgres.AnnouncementByID"

	a, err := scanAnnouncement(s.db.QueryRow(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

// ListAnnouncements возвращает keyset-страницу в порядке
// (COALESCE(published_at, created_at) DESC, id DESC).
// На последней странице NextPageToken пуст.
func (s *Storage) ListAnnouncements(ctx context.Context, opts models.ListOptions) (*models.AnnouncementPage, error) {
	const op = "storage.postgres.ListAnnouncements"

	limit := opts.Limit
	if limit <= 0 {
		limit = 1
	}

	var (
		rows pgx.Rows
		err  error
	)

	if opts.PageToken == "" {
		rows, err = s.db.Query(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE ($1 OR published)
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		LIMIT $2
		`, opts.IncludeDrafts, limit+1)
	} else {
		keyCur, idCur, decErr := decodePageToken(opts.PageToken)
		if decErr != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}

		rows, err = s.db.Query(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE ($1 OR published)
		  AND (COALESCE(published_at, created_at), id) < ($2, $3)
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		LIMIT $4
		`, opts.IncludeDrafts, keyCur, idCur, limit+1)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	page := models.AnnouncementPage{Items: make([]models.Announcement, 0, limit)}
	for rows.Next() {
		a, scanErr := scanAnnouncement(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}
		page.Items = append(page.Items, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	// Лишняя строка запрошена, чтобы узнать, есть ли следующая страница.
	if len(page.Items) > int(limit) {
		page.Items = page.Items[:limit]
		last := page.Items[limit-1]
		page.NextPageToken = encodePageToken(sortKey(&last), last.ID)
	}

	return &page, nil
}

// encodePageToken упаковывает позицию keyset в непрозрачный токен для клиента.
func encodePageToken(key time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("%d|%s", key.UTC().UnixNano(), id.String())

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodePageToken(token string) (time.Time, uuid.UUID, error) {
	res, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}

	keyPart, idPart, ok := strings.Cut(string(res), "|")
	if !ok {
		return time.Time{}, uuid.Nil, fmt.Errorf("bad parts")
	}

	ns, err := strconv.ParseInt(keyPart, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}

	return time.Unix(0, ns).UTC(), id, nil
}
