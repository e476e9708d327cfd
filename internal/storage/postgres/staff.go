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

const staffColumns = `id, name, position, department, email, photo_key, photo_url, reports_to, sort_order`

func scanStaff(row rowScanner) (*models.StaffMember, error) {
	var m models.StaffMember

	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Position,
		&m.Department,
		&m.Email,
		&m.PhotoKey,
		&m.PhotoURL,
		&m.ReportsTo,
		&m.SortOrder,
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateStaff добавляет сотрудника. Неизвестный ReportsTo даёт storage.ErrInvalidArgument.
func (s *Storage) CreateStaff(ctx context.Context, m *models.StaffMember) error {
	const op = "storage.postgres.CreateStaff"

	_, err := s.db.Exec(ctx, `
		INSERT INTO staff (id, name, position, department, email, photo_key, photo_url, reports_to, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.ID, m.Name, m.Position, m.Department, m.Email, m.PhotoKey, m.PhotoURL, m.ReportsTo, m.SortOrder)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapWriteErr(err))
	}

	return nil
}

// UpdateStaff заменяет поля профиля. Фото меняет только SetStaffPhoto.
func (s *Storage) UpdateStaff(ctx context.Context, m *models.StaffMember) (*models.StaffMember, error) {
	const op = "storage.postgres.UpdateStaff"

	out, err := scanStaff(s.db.QueryRow(ctx, `
		UPDATE staff
		SET name = $2, position = $3, department = $4, email = $5, reports_to = $6, sort_order = $7
		WHERE id = $1
		RETURNING `+staffColumns,
		m.ID, m.Name, m.Position, m.Department, m.Email, m.ReportsTo, m.SortOrder))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, mapWriteErr(err))
	}

	return out, nil
}

// DeleteStaff удаляет сотрудника; прямых подчинённых отвязывает схема.
func (s *Storage) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteStaff"

	tag, err := s.db.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := expectOne(tag); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) StaffByID(ctx context.Context, id uuid.UUID) (*models.StaffMember, error) {
	const op = "storage.postgres.StaffByID"

	m, err := scanStaff(s.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (s *Storage) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	const op = "storage.postgres.ListStaff"

	rows, err := s.db.Query(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY sort_order, name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.StaffMember, 0)
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		out = append(out, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return out, nil
}

// SetStaffPhoto записывает загруженное фото. Вызывать после сохранения blob.
func (s *Storage) SetStaffPhoto(ctx context.Context, id uuid.UUID, key, publicURL string) (*models.StaffMember, error) {
	const op = "storage.postgres.SetStaffPhoto"

	m, err := scanStaff(s.db.QueryRow(ctx, `
		UPDATE staff SET photo_key = $2, photo_url = $3
		WHERE id = $1
		RETURNING `+staffColumns, id, key, publicURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}
