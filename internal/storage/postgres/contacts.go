package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-site/internal/models"
)

func (s *Storage) SaveMessage(ctx context.Context, msg *models.ContactMessage) error {
	const op = "storage.postgres.SaveMessage"

	_, err := s.db.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Read, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapWriteErr(err))
	}

	return nil
}

// ListMessages возвращает входящие, новые первыми.
func (s *Storage) ListMessages(ctx context.Context) ([]models.ContactMessage, error) {
	const op = "storage.postgres.ListMessages"

	rows, err := s.db.Query(ctx, `
		SELECT id, name, email, subject, message, read, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.ContactMessage, 0)
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return out, nil
}

func (s *Storage) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.MarkMessageRead"

	tag, err := s.db.Exec(ctx, `UPDATE contact_messages SET read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := expectOne(tag); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteMessage"

	tag, err := s.db.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := expectOne(tag); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
