package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-site/internal/captcha"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
	"github.com/pribylovaa/school-site/internal/pkg/redact"
)

const (
	maxNameLen    = 200
	maxSubjectLen = 200
	maxMessageLen = 5000
)

type ContactInput struct {
	Name         string
	Email        string
	Subject      string
	Message      string
	CaptchaToken string
	RemoteIP     string
}

func (in *ContactInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	if in.Name == "" || utf8.RuneCountInString(in.Name) > maxNameLen {
		return ErrInvalidArgument
	}

	if utf8.RuneCountInString(in.Subject) > maxSubjectLen {
		return ErrInvalidArgument
	}

	if in.Message == "" || utf8.RuneCountInString(in.Message) > maxMessageLen {
		return ErrInvalidArgument
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return ErrInvalidArgument
	}
	in.Email = addr.Address

	return nil
}

// SubmitContact валидирует форму, проверяет капчу и сохраняет сообщение.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	const op = "service.contact.SubmitContact"

	lg := log.From(ctx).With("op", op)

	if err := in.normalize(); err != nil {
		lg.Warn("invalid contact form")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg = lg.With("email", redact.Email(in.Email))

	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, in.CaptchaToken, in.RemoteIP); err != nil {
			switch {
			case errors.Is(err, captcha.ErrRejected), errors.Is(err, captcha.ErrMissingToken):
				lg.Warn("captcha failed")
				return nil, fmt.Errorf("%s: %w", op, ErrCaptchaFailed)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return nil, fmt.Errorf("%s: %w", op, err)
			default:
				lg.Error("captcha provider error", "err", err)
				return nil, fmt.Errorf("%s: %w", op, ErrInternal)
			}
		}
	}

	msg := &models.ContactMessage{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now(),
	}

	if err := s.db.SaveMessage(ctx, msg); err != nil {
		return nil, fromStorage(lg, op, err)
	}

	lg.Info("contact message stored", "id", msg.ID.String())

	return msg, nil
}

func (s *Service) ListMessages(ctx context.Context) ([]models.ContactMessage, error) {
	const op = "service.contact.ListMessages"

	lg := log.From(ctx).With("op", op)

	msgs, err := s.db.ListMessages(ctx)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return msgs, nil
}

func (s *Service) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	const op = "service.contact.MarkMessageRead"

	lg := log.From(ctx).With("op", op, "id", id.String())

	if err := s.db.MarkMessageRead(ctx, id); err != nil {
		return fromStorage(lg, op, err)
	}

	return nil
}

func (s *Service) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	const op = "service.contact.DeleteMessage"

	lg := log.From(ctx).With("op", op, "id", id.String())

	if err := s.db.DeleteMessage(ctx, id); err != nil {
		return fromStorage(lg, op, err)
	}

	return nil
}
