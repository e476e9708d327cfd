package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
	"github.com/pribylovaa/school-site/internal/session"
)

type CreateUserInput struct {
	Username string
	Password string
	Role     models.Role
}

// ListUsers возвращает все учётки админки. Только для admin.
func (s *Service) ListUsers(ctx context.Context, claims *session.Claims) ([]models.User, error) {
	const op = "service.users.ListUsers"

	lg := log.From(ctx).With("op", op)

	if err := requireAdmin(claims); err != nil {
		lg.Warn("denied", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return users, nil
}

// CreateUser добавляет учётку. Только для admin.
func (s *Service) CreateUser(ctx context.Context, claims *session.Claims, in CreateUserInput) (*models.User, error) {
	const op = "service.users.CreateUser"

	lg := log.From(ctx).With("op", op)

	if err := requireAdmin(claims); err != nil {
		lg.Warn("denied", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	username, err := s.validateUsername(in.Username)
	if err != nil {
		lg.Warn("invalid username")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !in.Role.Valid() {
		lg.Warn("invalid role", "role", in.Role.String())
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := validatePassword(in.Password); err != nil {
		lg.Warn("weak password")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		lg.Error("hash password failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.SaveUser(ctx, user); err != nil {
		return nil, fromStorage(lg, op, err)
	}

	lg.Info("user created", "user_id", user.ID.String(), "role", user.Role.String())

	return user, nil
}

// DeleteUser удаляет учётку. Только для admin; свою учётку удалить нельзя.
// Выданные сессии удалённой учётки действуют до истечения.
func (s *Service) DeleteUser(ctx context.Context, claims *session.Claims, id uuid.UUID) error {
	const op = "service.users.DeleteUser"

	lg := log.From(ctx).With("op", op, "target_id", id.String())

	if err := requireAdmin(claims); err != nil {
		lg.Warn("denied", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if id == uuid.Nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if claims.UserID == id.String() {
		lg.Warn("self delete rejected")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.db.DeleteUser(ctx, id); err != nil {
		return fromStorage(lg, op, err)
	}

	lg.Info("user deleted")

	return nil
}
