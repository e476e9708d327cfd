package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/school-site/internal/metrics"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/pkg/log"
	"github.com/pribylovaa/school-site/internal/session"
	"github.com/pribylovaa/school-site/internal/storage"
)

const (
	minPasswordLen = 8
	// bcrypt игнорирует всё после 72 байт.
	maxPasswordBytes = 72
	minUsernameLen   = 3
	maxUsernameLen   = 64
)

// LoginResult только что выпущенная сессия.
type LoginResult struct {
	Token     string
	Claims    session.Claims
	ExpiresAt time.Time
}

// Identity описывает владельца сессии.
type Identity struct {
	ID       string
	Username string
	Role     models.Role
	// FromConfig true для администратора из конфигурации.
	FromConfig bool
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// burnCompare тратит одно сравнение bcrypt: неизвестный логин стоит столько же, сколько неверный пароль.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("school-site-timing"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login проверяет сначала администратора из конфигурации, затем учётки в БД,
// и выпускает сессионный токен для совпавшей.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "service.auth.Login"

	username = strings.TrimSpace(username)
	lg := log.From(ctx).With("op", op, "username", username)

	if username == "" || password == "" {
		s.metrics.Login(metrics.LoginInvalid)
		lg.Warn("empty credentials")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if s.matchEnvAdmin(username, password) {
		return s.issue(ctx, op, models.EnvAdminID, models.RoleAdmin)
	}

	user, err := s.db.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			burnCompare(password)
			s.metrics.Login(metrics.LoginInvalid)
			lg.Warn("unknown username")

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		s.metrics.Login(metrics.LoginError)

		return nil, fromStorage(lg, op, err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		s.metrics.Login(metrics.LoginInvalid)
		lg.Warn("wrong password")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.issue(ctx, op, user.ID.String(), user.Role)
}

// matchEnvAdmin сравнивает оба поля за постоянное время, без раннего выхода.
func (s *Service) matchEnvAdmin(username, password string) bool {
	if s.cfg == nil || !s.cfg.Auth.EnvAdminEnabled() {
		return false
	}

	u := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Auth.AdminUsername))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Auth.AdminPassword))

	return u&p == 1
}

func (s *Service) issue(ctx context.Context, op, userID string, role models.Role) (*LoginResult, error) {
	lg := log.From(ctx).With("op", op, "user_id", userID)

	token, err := s.sessions.Create(userID, role.String())
	if err != nil {
		s.metrics.Login(metrics.LoginError)
		lg.Error("mint session failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.metrics.Login(metrics.LoginOK)
	lg.Info("login ok", "role", role.String())

	return &LoginResult{
		Token:     token,
		Claims:    session.Claims{UserID: userID, Role: role.String()},
		ExpiresAt: s.now().Add(s.sessions.MaxAge()),
	}, nil
}

// Me определяет владельца сессии. Сессии удалённых учёток действуют до истечения,
// но Me отвечает для них ErrNotFound.
func (s *Service) Me(ctx context.Context, claims *session.Claims) (*Identity, error) {
	const op = "service.auth.Me"

	if claims == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if claims.UserID == models.EnvAdminID {
		return &Identity{
			ID:         models.EnvAdminID,
			Username:   s.cfg.Auth.AdminUsername,
			Role:       models.Role(claims.Role),
			FromConfig: true,
		}, nil
	}

	user, err := s.currentUser(ctx, op, claims)
	if err != nil {
		return nil, err
	}

	return &Identity{ID: user.ID.String(), Username: user.Username, Role: user.Role}, nil
}

// ChangePassword меняет пароль вызывающего. Текущая сессия не перевыпускается.
func (s *Service) ChangePassword(ctx context.Context, claims *session.Claims, current, next string) error {
	const op = "service.auth.ChangePassword"

	lg := log.From(ctx).With("op", op)

	if claims == nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if claims.UserID == models.EnvAdminID {
		lg.Warn("attempt to change configured credential")
		return fmt.Errorf("%s: %w", op, ErrEnvCredential)
	}

	if err := validatePassword(next); err != nil {
		lg.Warn("weak password")
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.currentUser(ctx, op, claims)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)) != nil {
		lg.Warn("current password mismatch")
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		lg.Error("hash password failed", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.db.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fromStorage(lg, op, err)
	}

	lg.Info("password changed", "user_id", user.ID.String())

	return nil
}

// ChangeUsername переименовывает учётку вызывающего после повторной проверки пароля.
func (s *Service) ChangeUsername(ctx context.Context, claims *session.Claims, current, username string) (*Identity, error) {
	const op = "service.auth.ChangeUsername"

	lg := log.From(ctx).With("op", op)

	if claims == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if claims.UserID == models.EnvAdminID {
		lg.Warn("attempt to change configured credential")
		return nil, fmt.Errorf("%s: %w", op, ErrEnvCredential)
	}

	username, err := s.validateUsername(username)
	if err != nil {
		lg.Warn("invalid username")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.currentUser(ctx, op, claims)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)) != nil {
		lg.Warn("current password mismatch")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := s.db.UpdateUsername(ctx, user.ID, username); err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return &Identity{ID: user.ID.String(), Username: username, Role: user.Role}, nil
}

func (s *Service) currentUser(ctx context.Context, op string, claims *session.Claims) (*models.User, error) {
	lg := log.From(ctx).With("op", op, "user_id", claims.UserID)

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		lg.Warn("session user id is not a uuid")
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	user, err := s.db.UserByID(ctx, id)
	if err != nil {
		return nil, fromStorage(lg, op, err)
	}

	return user, nil
}

// validateUsername обрезает пробелы и проверяет длину и пробельные символы. Имя
// администратора из конфигурации зарезервировано, учётка в БД не может его перекрыть.
func (s *Service) validateUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)

	n := utf8.RuneCountInString(name)
	if n < minUsernameLen || n > maxUsernameLen {
		return "", ErrInvalidArgument
	}

	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", ErrInvalidArgument
		}
	}

	if s.cfg != nil && s.cfg.Auth.AdminUsername != "" && strings.EqualFold(name, s.cfg.Auth.AdminUsername) {
		return "", ErrAlreadyExists
	}

	return name, nil
}

func validatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < minPasswordLen || len(pw) > maxPasswordBytes {
		return ErrInvalidArgument
	}

	return nil
}

func requireAdmin(claims *session.Claims) error {
	if claims == nil {
		return ErrInvalidCredentials
	}

	if models.Role(claims.Role) != models.RoleAdmin {
		return ErrForbidden
	}

	return nil
}
