// service содержит бизнес-логику школьного сайта:
//   - аутентификация в админке и управление учётками;
//   - объявления, справочник персонала с оргструктурой, галерея;
//   - публичная форма обратной связи и аналитика просмотров.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/school-site/internal/captcha"
	"github.com/pribylovaa/school-site/internal/config"
	"github.com/pribylovaa/school-site/internal/metrics"
	"github.com/pribylovaa/school-site/internal/session"
	"github.com/pribylovaa/school-site/internal/storage"
)

var (
	// ErrInvalidArgument - ввод не прошёл валидацию.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound - сущности нет.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists - конфликт уникальности (username).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials - неверный логин/пароль или нет действующей сессии.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden - роль сессии не разрешает операцию.
	ErrForbidden = errors.New("forbidden")
	// ErrEnvCredential - учётку администратора из конфигурации нельзя менять в рантайме.
	ErrEnvCredential = errors.New("credential is managed by configuration")
	// ErrCaptchaFailed - капча формы обратной связи не пройдена.
	ErrCaptchaFailed = errors.New("captcha failed")
	// ErrInternal - сбой хранилища или провайдера.
	ErrInternal = errors.New("internal")
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// Deps зависимости Service. Metrics может быть nil.
type Deps struct {
	DB       storage.Database
	Blobs    storage.Blobs
	Counters storage.Counters
	Captcha  captcha.Verifier
	Sessions *session.Service
	Metrics  *metrics.Metrics
}

// Service фасад бизнес-логики для транспорта.
type Service struct {
	db       storage.Database
	blobs    storage.Blobs
	counters storage.Counters
	captcha  captcha.Verifier
	sessions *session.Service
	metrics  *metrics.Metrics
	cfg      *config.Config

	now func() time.Time
}

// New собирает сервис. Лимиты загрузки и учётка администратора берутся из cfg.
func New(deps Deps, cfg *config.Config) *Service {
	return &Service{
		db:       deps.DB,
		blobs:    deps.Blobs,
		counters: deps.Counters,
		captcha:  deps.Captcha,
		sessions: deps.Sessions,
		metrics:  deps.Metrics,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// fromStorage отображает сентинелы storage в ошибки сервиса. Ошибки контекста
// сохраняются, чтобы транспорт отличал обрыв клиента от сбоя.
func fromStorage(lg *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		lg.Warn("not found")
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, storage.ErrAlreadyExists):
		lg.Warn("already exists")
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	case errors.Is(err, storage.ErrInvalidArgument), errors.Is(err, storage.ErrInvalidCursor):
		lg.Warn("rejected by storage", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		lg.Warn("context done", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	default:
		lg.Error("storage error", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}
}

func clampLimit(limit int32) int32 {
	switch {
	case limit <= 0:
		return defaultPageLimit
	case limit > maxPageLimit:
		return maxPageLimit
	default:
		return limit
	}
}
