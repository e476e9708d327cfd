package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
	"github.com/pribylovaa/school-site/internal/service"
	"github.com/pribylovaa/school-site/internal/session"
)

// maxJSONBody ограничивает тело запросов JSON-эндпоинтов.
const maxJSONBody = 1 << 20

// Handlers связывает HTTP-запросы с сервисным слоем.
type Handlers struct {
	svc      *service.Service
	sessions *session.Service

	cookieSecure   bool
	maxUploadBytes int64
}

// Options параметры хендлеров, не зависящие от сервиса.
type Options struct {
	CookieSecure   bool
	MaxUploadBytes int64
}

// New собирает хендлеры поверх svc и sessions.
func New(svc *service.Service, sessions *session.Service, opts Options) *Handlers {
	return &Handlers{
		svc:            svc,
		sessions:       sessions,
		cookieSecure:   opts.CookieSecure,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// writeJSON пишет value с кодом status. Ошибки идут через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict отклоняет неизвестные поля, хвост после JSON и тела больше maxJSONBody.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: %w", apierrors.ErrBadRequest, err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apierrors.ErrBadRequest
	}

	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apierrors.ErrBadRequest
	}
	return id, nil
}

func queryLimit(r *http.Request) (int32, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, apierrors.ErrBadRequest
	}

	return int32(n), nil
}
