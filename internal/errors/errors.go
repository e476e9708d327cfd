// errors стандартизирует HTTP-ответы об ошибках API сайта.
// Сентинелы сервиса отображаются в код статуса и короткий машинный код;
// сообщения фиксированные, внутренние детали до клиента не доходят.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/school-site/internal/service"
)

// StatusClientClosedRequest нестандартный статус для ушедшего клиента.
const StatusClientClosedRequest = 499

// ErrBadRequest помечает ошибки ввода на уровне транспорта (битый JSON, плохие параметры пути).
var ErrBadRequest = errors.New("bad request")

// APIError формат тела ошибки для фронтенда.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse корневой объект тела ошибки.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP переводит err в статус и тело ответа.
// nil err это ошибка программиста, он даёт 500, а не молчаливый 200.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)

	return status, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError пишет статус и тело для err, добавляя X-Request-Id, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string, string) {
	var maxBytes *http.MaxBytesError

	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "payload_too_large", "payload too large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "already_exists", "already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "permission_denied", "permission denied"
	case errors.Is(err, service.ErrEnvCredential):
		return http.StatusConflict, "env_credential", "credential is managed by configuration"
	case errors.Is(err, service.ErrCaptchaFailed):
		return http.StatusUnprocessableEntity, "captcha_failed", "captcha verification failed"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
