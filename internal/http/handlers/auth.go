package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
	"github.com/pribylovaa/school-site/internal/session"
)

// Login проверяет учётные данные и ставит cookie admin_session. В теле токен
// не возвращается.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessions.NewCookie(res.Token, h.cookieSecure))
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:    res.Claims.UserID,
		Role:      res.Claims.Role,
		ExpiresAt: res.ExpiresAt.Unix(),
	})
}

// Logout только удаляет cookie; токены без состояния, отозвать их нельзя.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, session.ClearCookie(h.cookieSecure))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.Me(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, identityFrom(id))
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	err := h.svc.ChangePassword(r.Context(), session.FromContext(r.Context()), in.CurrentPassword, in.NewPassword)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	var in changeUsernameRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id, err := h.svc.ChangeUsername(r.Context(), session.FromContext(r.Context()), in.CurrentPassword, in.Username)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, identityFrom(id))
}
