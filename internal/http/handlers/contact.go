package handlers

import (
	"net"
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
	"github.com/pribylovaa/school-site/internal/service"
)

func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in contactRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	msg, err := h.svc.SubmitContact(r.Context(), service.ContactInput{
		Name:         in.Name,
		Email:        in.Email,
		Subject:      in.Subject,
		Message:      in.Message,
		CaptchaToken: in.CaptchaToken,
		RemoteIP:     clientIP(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": msg.ID.String()})
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.ListMessages(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]messageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageFrom(&msgs[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.MarkMessageRead(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteMessage(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clientIP адрес пира, как его видит сервер.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
