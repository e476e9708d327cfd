package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
)

func (h *Handlers) RecordView(w http.ResponseWriter, r *http.Request) {
	var in viewRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.RecordView(r.Context(), in.Path); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ViewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.ViewStats(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Paths: stats.Paths, Days: stats.Days})
}
