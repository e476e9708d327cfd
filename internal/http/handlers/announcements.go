package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/session"
)

func (h *Handlers) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	h.listAnnouncements(w, r, false)
}

// ListAllAnnouncements список для админки, вместе с черновиками.
func (h *Handlers) ListAllAnnouncements(w http.ResponseWriter, r *http.Request) {
	h.listAnnouncements(w, r, true)
}

func (h *Handlers) listAnnouncements(w http.ResponseWriter, r *http.Request, drafts bool) {
	limit, err := queryLimit(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.svc.ListAnnouncements(r.Context(), models.ListOptions{
		Limit:         limit,
		PageToken:     r.URL.Query().Get("page_token"),
		IncludeDrafts: drafts,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, announcementPageFrom(page))
}

func (h *Handlers) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	h.getAnnouncement(w, r, false)
}

func (h *Handlers) GetAnyAnnouncement(w http.ResponseWriter, r *http.Request) {
	h.getAnnouncement(w, r, true)
}

func (h *Handlers) getAnnouncement(w http.ResponseWriter, r *http.Request, drafts bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	a, err := h.svc.AnnouncementByID(r.Context(), id, drafts)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, announcementFrom(a))
}

func (h *Handlers) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var in announcementRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	a, err := h.svc.CreateAnnouncement(r.Context(), session.FromContext(r.Context()), in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, announcementFrom(a))
}

func (h *Handlers) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in announcementRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	a, err := h.svc.UpdateAnnouncement(r.Context(), id, in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, announcementFrom(a))
}

func (h *Handlers) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteAnnouncement(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
