package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
)

func (h *Handlers) ListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListStaff(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]staffResponse, 0, len(members))
	for i := range members {
		out = append(out, staffFrom(&members[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	m, err := h.svc.StaffByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, staffFrom(m))
}

func (h *Handlers) OrgChart(w http.ResponseWriter, r *http.Request) {
	roots, err := h.svc.OrgChart(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orgChartFrom(roots))
}

func (h *Handlers) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := decodeStrict(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	m, err := h.svc.CreateStaff(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, staffFrom(m))
}

func (h *Handlers) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req staffRequest
	if err := decodeStrict(w, r, &req); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	m, err := h.svc.UpdateStaff(r.Context(), id, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, staffFrom(m))
}

func (h *Handlers) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteStaff(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadStaffPhoto принимает multipart-форму с частью "file".
func (h *Handlers) UploadStaffPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	up, cleanup, err := h.readUpload(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer cleanup()

	m, err := h.svc.UploadStaffPhoto(r.Context(), id, up)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, staffFrom(m))
}
