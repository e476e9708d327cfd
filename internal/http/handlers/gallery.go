package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
)

func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	imgs, err := h.svc.ListImages(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]imageResponse, 0, len(imgs))
	for i := range imgs {
		out = append(out, imageFrom(&imgs[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// UploadImage принимает multipart-форму с частью "file" и необязательным "title".
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	up, cleanup, err := h.readUpload(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer cleanup()

	img, err := h.svc.UploadImage(r.Context(), r.FormValue("title"), up)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, imageFrom(img))
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteImage(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
