package article

import (
	"net/http"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/storage"
	"github.com/frahmantamala/school-platform/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	maxUploadBytes int64
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI, maxUploadBytes int64) *Handler {
	return &Handler{
		BaseHandler:    base,
		Service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.List(r.Context(), h.Page(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	page, err := h.Service.ListMine(r.Context(), p, h.Page(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	detail, err := h.Service.Detail(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	image, appErr := h.readForm(w, r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	a, err := h.Service.Create(r.Context(), p, CreateArticleDTO{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Image:   image,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	image, appErr := h.readForm(w, r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	a, err := h.Service.Update(r.Context(), p, id, UpdateArticleDTO{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Image:   image,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	if err := h.Service.Delete(r.Context(), p, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (*storage.Upload, *internal.AppError) {
	uploads, appErr := transport.ReadUploads(w, r, h.maxUploadBytes, "image")
	if appErr != nil {
		return nil, appErr
	}
	return uploads["image"], nil
}
