package comment

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     service,
	}
}

func (h *Handler) AddToArticle(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	articleID, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	dto, appErr := decodeComment(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	c, err := h.Service.AddToArticle(r.Context(), p, articleID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	articleID, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	parentID, appErr := h.PathID(r, "comment_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	dto, appErr := decodeComment(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	c, err := h.Service.Reply(r.Context(), p, articleID, parentID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	page, err := h.Service.List(r.Context(), p, h.Page(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
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

// decodeComment accepts either a JSON body or a form post.
func decodeComment(r *http.Request) (CreateCommentDTO, *internal.AppError) {
	var dto CreateCommentDTO
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			return dto, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
		}
		return dto, nil
	}
	dto.Content = r.FormValue("content")
	return dto, nil
}
