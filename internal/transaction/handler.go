package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	metrics *Metrics
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI, metrics *Metrics) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     service,
		metrics:     metrics,
	}
}

func courseLocation(courseID int64) string {
	return fmt.Sprintf("/courses/%d", courseID)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, appErr := h.PathID(r, "course_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	page, err := h.Service.CheckoutPage(r.Context(), p, courseID)
	if errors.Is(err, ErrAlreadyPurchased) {
		h.Redirect(w, r, courseLocation(courseID))
		return
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) StripeIntent(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, appErr := h.PathID(r, "course_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	intent, err := h.Service.StartCheckout(r.Context(), p, courseID)
	if errors.Is(err, ErrAlreadyPurchased) {
		h.metrics.checkout("already_purchased")
		h.Redirect(w, r, courseLocation(courseID))
		return
	}
	if err != nil {
		h.metrics.checkout("failed")
		h.HandleServiceError(w, err)
		return
	}

	h.metrics.checkout("started")
	h.WriteJSON(w, http.StatusOK, intent)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CompleteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	t, err := h.Service.Complete(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) PublishableKey(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, PublishableKeyResponse{PublishableKey: h.Service.PublishableKey()})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	rows, err := h.Service.Export(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := WriteWorkbook(w, rows); err != nil {
		h.Logger.Error("failed to stream transactions export", "error", err, "rows", len(rows))
	}
}
