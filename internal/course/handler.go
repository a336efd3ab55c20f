package course

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/frahmantamala/school-platform/internal"
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

// ----------------- CATALOGUE -----------------

func (h *Handler) Catalogue(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.Catalogue(r.Context(), h.Page(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	p, _ := internal.PrincipalFromContext(r.Context())

	detail, err := h.Service.Detail(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) Curriculum(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	units, err := h.Service.Curriculum(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"units": units})
}

// ----------------- COURSES -----------------

func (h *Handler) ManageCourses(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	page, err := h.Service.ManageCourses(r.Context(), p, h.Page(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	dto, appErr := h.courseForm(w, r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	c, err := h.Service.CreateCourse(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	dto, appErr := h.courseForm(w, r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	c, err := h.Service.UpdateCourse(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Service.DeleteCourse)
}

// ----------------- UNITS -----------------

func (h *Handler) ManageUnits(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, appErr := h.PathID(r, "course_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	units, err := h.Service.ManageUnits(r.Context(), p, courseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"units": units})
}

func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, appErr := h.PathID(r, "course_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	dto, appErr := decodeUnit(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	u, err := h.Service.CreateUnit(r.Context(), p, courseID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, appErr := h.PathID(r, "course_id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	dto, appErr := decodeUnit(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	u, err := h.Service.UpdateUnit(r.Context(), p, courseID, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Service.DeleteUnit)
}

// ----------------- LESSONS -----------------

func (h *Handler) ManageLessons(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, unitID, appErr := h.unitPath(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	lessons, err := h.Service.ManageLessons(r.Context(), p, courseID, unitID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"lessons": lessons})
}

func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, unitID, appErr := h.unitPath(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	dto, appErr := h.lessonForm(w, r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	l, err := h.Service.CreateLesson(r.Context(), p, courseID, unitID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	courseID, unitID, appErr := h.unitPath(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	dto, appErr := h.lessonForm(w, r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	l, err := h.Service.UpdateLesson(r.Context(), p, courseID, unitID, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Service.DeleteLesson)
}

// ----------------- HELPERS -----------------

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, p *internal.Principal, id int64) error) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	if err := fn(r.Context(), p, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unitPath(r *http.Request) (int64, int64, *internal.AppError) {
	courseID, appErr := h.PathID(r, "course_id")
	if appErr != nil {
		return 0, 0, appErr
	}
	unitID, appErr := h.PathID(r, "unit_id")
	if appErr != nil {
		return 0, 0, appErr
	}
	return courseID, unitID, nil
}

func (h *Handler) courseForm(w http.ResponseWriter, r *http.Request) (CourseDTO, *internal.AppError) {
	uploads, appErr := transport.ReadUploads(w, r, h.maxUploadBytes, "image")
	if appErr != nil {
		return CourseDTO{}, appErr
	}
	return CourseDTO{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		TeacherID:   r.FormValue("teacher_id"),
		Image:       uploads["image"],
	}, nil
}

func (h *Handler) lessonForm(w http.ResponseWriter, r *http.Request) (LessonDTO, *internal.AppError) {
	uploads, appErr := transport.ReadUploads(w, r, h.maxUploadBytes, "image", "video")
	if appErr != nil {
		return LessonDTO{}, appErr
	}
	return LessonDTO{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Image:   uploads["image"],
		Video:   uploads["video"],
	}, nil
}

func decodeUnit(r *http.Request) (UnitDTO, *internal.AppError) {
	var dto UnitDTO
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			return dto, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
		}
		return dto, nil
	}
	dto.Title = r.FormValue("title")
	dto.Description = r.FormValue("description")
	return dto, nil
}
