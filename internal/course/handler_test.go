package course_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/school-platform/internal"
	transactionDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/transaction"
	"github.com/frahmantamala/school-platform/internal/course"
	"github.com/frahmantamala/school-platform/internal/transport"
)

var _ = Describe("Course Handler Integration", func() {
	var (
		e         *courseEnv
		router    *chi.Mux
		principal *internal.Principal
		c         *course.Course
		u         *course.Unit
	)

	BeforeEach(func() {
		e = newCourseEnv()
		principal = e.supervisor
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := course.NewHandler(transport.NewBaseHandler(slogger), e.service, 1<<20)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithPrincipal(r.Context(), principal)))
			})
		})
		router.Get("/courses/{id}", handler.Detail)
		router.Get("/courses/{id}/lessons", handler.Curriculum)
		router.Post("/manage/courses", handler.CreateCourse)
		router.Delete("/manage/courses/{id}", handler.DeleteCourse)
		router.Post("/manage/courses/{course_id}/units", handler.CreateUnit)
		router.Post("/manage/courses/{course_id}/units/{unit_id}/lessons", handler.CreateLesson)

		var err error
		c, err = e.service.CreateCourse(ctxBackground(), e.supervisor, course.CourseDTO{Title: "Go", Price: "20"})
		Expect(err).NotTo(HaveOccurred())
		u, err = e.service.CreateUnit(ctxBackground(), e.supervisor, c.ID, course.UnitDTO{Title: "U"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		e.close()
	})

	lessonRequest := func(filename string) *http.Request {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		Expect(mw.WriteField("title", "Lesson")).To(Succeed())
		fw, err := mw.CreateFormFile("image", filename)
		Expect(err).NotTo(HaveOccurred())
		_, _ = fw.Write([]byte("img"))
		Expect(mw.Close()).To(Succeed())

		path := "/manage/courses/" + strconv.FormatInt(c.ID, 10) + "/units/" + strconv.FormatInt(u.ID, 10) + "/lessons"
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	It("creates a lesson with a png image", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, lessonRequest("figure.png"))
		Expect(w.Code).To(Equal(http.StatusCreated))

		var l course.Lesson
		Expect(json.NewDecoder(w.Body).Decode(&l)).To(Succeed())
		Expect(*l.Image).To(HaveSuffix(".png"))
	})

	It("answers 400 for a bmp lesson image", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, lessonRequest("figure.bmp"))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 403 when a teacher deletes a course", func() {
		principal = e.teacher
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/manage/courses/"+strconv.FormatInt(c.ID, 10), nil))
		Expect(w.Code).To(Equal(http.StatusForbidden))

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/"+strconv.FormatInt(c.ID, 10), nil))
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("creates a unit from JSON", func() {
		req := httptest.NewRequest(http.MethodPost, "/manage/courses/"+strconv.FormatInt(c.ID, 10)+"/units", bytes.NewBufferString(`{"title":"Second"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	It("answers 403 on lessons of an unpurchased course", func() {
		principal = e.student
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/"+strconv.FormatInt(c.ID, 10)+"/lessons", nil))
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})
})

var _ = Describe("Course Handler delete conflicts", func() {
	var (
		e      *courseEnv
		router *chi.Mux
		c      *course.Course
	)

	BeforeEach(func() {
		e = newForeignKeyCourseEnv()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := course.NewHandler(transport.NewBaseHandler(slogger), e.service, 1<<20)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithPrincipal(r.Context(), e.supervisor)))
			})
		})
		router.Delete("/manage/courses/{id}", handler.DeleteCourse)

		var err error
		c, err = e.service.CreateCourse(ctxBackground(), e.supervisor, course.CourseDTO{Title: "Sold", Price: "12"})
		Expect(err).NotTo(HaveOccurred())
		Expect(e.db.Create(&transactionDatamodel.Transaction{
			StudentID:     4,
			CourseID:      c.ID,
			Amount:        decimal.NewFromInt(12),
			PaymentMethod: transactionDatamodel.MethodStripe,
			Status:        transactionDatamodel.StatusPending,
		}).Error).To(Succeed())
	})

	AfterEach(func() {
		e.close()
	})

	It("answers 409 and leaves the purchase in place", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/manage/courses/"+strconv.FormatInt(c.ID, 10), nil))

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeCourseHasPurchases)))

		var remaining int64
		Expect(e.db.Model(&transactionDatamodel.Transaction{}).Where("course_id = ?", c.ID).Count(&remaining).Error).To(Succeed())
		Expect(remaining).To(Equal(int64(1)))
	})
})
