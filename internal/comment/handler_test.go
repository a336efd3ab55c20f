package comment_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/comment"
	commentPostgres "github.com/frahmantamala/school-platform/internal/comment/postgres"
	articleDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/article"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
	"github.com/frahmantamala/school-platform/internal/transport"
)

var _ = Describe("Comment Handler Integration", func() {
	var (
		db        *gorm.DB
		router    *chi.Mux
		article   *articleDatamodel.Article
		principal *internal.Principal
	)

	withPrincipal := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal != nil {
				r = r.WithContext(internal.ContextWithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}

	BeforeEach(func() {
		db = openTestDB()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := comment.NewHandler(transport.NewBaseHandler(slogger), comment.NewService(commentPostgres.NewCommentRepository(db), slogger))

		u := &userDatamodel.User{Email: "s@example.com", Name: "Sara", PasswordHash: "x", IsActive: true}
		Expect(db.Create(u).Error).To(Succeed())
		article = &articleDatamodel.Article{Title: "T", Content: "C", StudentID: u.ID}
		Expect(db.Create(article).Error).To(Succeed())
		principal = internal.NewPrincipal(u.ID, u.Email, 0, false, false)

		router = chi.NewRouter()
		router.Use(withPrincipal)
		router.Post("/articles/{id}/comments", handler.AddToArticle)
		router.Post("/articles/{id}/comments/{comment_id}/replies", handler.Reply)
		router.Delete("/manage/comments/{id}", handler.Delete)
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	articlePath := func() string { return "/articles/" + strconv.FormatInt(article.ID, 10) }

	It("creates a comment from a form post", func() {
		form := url.Values{"content": {"hello"}}
		req := httptest.NewRequest(http.MethodPost, articlePath()+"/comments", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var c comment.Comment
		Expect(json.NewDecoder(w.Body).Decode(&c)).To(Succeed())
		Expect(c.Content).To(Equal("hello"))
		Expect(c.Receiver.Kind).To(Equal(comment.ReceiverArticle))
	})

	It("rejects an empty JSON comment with 400", func() {
		req := httptest.NewRequest(http.MethodPost, articlePath()+"/comments", strings.NewReader(`{"content":""}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 401 without a principal", func() {
		principal = nil
		req := httptest.NewRequest(http.MethodPost, articlePath()+"/comments", strings.NewReader(`{"content":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("answers 403 when a student deletes a comment", func() {
		req := httptest.NewRequest(http.MethodPost, articlePath()+"/comments", strings.NewReader(`{"content":"keep me"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var c comment.Comment
		Expect(json.NewDecoder(w.Body).Decode(&c)).To(Succeed())

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/manage/comments/"+strconv.FormatInt(c.ID, 10), nil))
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("answers 400 for a reply to a reply", func() {
		post := func(path string) (int, comment.Comment) {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"content":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			var c comment.Comment
			_ = json.NewDecoder(w.Body).Decode(&c)
			return w.Code, c
		}

		code, top := post(articlePath() + "/comments")
		Expect(code).To(Equal(http.StatusCreated))
		code, reply := post(articlePath() + "/comments/" + strconv.FormatInt(top.ID, 10) + "/replies")
		Expect(code).To(Equal(http.StatusCreated))
		code, _ = post(articlePath() + "/comments/" + strconv.FormatInt(reply.ID, 10) + "/replies")
		Expect(code).To(Equal(http.StatusBadRequest))
	})
})
