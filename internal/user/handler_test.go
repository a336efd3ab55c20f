package user_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/school-platform/internal"
	transactionDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/transaction"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
	"github.com/frahmantamala/school-platform/internal/transport"
	"github.com/frahmantamala/school-platform/internal/user"
	userPostgres "github.com/frahmantamala/school-platform/internal/user/postgres"
)

var _ = Describe("Current User Handler", func() {
	var (
		db        *gorm.DB
		router    *chi.Mux
		principal *internal.Principal
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.User{}, &transactionDatamodel.Transaction{})).To(Succeed())

		Expect(db.Create(&userDatamodel.User{ID: 1, Email: "sam@example.com", Name: "Sam", PasswordHash: "x", IsActive: true}).Error).To(Succeed())
		purchases := []struct {
			courseID int64
			status   string
		}{
			{5, transactionDatamodel.StatusCompleted},
			{4, transactionDatamodel.StatusPending},
			{3, transactionDatamodel.StatusCompleted},
		}
		for _, p := range purchases {
			Expect(db.Create(&transactionDatamodel.Transaction{
				StudentID:     1,
				CourseID:      p.courseID,
				Amount:        decimal.NewFromInt(10),
				PaymentMethod: transactionDatamodel.MethodStripe,
				Status:        p.status,
			}).Error).To(Succeed())
		}

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc := user.NewService(userPostgres.NewUserRepository(db), slogger)
		handler := user.NewHandler(transport.NewBaseHandler(slogger), svc)

		principal = internal.NewPrincipal(1, "sam@example.com", 0, false, false)
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if principal != nil {
					r = r.WithContext(internal.ContextWithPrincipal(r.Context(), principal))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/users/me", handler.GetCurrentUser)
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
		return rec
	}

	It("returns the profile with completed purchases only", func() {
		rec := get()

		Expect(rec.Code).To(Equal(http.StatusOK))
		var profile user.Profile
		Expect(json.Unmarshal(rec.Body.Bytes(), &profile)).To(Succeed())
		Expect(profile.Email).To(Equal("sam@example.com"))
		Expect(profile.Roles).To(ConsistOf(internal.RoleStudent))
		Expect(profile.PurchasedCourseIDs).To(Equal([]int64{3, 5}))
	})

	It("skips the purchase lookup for staff", func() {
		principal = internal.NewPrincipal(1, "sam@example.com", 7, true, false)

		rec := get()

		Expect(rec.Code).To(Equal(http.StatusOK))
		var profile user.Profile
		Expect(json.Unmarshal(rec.Body.Bytes(), &profile)).To(Succeed())
		Expect(profile.TeacherID).To(Equal(int64(7)))
		Expect(profile.Roles).To(ContainElement(internal.RoleTeacher))
		Expect(profile.PurchasedCourseIDs).To(BeEmpty())
	})

	It("answers 401 without a principal", func() {
		principal = nil

		Expect(get().Code).To(Equal(http.StatusUnauthorized))
	})

	It("answers 404 when the user row is gone", func() {
		principal = internal.NewPrincipal(99, "ghost@example.com", 0, false, false)

		Expect(get().Code).To(Equal(http.StatusNotFound))
	})
})
