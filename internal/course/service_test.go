package course_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/school-platform/internal"
	courseDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/course"
	transactionDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/transaction"
	"github.com/frahmantamala/school-platform/internal/course"
	coursePostgres "github.com/frahmantamala/school-platform/internal/course/postgres"
	"github.com/frahmantamala/school-platform/internal/storage"
)

type recordingPutter struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (p *recordingPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if p.err != nil {
		return nil, p.err
	}
	body, _ := io.ReadAll(in.Body)
	p.keys = append(p.keys, aws.ToString(in.Key))
	p.bodies = append(p.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

type stubPurchases map[[2]int64]bool

func (s stubPurchases) HasPurchased(_ context.Context, studentID, courseID int64) (bool, error) {
	return s[[2]int64{studentID, courseID}], nil
}

type courseEnv struct {
	db         *gorm.DB
	service    *course.Service
	putter     *recordingPutter
	purchases  stubPurchases
	supervisor *internal.Principal
	teacher    *internal.Principal
	outsider   *internal.Principal
	student    *internal.Principal
}

func newCourseEnv() *courseEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	Expect(err).NotTo(HaveOccurred())
	Expect(db.AutoMigrate(&courseDatamodel.Course{}, &courseDatamodel.Unit{}, &courseDatamodel.Lesson{})).To(Succeed())
	return buildCourseEnv(db)
}

// newForeignKeyCourseEnv enforces foreign keys and translates driver errors the
// way the server's gorm setup does.
func newForeignKeyCourseEnv() *courseEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	Expect(db.Exec("PRAGMA foreign_keys = ON").Error).To(Succeed())
	Expect(db.AutoMigrate(
		&courseDatamodel.Course{}, &courseDatamodel.Unit{}, &courseDatamodel.Lesson{},
		&transactionDatamodel.Transaction{},
	)).To(Succeed())
	return buildCourseEnv(db)
}

func buildCourseEnv(db *gorm.DB) *courseEnv {

	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	putter := &recordingPutter{}
	gateway := storage.NewGateway(putter, internal.StorageConfig{Bucket: "media", Region: "us-east-1", UploadFolder: "uploads"}, slogger)
	purchases := stubPurchases{}

	return &courseEnv{
		db:         db,
		service:    course.NewService(coursePostgres.NewCourseRepository(db), purchases, gateway, slogger),
		putter:     putter,
		purchases:  purchases,
		supervisor: internal.NewPrincipal(1, "head@example.com", 100, true, true),
		teacher:    internal.NewPrincipal(2, "owner@example.com", 200, true, false),
		outsider:   internal.NewPrincipal(3, "other@example.com", 300, true, false),
		student:    internal.NewPrincipal(4, "student@example.com", 0, false, false),
	}
}

func ctxBackground() context.Context {
	return context.Background()
}

func (e *courseEnv) close() {
	sqlDB, _ := e.db.DB()
	_ = sqlDB.Close()
}

var _ = Describe("Course Service", func() {
	var (
		e   *courseEnv
		ctx context.Context
		c   *course.Course
		u   *course.Unit
	)

	BeforeEach(func() {
		e = newCourseEnv()
		ctx = context.Background()

		var err error
		c, err = e.service.CreateCourse(ctx, e.supervisor, course.CourseDTO{Title: "Go", Description: "Learn Go", Price: "49.50", TeacherID: "200"})
		Expect(err).NotTo(HaveOccurred())
		u, err = e.service.CreateUnit(ctx, e.supervisor, c.ID, course.UnitDTO{Title: "Basics"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		e.close()
	})

	Describe("CreateCourse", func() {
		It("stores the decimal price and owning teacher", func() {
			stored, err := e.service.Detail(ctx, nil, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Price.Equal(decimal.RequireFromString("49.5"))).To(BeTrue())
			Expect(*stored.TeacherID).To(Equal(int64(200)))
		})

		It("is reserved to supervisors", func() {
			_, err := e.service.CreateCourse(ctx, e.teacher, course.CourseDTO{Title: "X", Price: "1"})
			Expect(errors.Is(err, internal.ErrSupervisorOnly)).To(BeTrue())
		})

		It("rejects a malformed price", func() {
			_, err := e.service.CreateCourse(ctx, e.supervisor, course.CourseDTO{Title: "X", Price: "cheap"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects a negative price", func() {
			_, err := e.service.CreateCourse(ctx, e.supervisor, course.CourseDTO{Title: "X", Price: "-3"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("uploads a course image without checking its extension", func() {
			created, err := e.service.CreateCourse(ctx, e.supervisor, course.CourseDTO{
				Title: "Art", Price: "10",
				Image: &storage.Upload{Filename: "banner.webp", Data: []byte("webp")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*created.Image).To(HaveSuffix(".webp"))
		})
	})

	Describe("UpdateCourse", func() {
		It("lets the owning teacher update", func() {
			updated, err := e.service.UpdateCourse(ctx, e.teacher, c.ID, course.CourseDTO{Title: "Go 2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Go 2"))
			Expect(updated.Description).To(Equal("Learn Go"))
		})

		It("does not let a teacher reassign the course", func() {
			updated, err := e.service.UpdateCourse(ctx, e.teacher, c.ID, course.CourseDTO{TeacherID: "300"})
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.TeacherID).To(Equal(int64(200)))
		})

		It("forbids other teachers", func() {
			_, err := e.service.UpdateCourse(ctx, e.outsider, c.ID, course.CourseDTO{Title: "Mine now"})
			Expect(errors.Is(err, internal.ErrNotOwner)).To(BeTrue())
		})

		It("forbids students", func() {
			_, err := e.service.UpdateCourse(ctx, e.student, c.ID, course.CourseDTO{Title: "x"})
			Expect(errors.Is(err, internal.ErrStaffOnly)).To(BeTrue())
		})
	})

	Describe("Lessons", func() {
		It("stores a .png lesson image under a fresh name", func() {
			l, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{
				Title: "Intro",
				Image: &storage.Upload{Filename: "my diagram.png", ContentType: "image/png", Data: []byte("png")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*l.Image).To(HaveSuffix(".png"))
			Expect(*l.Image).NotTo(ContainSubstring("diagram"))
			Expect(*l.Image).To(MatchRegexp(`^https://media\.s3\.us-east-1\.amazonaws\.com/uploads/[0-9a-f]{32}\.png$`))
			Expect(e.putter.bodies[0]).To(Equal([]byte("png")))
		})

		It("rejects a lesson image with a disallowed extension before uploading", func() {
			_, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{
				Title: "Intro",
				Image: &storage.Upload{Filename: "diagram.gif", Data: []byte("gif")},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(e.putter.keys).To(BeEmpty())
		})

		It("accepts only mp4 videos", func() {
			_, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{
				Title: "Clip",
				Video: &storage.Upload{Filename: "clip.mov", Data: []byte("mov")},
			})
			Expect(err).To(HaveOccurred())

			l, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{
				Title: "Clip",
				Video: &storage.Upload{Filename: "clip.MP4", Data: []byte("mp4")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Video).NotTo(BeNil())
		})

		It("does not save the lesson when the upload fails", func() {
			e.putter.err = errors.New("bucket gone")
			_, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{
				Title: "Intro",
				Image: &storage.Upload{Filename: "a.jpg", Data: []byte("jpg")},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))

			var count int64
			e.db.Model(&courseDatamodel.Lesson{}).Count(&count)
			Expect(count).To(BeZero())
		})

		It("rejects a unit that belongs to another course", func() {
			other, err := e.service.CreateCourse(ctx, e.supervisor, course.CourseDTO{Title: "Other", Price: "5"})
			Expect(err).NotTo(HaveOccurred())

			_, err = e.service.CreateLesson(ctx, e.supervisor, other.ID, u.ID, course.LessonDTO{Title: "x"})
			Expect(errors.Is(err, internal.ErrUnitNotFound)).To(BeTrue())
		})
	})

	Describe("Deletes", func() {
		It("forbids a teacher from deleting and keeps the course", func() {
			err := e.service.DeleteCourse(ctx, e.teacher, c.ID)
			Expect(errors.Is(err, internal.ErrSupervisorOnly)).To(BeTrue())

			_, err = e.service.Detail(ctx, nil, c.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("cascades a course delete to units and lessons", func() {
			_, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{Title: "L"})
			Expect(err).NotTo(HaveOccurred())

			Expect(e.service.DeleteCourse(ctx, e.supervisor, c.ID)).To(Succeed())

			var units, lessons int64
			e.db.Model(&courseDatamodel.Unit{}).Count(&units)
			e.db.Model(&courseDatamodel.Lesson{}).Count(&lessons)
			Expect(units).To(BeZero())
			Expect(lessons).To(BeZero())
		})

		It("forbids a student from deleting a lesson", func() {
			l, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{Title: "L"})
			Expect(err).NotTo(HaveOccurred())

			Expect(errors.Is(e.service.DeleteLesson(ctx, e.student, l.ID), internal.ErrSupervisorOnly)).To(BeTrue())
			Expect(errors.Is(e.service.DeleteUnit(ctx, e.student, u.ID), internal.ErrSupervisorOnly)).To(BeTrue())
		})
	})

	Describe("Curriculum", func() {
		BeforeEach(func() {
			_, err := e.service.CreateLesson(ctx, e.supervisor, c.ID, u.ID, course.LessonDTO{Title: "L1"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("is forbidden before purchase", func() {
			_, err := e.service.Curriculum(ctx, e.student, c.ID)
			Expect(errors.Is(err, internal.ErrCourseNotPurchased)).To(BeTrue())
		})

		It("is open after a completed purchase", func() {
			e.purchases[[2]int64{e.student.UserID, c.ID}] = true

			units, err := e.service.Curriculum(ctx, e.student, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(HaveLen(1))
			Expect(units[0].Lessons).To(HaveLen(1))

			detail, err := e.service.Detail(ctx, e.student, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Purchased).To(BeTrue())
		})

		It("is open to staff", func() {
			units, err := e.service.Curriculum(ctx, e.outsider, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(HaveLen(1))
		})
	})

	Describe("Manage listings", func() {
		It("are limited to staff", func() {
			_, err := e.service.ManageCourses(ctx, e.student, 1)
			Expect(errors.Is(err, internal.ErrStaffOnly)).To(BeTrue())
			_, err = e.service.ManageUnits(ctx, e.student, c.ID)
			Expect(errors.Is(err, internal.ErrStaffOnly)).To(BeTrue())
		})

		It("list units and lessons of a course for teachers", func() {
			units, err := e.service.ManageUnits(ctx, e.outsider, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(HaveLen(1))

			lessons, err := e.service.ManageLessons(ctx, e.outsider, c.ID, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(lessons).To(BeEmpty())
		})
	})
})

var _ = Describe("Course deletion with purchases", func() {
	var (
		e   *courseEnv
		ctx context.Context
		c   *course.Course
	)

	BeforeEach(func() {
		e = newForeignKeyCourseEnv()
		ctx = context.Background()

		var err error
		c, err = e.service.CreateCourse(ctx, e.supervisor, course.CourseDTO{Title: "Paid", Price: "30"})
		Expect(err).NotTo(HaveOccurred())
		_, err = e.service.CreateUnit(ctx, e.supervisor, c.ID, course.UnitDTO{Title: "Intro"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		e.close()
	})

	countRows := func(model interface{}) int64 {
		var n int64
		Expect(e.db.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	It("refuses with a conflict and keeps the transaction, course and units", func() {
		Expect(e.db.Create(&transactionDatamodel.Transaction{
			StudentID:     9,
			CourseID:      c.ID,
			Amount:        decimal.NewFromInt(30),
			PaymentMethod: transactionDatamodel.MethodStripe,
			Status:        transactionDatamodel.StatusCompleted,
		}).Error).To(Succeed())

		err := e.service.DeleteCourse(ctx, e.supervisor, c.ID)

		Expect(errors.Is(err, internal.ErrCourseHasTransactions)).To(BeTrue())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
		Expect(countRows(&transactionDatamodel.Transaction{})).To(Equal(int64(1)))
		Expect(countRows(&courseDatamodel.Course{})).To(Equal(int64(1)))
		Expect(countRows(&courseDatamodel.Unit{})).To(Equal(int64(1)))
	})

	It("still deletes a course nobody bought", func() {
		Expect(e.service.DeleteCourse(ctx, e.supervisor, c.ID)).To(Succeed())

		Expect(countRows(&courseDatamodel.Course{})).To(BeZero())
		Expect(countRows(&courseDatamodel.Unit{})).To(BeZero())
	})
})
