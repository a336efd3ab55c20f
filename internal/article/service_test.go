package article_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/article"
	articlePostgres "github.com/frahmantamala/school-platform/internal/article/postgres"
	"github.com/frahmantamala/school-platform/internal/comment"
	commentPostgres "github.com/frahmantamala/school-platform/internal/comment/postgres"
	articleDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/article"
	commentDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/comment"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
	"github.com/frahmantamala/school-platform/internal/storage"
)

type fakeUploader struct {
	uploads []*storage.Upload
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, u *storage.Upload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, u)
	return "https://bucket.s3.region.amazonaws.com/uploads/abc" + u.Ext(), nil
}

type env struct {
	db       *gorm.DB
	service  *article.Service
	comments *comment.Service
	uploader *fakeUploader
	alice    *internal.Principal
	bob      *internal.Principal
}

func newEnv() *env {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	Expect(err).NotTo(HaveOccurred())
	Expect(db.AutoMigrate(&userDatamodel.User{}, &articleDatamodel.Article{}, &commentDatamodel.Comment{})).To(Succeed())

	alice := &userDatamodel.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "x", IsActive: true}
	bob := &userDatamodel.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x", IsActive: true}
	Expect(db.Create(alice).Error).To(Succeed())
	Expect(db.Create(bob).Error).To(Succeed())

	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	comments := comment.NewService(commentPostgres.NewCommentRepository(db), slogger)
	uploader := &fakeUploader{}

	return &env{
		db:       db,
		service:  article.NewService(articlePostgres.NewArticleRepository(db), comments, uploader, slogger),
		comments: comments,
		uploader: uploader,
		alice:    internal.NewPrincipal(alice.ID, alice.Email, 0, false, false),
		bob:      internal.NewPrincipal(bob.ID, bob.Email, 0, false, false),
	}
}

func (e *env) close() {
	sqlDB, _ := e.db.DB()
	_ = sqlDB.Close()
}

var _ = Describe("Article Service", func() {
	var (
		e   *env
		ctx context.Context
	)

	BeforeEach(func() {
		e = newEnv()
		ctx = context.Background()
	})

	AfterEach(func() {
		e.close()
	})

	Describe("Create", func() {
		It("stores the uploaded image URL", func() {
			a, err := e.service.Create(ctx, e.alice, article.CreateArticleDTO{
				Title:   "Hello",
				Content: "World",
				Image:   &storage.Upload{Filename: "cover.gif", Data: []byte("gif")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Image).NotTo(BeNil())
			Expect(*a.Image).To(HaveSuffix(".gif"))
			Expect(a.StudentID).To(Equal(e.alice.UserID))
		})

		It("does not save the article when the upload fails", func() {
			e.uploader.err = errors.New("s3 down")
			_, err := e.service.Create(ctx, e.alice, article.CreateArticleDTO{
				Title:   "Hello",
				Content: "World",
				Image:   &storage.Upload{Filename: "cover.png", Data: []byte("png")},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))

			var count int64
			e.db.Model(&articleDatamodel.Article{}).Count(&count)
			Expect(count).To(BeZero())
		})

		It("requires a title", func() {
			_, err := e.service.Create(ctx, e.alice, article.CreateArticleDTO{Content: "x"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := 0; i < 16; i++ {
				p := e.alice
				if i%4 == 0 {
					p = e.bob
				}
				_, err := e.service.Create(ctx, p, article.CreateArticleDTO{Title: "t", Content: "c"})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("pages fifteen at a time, newest first, with authors", func() {
			first, err := e.service.List(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Items).To(HaveLen(15))
			Expect(first.Total).To(Equal(int64(16)))
			Expect(first.Items[0].ID).To(BeNumerically(">", first.Items[14].ID))
			Expect(first.Items[0].Author).NotTo(BeNil())

			second, err := e.service.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Items).To(HaveLen(1))
		})

		It("lists only the caller's own articles", func() {
			mine, err := e.service.ListMine(ctx, e.bob, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine.Total).To(Equal(int64(4)))
			for _, a := range mine.Items {
				Expect(a.StudentID).To(Equal(e.bob.UserID))
			}
		})
	})

	Describe("Update", func() {
		var a *article.Article

		BeforeEach(func() {
			var err error
			a, err = e.service.Create(ctx, e.alice, article.CreateArticleDTO{Title: "Old", Content: "Body"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps fields that were left empty", func() {
			updated, err := e.service.Update(ctx, e.alice, a.ID, article.UpdateArticleDTO{Title: "New"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("New"))
			Expect(updated.Content).To(Equal("Body"))
		})

		It("hides other users' articles", func() {
			_, err := e.service.Update(ctx, e.bob, a.ID, article.UpdateArticleDTO{Title: "Hijack"})
			Expect(errors.Is(err, internal.ErrArticleNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		var a *article.Article

		BeforeEach(func() {
			var err error
			a, err = e.service.Create(ctx, e.alice, article.CreateArticleDTO{Title: "Mine", Content: "Body"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("forbids deleting someone else's article and keeps it", func() {
			err := e.service.Delete(ctx, e.bob, a.ID)
			Expect(errors.Is(err, internal.ErrNotOwner)).To(BeTrue())

			_, err = e.service.Detail(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the article with its comment thread", func() {
			top, err := e.comments.AddToArticle(ctx, e.bob, a.ID, comment.CreateCommentDTO{Content: "hi"})
			Expect(err).NotTo(HaveOccurred())
			_, err = e.comments.Reply(ctx, e.alice, a.ID, top.ID, comment.CreateCommentDTO{Content: "hey"})
			Expect(err).NotTo(HaveOccurred())

			Expect(e.service.Delete(ctx, e.alice, a.ID)).To(Succeed())

			_, err = e.service.Detail(ctx, a.ID)
			Expect(errors.Is(err, internal.ErrArticleNotFound)).To(BeTrue())

			var count int64
			e.db.Model(&commentDatamodel.Comment{}).Count(&count)
			Expect(count).To(BeZero())
		})
	})

	Describe("Detail", func() {
		It("returns the article with its comments", func() {
			a, err := e.service.Create(ctx, e.alice, article.CreateArticleDTO{Title: "T", Content: "C"})
			Expect(err).NotTo(HaveOccurred())
			_, err = e.comments.AddToArticle(ctx, e.bob, a.ID, comment.CreateCommentDTO{Content: "first!"})
			Expect(err).NotTo(HaveOccurred())

			detail, err := e.service.Detail(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Author.Name).To(Equal("Alice"))
			Expect(detail.Comments).To(HaveLen(1))
		})
	})
})
