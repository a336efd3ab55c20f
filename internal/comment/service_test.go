package comment_test

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
	"github.com/frahmantamala/school-platform/internal/comment"
	commentPostgres "github.com/frahmantamala/school-platform/internal/comment/postgres"
	articleDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/article"
	commentDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/comment"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	Expect(err).NotTo(HaveOccurred())
	Expect(db.AutoMigrate(
		&userDatamodel.User{},
		&userDatamodel.Teacher{},
		&articleDatamodel.Article{},
		&commentDatamodel.Comment{},
	)).To(Succeed())
	return db
}

var _ = Describe("Comment Service", func() {
	var (
		db       *gorm.DB
		service  *comment.Service
		ctx      context.Context
		student  *internal.Principal
		teacher  *internal.Principal
		article  *articleDatamodel.Article
		other    *articleDatamodel.Article
		slogger  *slog.Logger
		studentU *userDatamodel.User
	)

	BeforeEach(func() {
		db = openTestDB()
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = comment.NewService(commentPostgres.NewCommentRepository(db), slogger)
		ctx = context.Background()

		studentU = &userDatamodel.User{Email: "s@example.com", Name: "Sara", PasswordHash: "x", IsActive: true}
		Expect(db.Create(studentU).Error).To(Succeed())
		article = &articleDatamodel.Article{Title: "First", Content: "Body", StudentID: studentU.ID}
		other = &articleDatamodel.Article{Title: "Second", Content: "Body", StudentID: studentU.ID}
		Expect(db.Create(article).Error).To(Succeed())
		Expect(db.Create(other).Error).To(Succeed())

		student = internal.NewPrincipal(studentU.ID, studentU.Email, 0, false, false)
		teacher = internal.NewPrincipal(99, "t@example.com", 7, true, false)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("AddToArticle", func() {
		It("attaches the comment to the article", func() {
			c, err := service.AddToArticle(ctx, student, article.ID, comment.CreateCommentDTO{Content: "nice"})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).NotTo(BeZero())
			Expect(c.Receiver).To(Equal(comment.ArticleReceiver(article.ID)))
			Expect(c.SenderID).To(Equal(studentU.ID))
		})

		It("rejects empty content", func() {
			_, err := service.AddToArticle(ctx, student, article.ID, comment.CreateCommentDTO{Content: "   "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("returns not found for a missing article", func() {
			_, err := service.AddToArticle(ctx, student, 404, comment.CreateCommentDTO{Content: "hi"})
			Expect(errors.Is(err, internal.ErrArticleNotFound)).To(BeTrue())
		})
	})

	Describe("Reply", func() {
		var parent *comment.Comment

		BeforeEach(func() {
			var err error
			parent, err = service.AddToArticle(ctx, student, article.ID, comment.CreateCommentDTO{Content: "top"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("attaches the reply to the parent comment", func() {
			reply, err := service.Reply(ctx, teacher, article.ID, parent.ID, comment.CreateCommentDTO{Content: "thanks"})
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Receiver).To(Equal(comment.CommentReceiver(parent.ID)))
		})

		It("rejects replies to replies", func() {
			reply, err := service.Reply(ctx, teacher, article.ID, parent.ID, comment.CreateCommentDTO{Content: "a"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reply(ctx, student, article.ID, reply.ID, comment.CreateCommentDTO{Content: "b"})
			Expect(errors.Is(err, comment.ErrReplyToReply)).To(BeTrue())
		})

		It("rejects a parent from another article", func() {
			_, err := service.Reply(ctx, student, other.ID, parent.ID, comment.CreateCommentDTO{Content: "x"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("returns not found for a missing parent", func() {
			_, err := service.Reply(ctx, student, article.ID, 999, comment.CreateCommentDTO{Content: "x"})
			Expect(errors.Is(err, internal.ErrCommentNotFound)).To(BeTrue())
		})
	})

	Describe("Thread", func() {
		It("nests replies under their top-level comment, newest first, with senders", func() {
			first, err := service.AddToArticle(ctx, student, article.ID, comment.CreateCommentDTO{Content: "first"})
			Expect(err).NotTo(HaveOccurred())
			second, err := service.AddToArticle(ctx, student, article.ID, comment.CreateCommentDTO{Content: "second"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Reply(ctx, student, article.ID, first.ID, comment.CreateCommentDTO{Content: "reply"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AddToArticle(ctx, student, other.ID, comment.CreateCommentDTO{Content: "elsewhere"})
			Expect(err).NotTo(HaveOccurred())

			thread, err := service.Thread(ctx, article.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(thread).To(HaveLen(2))
			Expect(thread[0].ID).To(Equal(second.ID))
			Expect(thread[1].ID).To(Equal(first.ID))
			Expect(thread[1].Replies).To(HaveLen(1))
			Expect(thread[1].Replies[0].Content).To(Equal("reply"))
			Expect(thread[1].Replies[0].Sender.Name).To(Equal("Sara"))
			Expect(thread[0].Replies).To(BeEmpty())
		})
	})

	Describe("Delete", func() {
		var parent *comment.Comment

		BeforeEach(func() {
			var err error
			parent, err = service.AddToArticle(ctx, student, article.ID, comment.CreateCommentDTO{Content: "top"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Reply(ctx, student, article.ID, parent.ID, comment.CreateCommentDTO{Content: "child"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("forbids non-staff and keeps the comment", func() {
			err := service.Delete(ctx, student, parent.ID)
			Expect(errors.Is(err, internal.ErrStaffOnly)).To(BeTrue())

			var count int64
			db.Model(&commentDatamodel.Comment{}).Count(&count)
			Expect(count).To(Equal(int64(2)))
		})

		It("lets staff delete the comment together with its replies", func() {
			Expect(service.Delete(ctx, teacher, parent.ID)).To(Succeed())

			var count int64
			db.Model(&commentDatamodel.Comment{}).Count(&count)
			Expect(count).To(BeZero())
		})

		It("returns not found for a missing comment", func() {
			Expect(errors.Is(service.Delete(ctx, teacher, 12345), internal.ErrCommentNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("is limited to staff", func() {
			_, err := service.List(ctx, student, 1)
			Expect(errors.Is(err, internal.ErrStaffOnly)).To(BeTrue())
		})

		It("pages through all comments", func() {
			for i := 0; i < 17; i++ {
				_, err := service.AddToArticle(ctx, student, article.ID, comment.CreateCommentDTO{Content: "c"})
				Expect(err).NotTo(HaveOccurred())
			}

			page, err := service.List(ctx, teacher, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(2))
			Expect(page.Total).To(Equal(int64(17)))
			Expect(page.TotalPages).To(Equal(2))
		})
	})
})
