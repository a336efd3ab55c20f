package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/school-platform/internal"
	articleDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/article"
	commentDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/comment"
)

// ArticleRepository implements article.RepositoryAPI using GORM
type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) List(ctx context.Context, limit, offset int) ([]*articleDatamodel.Article, int64, error) {
	return r.page(r.db.WithContext(ctx), limit, offset)
}

func (r *ArticleRepository) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]*articleDatamodel.Article, int64, error) {
	return r.page(r.db.WithContext(ctx).Where("student_id = ?", studentID), limit, offset)
}

func (r *ArticleRepository) page(scope *gorm.DB, limit, offset int) ([]*articleDatamodel.Article, int64, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).Model(&articleDatamodel.Article{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []*articleDatamodel.Article
	err := scope.Session(&gorm.Session{}).
		Preload("Student").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	return articles, total, err
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*articleDatamodel.Article, error) {
	var a articleDatamodel.Article
	err := r.db.WithContext(ctx).Preload("Student").Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a *articleDatamodel.Article) error {
	return r.db.WithContext(ctx).Omit("Student").Create(a).Error
}

func (r *ArticleRepository) Update(ctx context.Context, a *articleDatamodel.Article) error {
	return r.db.WithContext(ctx).
		Model(&articleDatamodel.Article{ID: a.ID}).
		Updates(map[string]interface{}{
			"title":   a.Title,
			"content": a.Content,
			"image":   a.Image,
		}).Error
}

// Delete removes the article with its comments and their replies.
func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topLevel := tx.Model(&commentDatamodel.Comment{}).
			Select("id").
			Where("receiver_type = ? AND receiver_id = ?", "article", id)

		if err := tx.Where("receiver_type = ? AND receiver_id IN (?)", "comment", topLevel).
			Delete(&commentDatamodel.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("receiver_type = ? AND receiver_id = ?", "article", id).
			Delete(&commentDatamodel.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&articleDatamodel.Article{}, id).Error
	})
}
