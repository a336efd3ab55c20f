package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/school-platform/internal"
	articleDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/article"
	commentDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/comment"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) ArticleExists(ctx context.Context, articleID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&articleDatamodel.Article{}).Where("id = ?", articleID).Count(&count).Error
	return count > 0, err
}

func (r *CommentRepository) Create(ctx context.Context, c *commentDatamodel.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*commentDatamodel.Comment, error) {
	var c commentDatamodel.Comment
	err := r.db.WithContext(ctx).Preload("Sender").Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForReceivers loads comments of one receiver kind, newest first, with senders.
func (r *CommentRepository) ListForReceivers(ctx context.Context, kind string, receiverIDs []int64) ([]*commentDatamodel.Comment, error) {
	var comments []*commentDatamodel.Comment
	if len(receiverIDs) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_type = ? AND receiver_id IN ?", kind, receiverIDs).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) List(ctx context.Context, limit, offset int) ([]*commentDatamodel.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&commentDatamodel.Comment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*commentDatamodel.Comment
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, total, err
}

// Delete removes the comment and its replies.
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receiver_type = ? AND receiver_id = ?", "comment", id).
			Delete(&commentDatamodel.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&commentDatamodel.Comment{}, id).Error
	})
}
