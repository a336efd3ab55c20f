package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/school-platform/internal"
	transactionDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/transaction"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) PurchasedCourseIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Where("student_id = ? AND status = ?", userID, transactionDatamodel.StatusCompleted).
		Order("course_id").
		Pluck("course_id", &ids).Error
	return ids, err
}
