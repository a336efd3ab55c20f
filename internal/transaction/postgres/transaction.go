package postgres

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/school-platform/internal"
	transactionDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/transaction"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetOrCreate relies on the (student_id, course_id) unique index: a losing concurrent insert
// does nothing and both callers read back the same row. Unfinished rows are reset to PENDING
// at the current amount.
func (r *TransactionRepository) GetOrCreate(ctx context.Context, studentID, courseID int64, amount decimal.Decimal) (*transactionDatamodel.Transaction, error) {
	var t transactionDatamodel.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := transactionDatamodel.Transaction{
			StudentID:     studentID,
			CourseID:      courseID,
			Amount:        amount,
			PaymentMethod: transactionDatamodel.MethodStripe,
			Status:        transactionDatamodel.StatusPending,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).Create(&candidate).Error
		if err != nil {
			return err
		}

		if err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&t).Error; err != nil {
			return err
		}
		if t.Status == transactionDatamodel.StatusCompleted {
			return nil
		}
		if t.Status == transactionDatamodel.StatusPending && t.Amount.Equal(amount) {
			return nil
		}

		t.Status = transactionDatamodel.StatusPending
		t.Amount = amount
		return tx.Model(&t).Updates(map[string]interface{}{
			"status": t.Status,
			"amount": t.Amount,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transactionDatamodel.Transaction, error) {
	var t transactionDatamodel.Transaction
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) HasPurchased(ctx context.Context, studentID, courseID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, transactionDatamodel.StatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// MarkCompleted reports whether this call performed the transition.
func (r *TransactionRepository) MarkCompleted(ctx context.Context, id int64) (bool, *transactionDatamodel.Transaction, error) {
	res := r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Where("id = ? AND status <> ?", id, transactionDatamodel.StatusCompleted).
		Update("status", transactionDatamodel.StatusCompleted)
	if res.Error != nil {
		return false, nil, res.Error
	}

	t, err := r.GetByID(ctx, id)
	if err != nil {
		return false, nil, err
	}
	return res.RowsAffected > 0, t, nil
}
