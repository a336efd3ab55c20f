package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/notification"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

type receiptRow struct {
	TransactionID int64
	StudentName   string
	StudentEmail  string
	CourseTitle   string
	Amount        decimal.Decimal
	PaidAt        time.Time
}

func (r *ReceiptRepository) ReceiptFor(ctx context.Context, transactionID int64) (*notification.Receipt, error) {
	var row receiptRow
	res := r.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.id AS transaction_id, u.name AS student_name, u.email AS student_email, c.title AS course_title, t.amount AS amount, t.updated_at AS paid_at").
		Joins("JOIN users u ON u.id = t.student_id").
		Joins("JOIN courses c ON c.id = t.course_id").
		Where("t.id = ?", transactionID).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, internal.ErrTransactionNotFound
	}

	return &notification.Receipt{
		TransactionID: row.TransactionID,
		StudentName:   row.StudentName,
		StudentEmail:  row.StudentEmail,
		CourseTitle:   row.CourseTitle,
		Amount:        row.Amount,
		PaidAt:        row.PaidAt,
	}, nil
}
