package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	transactionDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/transaction"
)

type Status string

const (
	StatusPending   Status = transactionDatamodel.StatusPending
	StatusCompleted Status = transactionDatamodel.StatusCompleted
	StatusFailed    Status = transactionDatamodel.StatusFailed
)

var hundred = decimal.NewFromInt(100)

type Transaction struct {
	ID            int64           `json:"id"`
	StudentID     int64           `json:"student_id"`
	CourseID      int64           `json:"course_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (t *Transaction) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t *Transaction) BelongsTo(studentID int64) bool {
	return t.StudentID == studentID
}

// AmountFor rounds a course price up to the next whole currency unit.
func AmountFor(price decimal.Decimal) decimal.Decimal {
	return price.Ceil()
}

// MinorUnits converts a whole amount into the smallest currency unit sent to the processor.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

func FromDataModel(m *transactionDatamodel.Transaction) *Transaction {
	if m == nil {
		return nil
	}
	return &Transaction{
		ID:            m.ID,
		StudentID:     m.StudentID,
		CourseID:      m.CourseID,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		Status:        Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// CourseSummary is the part of a course the checkout page shows.
type CourseSummary struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Image       *string         `json:"image,omitempty"`
}

// ExportRow is one line of the transactions workbook.
type ExportRow struct {
	ID            int64           `db:"id"`
	StudentEmail  string          `db:"student_email"`
	CourseTitle   string          `db:"course_title"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod string          `db:"payment_method"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}
