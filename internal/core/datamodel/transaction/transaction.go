package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	courseDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/course"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

const (
	MethodStripe = "STRIPE"
)

type Transaction struct {
	ID            int64           `gorm:"primaryKey"`
	StudentID     int64           `gorm:"column:student_id;not null;uniqueIndex:ux_transactions_student_course,priority:1"`
	CourseID      int64           `gorm:"column:course_id;not null;uniqueIndex:ux_transactions_student_course,priority:2"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	PaymentMethod string          `gorm:"column:payment_method;not null"`
	Status        string          `gorm:"column:status;not null;default:PENDING"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	// a course with transactions cannot be deleted
	Course *courseDatamodel.Course `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT"`
}
