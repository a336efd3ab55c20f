package course

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID          int64           `gorm:"primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Image       *string         `gorm:"column:image"`
	TeacherID   *int64          `gorm:"column:teacher_id;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

type Unit struct {
	ID          int64     `gorm:"primaryKey"`
	CourseID    int64     `gorm:"column:course_id;not null;index"`
	Course      *Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Lesson struct {
	ID        int64     `gorm:"primaryKey"`
	UnitID    int64     `gorm:"column:unit_id;not null;index"`
	Unit      *Unit     `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE"`
	Title     string    `gorm:"column:title;not null"`
	Content   string    `gorm:"column:content;type:text"`
	Image     *string   `gorm:"column:image"`
	Video     *string   `gorm:"column:video"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
