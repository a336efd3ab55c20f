package article

import (
	"time"

	"github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

type Article struct {
	ID        int64      `gorm:"primaryKey"`
	Title     string     `gorm:"column:title;not null"`
	Content   string     `gorm:"column:content;type:text;not null"`
	Image     *string    `gorm:"column:image"`
	StudentID int64      `gorm:"column:student_id;not null;index"`
	Student   *user.User `gorm:"foreignKey:StudentID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
