package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Teacher marks a user as staff. Supervisors are teachers with IsSupervisor set.
type Teacher struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;uniqueIndex;not null"`
	IsTeacher    bool      `gorm:"column:is_teacher;default:true"`
	IsSupervisor bool      `gorm:"column:is_supervisor;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	User         *User     `gorm:"foreignKey:UserID"`
}
