package comment

import (
	"time"

	"github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

type Comment struct {
	ID           int64      `gorm:"primaryKey"`
	Content      string     `gorm:"column:content;type:text;not null"`
	SenderID     int64      `gorm:"column:sender_id;not null"`
	Sender       *user.User `gorm:"foreignKey:SenderID"`
	ReceiverType string     `gorm:"column:receiver_type;not null;index:idx_comments_receiver,priority:1"`
	ReceiverID   int64      `gorm:"column:receiver_id;not null;index:idx_comments_receiver,priority:2"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
