package user

import (
	"time"

	"github.com/frahmantamala/school-platform/internal"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

// Profile is what a signed-in user sees about themselves.
type Profile struct {
	ID                 int64           `json:"id"`
	Email              string          `json:"email"`
	Name               string          `json:"name"`
	Roles              []internal.Role `json:"roles"`
	TeacherID          int64           `json:"teacher_id,omitempty"`
	PurchasedCourseIDs []int64         `json:"purchased_course_ids"`
	CreatedAt          time.Time       `json:"created_at"`
}

func NewProfile(m *userDatamodel.User, p *internal.Principal, purchased []int64) *Profile {
	if purchased == nil {
		purchased = []int64{}
	}
	return &Profile{
		ID:                 m.ID,
		Email:              m.Email,
		Name:               m.Name,
		Roles:              p.Roles,
		TeacherID:          p.TeacherID,
		PurchasedCourseIDs: purchased,
		CreatedAt:          m.CreatedAt,
	}
}
