package internal

import "slices"

// Role is the authorization role carried by an authenticated principal.
type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleSupervisor Role = "supervisor"
)

// Principal is the authenticated caller. TeacherID is zero for users without a teacher record.
type Principal struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	TeacherID int64  `json:"teacher_id,omitempty"`
	Roles     []Role `json:"roles"`
}

func NewPrincipal(userID int64, email string, teacherID int64, isTeacher, isSupervisor bool) *Principal {
	roles := []Role{RoleStudent}
	if teacherID != 0 {
		if isTeacher {
			roles = append(roles, RoleTeacher)
		}
		if isSupervisor {
			roles = append(roles, RoleSupervisor)
		}
	}
	return &Principal{
		UserID:    userID,
		Email:     email,
		TeacherID: teacherID,
		Roles:     roles,
	}
}

func (p *Principal) Has(role Role) bool {
	return p != nil && slices.Contains(p.Roles, role)
}

// IsStaff reports whether the principal has a teacher identity with a teaching or supervising role.
func (p *Principal) IsStaff() bool {
	return p != nil && p.TeacherID != 0 && (p.Has(RoleTeacher) || p.Has(RoleSupervisor))
}

func (p *Principal) IsSupervisor() bool {
	return p != nil && p.TeacherID != 0 && p.Has(RoleSupervisor)
}

// CanManageCourse: supervisors manage everything, teachers only courses assigned to them.
func (p *Principal) CanManageCourse(courseTeacherID *int64) bool {
	if p.IsSupervisor() {
		return true
	}
	if !p.IsStaff() || !p.Has(RoleTeacher) || courseTeacherID == nil {
		return false
	}
	return *courseTeacherID == p.TeacherID
}
