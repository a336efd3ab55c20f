package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/school-platform/internal/auth"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetIdentityByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	return r.identity(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *Repository) GetIdentityByID(ctx context.Context, userID int64) (*auth.Identity, error) {
	return r.identity(ctx, "id = ?", userID)
}

func (r *Repository) identity(ctx context.Context, query string, arg interface{}) (*auth.Identity, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}

	identity := &auth.Identity{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}

	var t userDatamodel.Teacher
	err = r.db.WithContext(ctx).Where("user_id = ?", u.ID).First(&t).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return identity, nil
	case err != nil:
		return nil, err
	}

	identity.TeacherID = t.ID
	identity.IsTeacher = t.IsTeacher
	identity.IsSupervisor = t.IsSupervisor
	return identity, nil
}
