package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/school-platform/internal"
	courseDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/course"
)

// CourseRepository stores courses, units and lessons with GORM.
type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) ListCourses(ctx context.Context, limit, offset int) ([]*courseDatamodel.Course, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&courseDatamodel.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []*courseDatamodel.Course
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) GetCourse(ctx context.Context, id int64) (*courseDatamodel.Course, error) {
	var c courseDatamodel.Course
	if err := r.first(ctx, &c, id, internal.ErrCourseNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) CreateCourse(ctx context.Context, c *courseDatamodel.Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CourseRepository) UpdateCourse(ctx context.Context, c *courseDatamodel.Course) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// DeleteCourse removes the course with its units and their lessons. Courses that
// already have transactions are kept.
func (r *CourseRepository) DeleteCourse(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unitIDs := tx.Model(&courseDatamodel.Unit{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("unit_id IN (?)", unitIDs).Delete(&courseDatamodel.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&courseDatamodel.Unit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&courseDatamodel.Course{}, id).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return internal.ErrCourseHasTransactions
	}
	return err
}

func (r *CourseRepository) ListUnits(ctx context.Context, courseID int64) ([]*courseDatamodel.Unit, error) {
	var units []*courseDatamodel.Unit
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&units).Error
	return units, err
}

func (r *CourseRepository) GetUnit(ctx context.Context, id int64) (*courseDatamodel.Unit, error) {
	var u courseDatamodel.Unit
	if err := r.first(ctx, &u, id, internal.ErrUnitNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *CourseRepository) CreateUnit(ctx context.Context, u *courseDatamodel.Unit) error {
	return r.db.WithContext(ctx).Omit("Course").Create(u).Error
}

func (r *CourseRepository) UpdateUnit(ctx context.Context, u *courseDatamodel.Unit) error {
	return r.db.WithContext(ctx).Omit("Course").Save(u).Error
}

func (r *CourseRepository) DeleteUnit(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ?", id).Delete(&courseDatamodel.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&courseDatamodel.Unit{}, id).Error
	})
}

func (r *CourseRepository) ListLessons(ctx context.Context, unitIDs []int64) ([]*courseDatamodel.Lesson, error) {
	var lessons []*courseDatamodel.Lesson
	if len(unitIDs) == 0 {
		return lessons, nil
	}
	err := r.db.WithContext(ctx).
		Where("unit_id IN ?", unitIDs).
		Order("created_at DESC").
		Order("id DESC").
		Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) GetLesson(ctx context.Context, id int64) (*courseDatamodel.Lesson, error) {
	var l courseDatamodel.Lesson
	if err := r.first(ctx, &l, id, internal.ErrLessonNotFound); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CourseRepository) CreateLesson(ctx context.Context, l *courseDatamodel.Lesson) error {
	return r.db.WithContext(ctx).Omit("Unit").Create(l).Error
}

func (r *CourseRepository) UpdateLesson(ctx context.Context, l *courseDatamodel.Lesson) error {
	return r.db.WithContext(ctx).Omit("Unit").Save(l).Error
}

func (r *CourseRepository) DeleteLesson(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&courseDatamodel.Lesson{}, id).Error
}

func (r *CourseRepository) first(ctx context.Context, dest interface{}, id int64, notFound error) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
