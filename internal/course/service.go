package course

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/core/common/pagination"
	courseDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/course"
	"github.com/frahmantamala/school-platform/internal/storage"
)

type RepositoryAPI interface {
	ListCourses(ctx context.Context, limit, offset int) ([]*courseDatamodel.Course, int64, error)
	GetCourse(ctx context.Context, id int64) (*courseDatamodel.Course, error)
	CreateCourse(ctx context.Context, c *courseDatamodel.Course) error
	UpdateCourse(ctx context.Context, c *courseDatamodel.Course) error
	DeleteCourse(ctx context.Context, id int64) error

	ListUnits(ctx context.Context, courseID int64) ([]*courseDatamodel.Unit, error)
	GetUnit(ctx context.Context, id int64) (*courseDatamodel.Unit, error)
	CreateUnit(ctx context.Context, u *courseDatamodel.Unit) error
	UpdateUnit(ctx context.Context, u *courseDatamodel.Unit) error
	DeleteUnit(ctx context.Context, id int64) error

	ListLessons(ctx context.Context, unitIDs []int64) ([]*courseDatamodel.Lesson, error)
	GetLesson(ctx context.Context, id int64) (*courseDatamodel.Lesson, error)
	CreateLesson(ctx context.Context, l *courseDatamodel.Lesson) error
	UpdateLesson(ctx context.Context, l *courseDatamodel.Lesson) error
	DeleteLesson(ctx context.Context, id int64) error
}

// PurchaseChecker reports whether a student holds a COMPLETED transaction for a course.
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, studentID, courseID int64) (bool, error)
}

type ServiceAPI interface {
	Catalogue(ctx context.Context, page int) (*pagination.Page[*Course], error)
	Detail(ctx context.Context, p *internal.Principal, id int64) (*CourseDetail, error)
	Curriculum(ctx context.Context, p *internal.Principal, courseID int64) ([]*Unit, error)

	ManageCourses(ctx context.Context, p *internal.Principal, page int) (*pagination.Page[*Course], error)
	CreateCourse(ctx context.Context, p *internal.Principal, dto CourseDTO) (*Course, error)
	UpdateCourse(ctx context.Context, p *internal.Principal, id int64, dto CourseDTO) (*Course, error)
	DeleteCourse(ctx context.Context, p *internal.Principal, id int64) error

	ManageUnits(ctx context.Context, p *internal.Principal, courseID int64) ([]*Unit, error)
	CreateUnit(ctx context.Context, p *internal.Principal, courseID int64, dto UnitDTO) (*Unit, error)
	UpdateUnit(ctx context.Context, p *internal.Principal, courseID, id int64, dto UnitDTO) (*Unit, error)
	DeleteUnit(ctx context.Context, p *internal.Principal, id int64) error

	ManageLessons(ctx context.Context, p *internal.Principal, courseID, unitID int64) ([]*Lesson, error)
	CreateLesson(ctx context.Context, p *internal.Principal, courseID, unitID int64, dto LessonDTO) (*Lesson, error)
	UpdateLesson(ctx context.Context, p *internal.Principal, courseID, unitID, id int64, dto LessonDTO) (*Lesson, error)
	DeleteLesson(ctx context.Context, p *internal.Principal, id int64) error
}

type Service struct {
	repo      RepositoryAPI
	purchases PurchaseChecker
	uploader  storage.Uploader
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, purchases PurchaseChecker, uploader storage.Uploader, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		purchases: purchases,
		uploader:  uploader,
		logger:    logger,
	}
}

// ----------------- CATALOGUE -----------------

func (s *Service) Catalogue(ctx context.Context, page int) (*pagination.Page[*Course], error) {
	models, total, err := s.repo.ListCourses(ctx, pagination.PerPage, pagination.Offset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return pagination.New(CoursesFromDataModel(models), page, total), nil
}

func (s *Service) Detail(ctx context.Context, p *internal.Principal, id int64) (*CourseDetail, error) {
	model, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: CourseFromDataModel(model)}
	if p != nil {
		purchased, err := s.purchases.HasPurchased(ctx, p.UserID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check purchase of course %d: %w", id, err)
		}
		detail.Purchased = purchased
	}
	return detail, nil
}

// Curriculum returns units with their lessons to buyers and staff.
func (s *Service) Curriculum(ctx context.Context, p *internal.Principal, courseID int64) ([]*Unit, error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	if !p.IsStaff() {
		purchased, err := s.purchases.HasPurchased(ctx, p.UserID, courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to check purchase of course %d: %w", courseID, err)
		}
		if !purchased {
			return nil, internal.ErrCourseNotPurchased
		}
	}

	units, err := s.unitsOf(ctx, courseID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(units))
	byID := make(map[int64]*Unit, len(units))
	for i, u := range units {
		ids[i] = u.ID
		byID[u.ID] = u
	}
	lessons, err := s.repo.ListLessons(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons of course %d: %w", courseID, err)
	}
	for _, l := range LessonsFromDataModel(lessons) {
		byID[l.UnitID].Lessons = append(byID[l.UnitID].Lessons, l)
	}
	return units, nil
}

// ----------------- COURSES -----------------

func (s *Service) ManageCourses(ctx context.Context, p *internal.Principal, page int) (*pagination.Page[*Course], error) {
	if !p.IsStaff() {
		return nil, internal.ErrStaffOnly
	}
	return s.Catalogue(ctx, page)
}

func (s *Service) CreateCourse(ctx context.Context, p *internal.Principal, dto CourseDTO) (*Course, error) {
	if !p.IsSupervisor() {
		return nil, internal.ErrSupervisorOnly
	}
	parsed, err := dto.parse(true)
	if err != nil {
		return nil, err
	}

	model := &courseDatamodel.Course{
		Title:       dto.Title,
		Description: dto.Description,
		Price:       parsed.price,
		TeacherID:   parsed.teacherID,
	}
	if dto.Image != nil {
		if model.Image, err = s.upload(ctx, dto.Image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreateCourse(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.InfoContext(ctx, "course created", "course_id", model.ID, "user_id", p.UserID)
	return CourseFromDataModel(model), nil
}

func (s *Service) UpdateCourse(ctx context.Context, p *internal.Principal, id int64, dto CourseDTO) (*Course, error) {
	model, err := s.manageableCourse(ctx, p, id)
	if err != nil {
		return nil, err
	}
	parsed, err := dto.parse(false)
	if err != nil {
		return nil, err
	}

	if dto.Title != "" {
		model.Title = dto.Title
	}
	if dto.Description != "" {
		model.Description = dto.Description
	}
	if dto.Price != "" {
		model.Price = parsed.price
	}
	// only supervisors reassign courses
	if parsed.teacherID != nil && p.IsSupervisor() {
		model.TeacherID = parsed.teacherID
	}
	if dto.Image != nil {
		if model.Image, err = s.upload(ctx, dto.Image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateCourse(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to update course %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "course updated", "course_id", id, "user_id", p.UserID)
	return CourseFromDataModel(model), nil
}

func (s *Service) DeleteCourse(ctx context.Context, p *internal.Principal, id int64) error {
	if !p.IsSupervisor() {
		return internal.ErrSupervisorOnly
	}
	if _, err := s.repo.GetCourse(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "course deleted", "course_id", id, "user_id", p.UserID)
	return nil
}

// ----------------- UNITS -----------------

func (s *Service) ManageUnits(ctx context.Context, p *internal.Principal, courseID int64) ([]*Unit, error) {
	if !p.IsStaff() {
		return nil, internal.ErrStaffOnly
	}
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.unitsOf(ctx, courseID)
}

func (s *Service) CreateUnit(ctx context.Context, p *internal.Principal, courseID int64, dto UnitDTO) (*Unit, error) {
	if !p.IsSupervisor() {
		return nil, internal.ErrSupervisorOnly
	}
	if err := dto.Validate(true); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	model := &courseDatamodel.Unit{CourseID: courseID, Title: dto.Title, Description: dto.Description}
	if err := s.repo.CreateUnit(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	s.logger.InfoContext(ctx, "unit created", "unit_id", model.ID, "course_id", courseID, "user_id", p.UserID)
	return UnitFromDataModel(model), nil
}

func (s *Service) UpdateUnit(ctx context.Context, p *internal.Principal, courseID, id int64, dto UnitDTO) (*Unit, error) {
	if _, err := s.manageableCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	model, err := s.unitOfCourse(ctx, courseID, id)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(false); err != nil {
		return nil, err
	}

	if dto.Title != "" {
		model.Title = dto.Title
	}
	if dto.Description != "" {
		model.Description = dto.Description
	}
	if err := s.repo.UpdateUnit(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to update unit %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "unit updated", "unit_id", id, "user_id", p.UserID)
	return UnitFromDataModel(model), nil
}

func (s *Service) DeleteUnit(ctx context.Context, p *internal.Principal, id int64) error {
	if !p.IsSupervisor() {
		return internal.ErrSupervisorOnly
	}
	if _, err := s.repo.GetUnit(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUnit(ctx, id); err != nil {
		return fmt.Errorf("failed to delete unit %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "unit deleted", "unit_id", id, "user_id", p.UserID)
	return nil
}

// ----------------- LESSONS -----------------

func (s *Service) ManageLessons(ctx context.Context, p *internal.Principal, courseID, unitID int64) ([]*Lesson, error) {
	if !p.IsStaff() {
		return nil, internal.ErrStaffOnly
	}
	if _, err := s.unitOfCourse(ctx, courseID, unitID); err != nil {
		return nil, err
	}

	lessons, err := s.repo.ListLessons(ctx, []int64{unitID})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons of unit %d: %w", unitID, err)
	}
	return LessonsFromDataModel(lessons), nil
}

func (s *Service) CreateLesson(ctx context.Context, p *internal.Principal, courseID, unitID int64, dto LessonDTO) (*Lesson, error) {
	if !p.IsSupervisor() {
		return nil, internal.ErrSupervisorOnly
	}
	if _, err := s.unitOfCourse(ctx, courseID, unitID); err != nil {
		return nil, err
	}
	if err := dto.Validate(true); err != nil {
		return nil, err
	}

	model := &courseDatamodel.Lesson{UnitID: unitID, Title: dto.Title, Content: dto.Content}
	if err := s.attachMedia(ctx, model, dto); err != nil {
		return nil, err
	}
	if err := s.repo.CreateLesson(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.logger.InfoContext(ctx, "lesson created", "lesson_id", model.ID, "unit_id", unitID, "user_id", p.UserID)
	return LessonFromDataModel(model), nil
}

func (s *Service) UpdateLesson(ctx context.Context, p *internal.Principal, courseID, unitID, id int64, dto LessonDTO) (*Lesson, error) {
	if _, err := s.manageableCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	if _, err := s.unitOfCourse(ctx, courseID, unitID); err != nil {
		return nil, err
	}
	model, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.UnitID != unitID {
		return nil, internal.ErrLessonNotFound
	}
	if err := dto.Validate(false); err != nil {
		return nil, err
	}

	if dto.Title != "" {
		model.Title = dto.Title
	}
	if dto.Content != "" {
		model.Content = dto.Content
	}
	if err := s.attachMedia(ctx, model, dto); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLesson(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to update lesson %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "lesson updated", "lesson_id", id, "user_id", p.UserID)
	return LessonFromDataModel(model), nil
}

func (s *Service) DeleteLesson(ctx context.Context, p *internal.Principal, id int64) error {
	if !p.IsSupervisor() {
		return internal.ErrSupervisorOnly
	}
	if _, err := s.repo.GetLesson(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteLesson(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lesson %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "lesson deleted", "lesson_id", id, "user_id", p.UserID)
	return nil
}

// ----------------- HELPERS -----------------

func (s *Service) manageableCourse(ctx context.Context, p *internal.Principal, courseID int64) (*courseDatamodel.Course, error) {
	if !p.IsStaff() {
		return nil, internal.ErrStaffOnly
	}
	model, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !p.CanManageCourse(model.TeacherID) {
		s.logger.WarnContext(ctx, "course management denied", "course_id", courseID, "user_id", p.UserID, "teacher_id", p.TeacherID)
		return nil, internal.ErrNotOwner
	}
	return model, nil
}

func (s *Service) unitOfCourse(ctx context.Context, courseID, unitID int64) (*courseDatamodel.Unit, error) {
	unit, err := s.repo.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit.CourseID != courseID {
		return nil, internal.ErrUnitNotFound
	}
	return unit, nil
}

func (s *Service) unitsOf(ctx context.Context, courseID int64) ([]*Unit, error) {
	units, err := s.repo.ListUnits(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units of course %d: %w", courseID, err)
	}
	return UnitsFromDataModel(units), nil
}

func (s *Service) attachMedia(ctx context.Context, model *courseDatamodel.Lesson, dto LessonDTO) error {
	var err error
	if dto.Image != nil {
		if model.Image, err = s.upload(ctx, dto.Image); err != nil {
			return err
		}
	}
	if dto.Video != nil {
		if model.Video, err = s.upload(ctx, dto.Video); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) upload(ctx context.Context, u *storage.Upload) (*string, error) {
	url, err := s.uploader.Upload(ctx, u)
	if err != nil {
		s.logger.ErrorContext(ctx, "media upload failed", "error", err, "filename", u.Filename)
		return nil, internal.NewInternalError("failed to store media", err)
	}
	return &url, nil
}
