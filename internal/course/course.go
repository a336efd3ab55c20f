package course

import (
	"time"

	"github.com/shopspring/decimal"

	courseDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/course"
)

type Course struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       *string         `json:"image,omitempty"`
	TeacherID   *int64          `json:"teacher_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CourseDetail is a catalogue entry as seen by one caller.
type CourseDetail struct {
	*Course
	Purchased bool `json:"purchased"`
}

type Unit struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Lessons     []*Lesson `json:"lessons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Lesson struct {
	ID        int64     `json:"id"`
	UnitID    int64     `json:"unit_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     *string   `json:"image,omitempty"`
	Video     *string   `json:"video,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func CourseFromDataModel(c *courseDatamodel.Course) *Course {
	return &Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		Image:       c.Image,
		TeacherID:   c.TeacherID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func UnitFromDataModel(u *courseDatamodel.Unit) *Unit {
	return &Unit{
		ID:          u.ID,
		CourseID:    u.CourseID,
		Title:       u.Title,
		Description: u.Description,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func LessonFromDataModel(l *courseDatamodel.Lesson) *Lesson {
	return &Lesson{
		ID:        l.ID,
		UnitID:    l.UnitID,
		Title:     l.Title,
		Content:   l.Content,
		Image:     l.Image,
		Video:     l.Video,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func CoursesFromDataModel(courses []*courseDatamodel.Course) []*Course {
	result := make([]*Course, len(courses))
	for i, c := range courses {
		result[i] = CourseFromDataModel(c)
	}
	return result
}

func UnitsFromDataModel(units []*courseDatamodel.Unit) []*Unit {
	result := make([]*Unit, len(units))
	for i, u := range units {
		result[i] = UnitFromDataModel(u)
	}
	return result
}

func LessonsFromDataModel(lessons []*courseDatamodel.Lesson) []*Lesson {
	result := make([]*Lesson, len(lessons))
	for i, l := range lessons {
		result[i] = LessonFromDataModel(l)
	}
	return result
}
