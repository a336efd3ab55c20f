package course

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/core/common/validation"
	"github.com/frahmantamala/school-platform/internal/storage"
)

var (
	LessonImageExtensions = []string{".jpg", ".jpeg", ".png"}
	LessonVideoExtensions = []string{".mp4"}
)

type CourseDTO struct {
	Title       string
	Description string
	Price       string
	TeacherID   string
	Image       *storage.Upload
}

// parsed holds the typed form of the fields that need conversion.
type parsedCourse struct {
	price     decimal.Decimal
	teacherID *int64
}

func (d CourseDTO) parse(requireAll bool) (*parsedCourse, error) {
	v := validation.NewValidator()
	title := v.Field("title", d.Title).MaxLength(255)
	price := v.Field("price", d.Price)
	if requireAll {
		title.Required()
		price.Required()
	}

	out := &parsedCourse{}
	if d.Price != "" {
		p, err := decimal.NewFromString(strings.TrimSpace(d.Price))
		if err != nil {
			return nil, internal.NewValidationFieldError("price", "price must be a decimal number", internal.ErrCodeValidationFailed)
		}
		out.price = p
		v.Field("price", p).NonNegativeDecimal()
	}
	if d.TeacherID != "" {
		id, err := strconv.ParseInt(d.TeacherID, 10, 64)
		if err != nil || id <= 0 {
			return nil, internal.NewValidationFieldError("teacher_id", "teacher_id must be a positive integer", internal.ErrCodeValidationFailed)
		}
		out.teacherID = &id
	}

	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}
	return out, nil
}

type UnitDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (d UnitDTO) Validate(requireAll bool) error {
	v := validation.NewValidator()
	title := v.Field("title", d.Title).MaxLength(255)
	if requireAll {
		title.Required()
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type LessonDTO struct {
	Title   string
	Content string
	Image   *storage.Upload
	Video   *storage.Upload
}

// Validate checks the media allow-lists before anything is uploaded.
func (d LessonDTO) Validate(requireAll bool) error {
	v := validation.NewValidator()
	title := v.Field("title", d.Title).MaxLength(255)
	if requireAll {
		title.Required()
	}
	if d.Image != nil {
		v.Field("image", d.Image.Filename).Required().Extension(LessonImageExtensions...)
	}
	if d.Video != nil {
		v.Field("video", d.Video.Filename).Required().Extension(LessonVideoExtensions...)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
