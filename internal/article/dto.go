package article

import (
	"github.com/frahmantamala/school-platform/internal/core/common/validation"
	"github.com/frahmantamala/school-platform/internal/storage"
)

type CreateArticleDTO struct {
	Title   string
	Content string
	Image   *storage.Upload
}

func (d CreateArticleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(255)
	v.Field("content", d.Content).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateArticleDTO leaves empty fields unchanged.
type UpdateArticleDTO struct {
	Title   string
	Content string
	Image   *storage.Upload
}

func (d UpdateArticleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", d.Title).MaxLength(255)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
