package comment

import (
	"github.com/frahmantamala/school-platform/internal/core/common/validation"
)

type CreateCommentDTO struct {
	Content string `json:"content"`
}

func (d CreateCommentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("content", d.Content).Required().MaxLength(5000)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
