package transaction

import (
	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/core/common/validation"
)

type CompleteDTO struct {
	TransactionID int64 `json:"transaction_id"`
}

func (dto CompleteDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("transaction_id", dto.TransactionID).Required()

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type CheckoutPage struct {
	Course         CourseSummary `json:"course"`
	PublishableKey string        `json:"publishable_key"`
}

type IntentResponse struct {
	ClientSecret  string `json:"client_secret"`
	TransactionID int64  `json:"transactionId"`
}

type PublishableKeyResponse struct {
	PublishableKey string `json:"publishable_key"`
}
