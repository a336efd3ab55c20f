package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden     ErrorType = "FORBIDDEN"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeUnprocessable ErrorType = "UNPROCESSABLE_EVENT"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal      ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidUpload    ErrorCode = "INVALID_UPLOAD"
	ErrCodeInvalidExtension ErrorCode = "INVALID_EXTENSION"
	ErrCodeInvalidPage      ErrorCode = "INVALID_PAGE"
	ErrCodeNestedReply      ErrorCode = "NESTED_REPLY"

	ErrCodeArticleNotFound     ErrorCode = "ARTICLE_NOT_FOUND"
	ErrCodeCommentNotFound     ErrorCode = "COMMENT_NOT_FOUND"
	ErrCodeCourseNotFound      ErrorCode = "COURSE_NOT_FOUND"
	ErrCodeUnitNotFound        ErrorCode = "UNIT_NOT_FOUND"
	ErrCodeLessonNotFound      ErrorCode = "LESSON_NOT_FOUND"
	ErrCodeTransactionNotFound ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"

	ErrCodeUnauthorizedAccess ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeNotOwner           ErrorCode = "NOT_OWNER"
	ErrCodeStaffOnly          ErrorCode = "STAFF_ONLY"
	ErrCodeSupervisorOnly     ErrorCode = "SUPERVISOR_ONLY"
	ErrCodeStudentOnly        ErrorCode = "STUDENT_ONLY"
	ErrCodeCourseNotPurchased ErrorCode = "COURSE_NOT_PURCHASED"
	ErrCodeCourseHasPurchases ErrorCode = "COURSE_HAS_TRANSACTIONS"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeCheckoutFailed    ErrorCode = "CHECKOUT_FAILED"
	ErrCodeInvalidSignature  ErrorCode = "INVALID_SIGNATURE"
	ErrCodeInvalidPayload    ErrorCode = "INVALID_PAYLOAD"
	ErrCodeUnprocessableHook ErrorCode = "UNPROCESSABLE_WEBHOOK"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy so that the shared sentinel errors below stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is matches on type and code, so errors.Is works against the sentinels after WithCause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewUnprocessableError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnprocessable,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrArticleNotFound     = NewNotFoundError("Article not found", ErrCodeArticleNotFound)
	ErrCommentNotFound     = NewNotFoundError("Comment not found", ErrCodeCommentNotFound)
	ErrCourseNotFound      = NewNotFoundError("Course not found", ErrCodeCourseNotFound)
	ErrUnitNotFound        = NewNotFoundError("Unit not found", ErrCodeUnitNotFound)
	ErrLessonNotFound      = NewNotFoundError("Lesson not found", ErrCodeLessonNotFound)
	ErrTransactionNotFound = NewNotFoundError("Transaction not found", ErrCodeTransactionNotFound)
	ErrUserNotFound        = NewNotFoundError("User not found", ErrCodeUserNotFound)

	ErrAuthenticationRequired = NewUnauthorizedError("authentication required", ErrCodeInvalidToken)
	ErrNotOwner               = NewForbiddenError("you do not own this resource", ErrCodeNotOwner)
	ErrStaffOnly              = NewForbiddenError("teacher or supervisor access required", ErrCodeStaffOnly)
	ErrSupervisorOnly         = NewForbiddenError("supervisor access required", ErrCodeSupervisorOnly)
	ErrStudentOnly            = NewForbiddenError("teachers cannot purchase courses", ErrCodeStudentOnly)
	ErrCourseNotPurchased     = NewForbiddenError("course has not been purchased", ErrCodeCourseNotPurchased)
	ErrCourseHasTransactions  = NewConflictError("course has transactions and cannot be deleted", ErrCodeCourseHasPurchases)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrCheckoutFailed     = NewValidationError("while making a transaction, please try again ...", ErrCodeCheckoutFailed)
	ErrInvalidSignature   = NewValidationError("invalid webhook signature", ErrCodeInvalidSignature)
	ErrInvalidPayload     = NewValidationError("invalid webhook payload", ErrCodeInvalidPayload)
	ErrUnprocessableEvent = NewUnprocessableError("Webhook payload is malformed or missing required fields", ErrCodeUnprocessableHook)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
