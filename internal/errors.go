package internal

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeConflict     ErrorType = "CONFLICT"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	ErrCodePasswordMismatch ErrorCode = "PASSWORD_MISMATCH"
	ErrCodeOutOfRange       ErrorCode = "OUT_OF_RANGE"

	ErrCodeEmailExists          ErrorCode = "EMAIL_EXISTS"
	ErrCodeAccountNotFound      ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeCurrentPasswordWrong ErrorCode = "CURRENT_PASSWORD_WRONG"

	ErrCodeClassificationExists   ErrorCode = "CLASSIFICATION_EXISTS"
	ErrCodeClassificationNotFound ErrorCode = "CLASSIFICATION_NOT_FOUND"
	ErrCodeVehicleNotFound        ErrorCode = "VEHICLE_NOT_FOUND"
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

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrEmailExists          = NewConflictError("Email already exists. Please login or use a different email.", ErrCodeEmailExists)
	ErrAccountNotFound      = NewNotFoundError("Account not found", ErrCodeAccountNotFound)
	ErrInvalidCredentials   = NewUnauthorizedError("Please check your credentials and try again.", ErrCodeInvalidCredentials)
	ErrCurrentPasswordWrong = NewValidationFieldError("current_password", "Current password is incorrect.", ErrCodeCurrentPasswordWrong)
	ErrPasswordMismatch     = NewValidationFieldError("confirm_password", "Passwords do not match.", ErrCodePasswordMismatch)

	ErrClassificationExists   = NewConflictError("Classification already exists.", ErrCodeClassificationExists)
	ErrClassificationNotFound = NewNotFoundError("Classification not found", ErrCodeClassificationNotFound)
	ErrVehicleNotFound        = NewNotFoundError("Vehicle not found", ErrCodeVehicleNotFound)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FieldErrors flattens validation details into a field -> message map.
func (e *AppError) FieldErrors() map[string]string {
	out := map[string]string{}
	if details, ok := e.Details.(ValidationErrors); ok {
		for _, fe := range details.Errors {
			if _, seen := out[fe.Field]; !seen {
				out[fe.Field] = fe.Message
			}
		}
	}
	return out
}

// Is matches app errors by type, code and message so copies of a sentinel compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type && e.Error() == t.Error()
}
