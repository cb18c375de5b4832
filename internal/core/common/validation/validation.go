package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	errors "github.com/frahmantamala/motors-dealership/internal"
	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

var (
	validate = validator.New()

	alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

// Required rejects empty or whitespace-only strings and zero numbers.
func (fv *FieldValidator) Required(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		case int64:
			if v == 0 {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len([]rune(strings.TrimSpace(v))) < min {
				if message == "" {
					message = fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min)
				}
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len([]rune(v)) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// Email checks the address shape with the go-playground email rule.
// MaxBytes limits the encoded length rather than the rune count.
func (fv *FieldValidator) MaxBytes(max int, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			if message == "" {
				message = fmt.Sprintf("%s must not exceed %d bytes", fv.FieldName, max)
			}
			return fv.fail(message, errors.ErrCodeOutOfRange)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok {
			return nil
		}
		if err := validate.Var(v, "required,email"); err != nil {
			return fv.fail(message, errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Pattern(re *regexp.Regexp, message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && !re.MatchString(v) {
			return fv.fail(message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Alphanumeric(message string) *FieldValidator {
	return fv.Pattern(alphanumeric, message, errors.ErrCodeInvalidName)
}

// StrongPassword requires upper, lower, digit and special characters and no whitespace.
func (fv *FieldValidator) StrongPassword(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok {
			return nil
		}
		if !IsStrongPassword(v) {
			return fv.fail(message, errors.ErrCodeWeakPassword)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) IntRange(min, max int64, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok && (v < min || v > max) {
			if message == "" {
				message = fmt.Sprintf("%s must be between %d and %d", fv.FieldName, min, max)
			}
			return fv.fail(message, errors.ErrCodeOutOfRange)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinInt(min int64, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok && v < min {
			if message == "" {
				message = fmt.Sprintf("%s must be at least %d", fv.FieldName, min)
			}
			return fv.fail(message, errors.ErrCodeOutOfRange)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinFloat(min float64, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(float64); ok && v < min {
			if message == "" {
				message = fmt.Sprintf("%s must be at least %g", fv.FieldName, min)
			}
			return fv.fail(message, errors.ErrCodeOutOfRange)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field and reports the first failing rule of each.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			break
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

func IsStrongPassword(password string) bool {
	if len([]rune(password)) < 10 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9'):
			special = true
		}
	}
	return upper && lower && digit && special
}

func ValidatePassword(field, password string) *errors.AppError {
	v := NewValidator()
	v.Field(field, password).
		Required("Password is required.").
		MinLength(10, "Password must be at least 10 characters.").
		MaxBytes(MaxPasswordBytes, "Password is too long (72 bytes maximum).").
		StrongPassword("Password must contain at least 1 uppercase, 1 number, and 1 special character.")
	return v.Validate()
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
