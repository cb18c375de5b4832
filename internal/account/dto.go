package account

import (
	"strings"

	errors "github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/core/common/validation"
)

// Form field names shared by the templates and the handler.
const (
	FieldFirstName       = "account_firstname"
	FieldLastName        = "account_lastname"
	FieldEmail           = "account_email"
	FieldPassword        = "account_password"
	FieldCurrentPassword = "current_password"
	FieldConfirmPassword = "confirm_password"
)

const (
	msgFirstName     = "Please provide a first name."
	msgLastName      = "Please provide a last name."
	msgEmail         = "A valid email is required."
	msgPassword      = "Password is required."
	msgPasswordLen   = "Password must be at least 10 characters."
	msgPasswordMax   = "Password is too long (72 bytes maximum)."
	msgPasswordRules = "Password must contain at least 1 uppercase, 1 number, and 1 special character."
	msgCurrent       = "Please enter your current password."
)

type RegisterDTO struct {
	FirstName string `json:"account_firstname"`
	LastName  string `json:"account_lastname"`
	Email     string `json:"account_email"`
	Password  string `json:"-"`
}

func (dto *RegisterDTO) Normalize() {
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	dto.Email = validation.NormalizeEmail(dto.Email)
}

func (dto RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field(FieldFirstName, dto.FirstName).Required(msgFirstName)
	v.Field(FieldLastName, dto.LastName).Required(msgLastName)
	v.Field(FieldEmail, dto.Email).Email(msgEmail)
	passwordRules(v, FieldPassword, dto.Password)
	return result(v)
}

type LoginDTO struct {
	Email    string `json:"account_email"`
	Password string `json:"-"`
}

func (dto *LoginDTO) Normalize() {
	dto.Email = validation.NormalizeEmail(dto.Email)
}

func (dto LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field(FieldEmail, dto.Email).Email(msgEmail)
	v.Field(FieldPassword, dto.Password).Required(msgPassword)
	return result(v)
}

type UpdateProfileDTO struct {
	FirstName string `json:"account_firstname"`
	LastName  string `json:"account_lastname"`
	Email     string `json:"account_email"`
}

func (dto *UpdateProfileDTO) Normalize() {
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	dto.Email = validation.NormalizeEmail(dto.Email)
}

func (dto UpdateProfileDTO) Validate() error {
	v := validation.NewValidator()
	v.Field(FieldFirstName, dto.FirstName).Required(msgFirstName)
	v.Field(FieldLastName, dto.LastName).Required(msgLastName)
	v.Field(FieldEmail, dto.Email).Email(msgEmail)
	return result(v)
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"-"`
	NewPassword     string `json:"-"`
	ConfirmPassword string `json:"-"`
}

func (dto ChangePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field(FieldCurrentPassword, dto.CurrentPassword).Required(msgCurrent)
	passwordRules(v, FieldPassword, dto.NewPassword)
	v.Field(FieldConfirmPassword, dto.ConfirmPassword).Custom(func(value interface{}) *errors.AppError {
		if value.(string) != dto.NewPassword {
			return errors.ErrPasswordMismatch
		}
		return nil
	})
	return result(v)
}

func passwordRules(v *validation.ValidationBuilder, field, password string) {
	v.Field(field, password).
		Required(msgPassword).
		MinLength(10, msgPasswordLen).
		MaxBytes(validation.MaxPasswordBytes, msgPasswordMax).
		StrongPassword(msgPasswordRules)
}

// result keeps a nil *AppError from turning into a non-nil error.
func result(v *validation.ValidationBuilder) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
