package validators

import (
	"context"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// Field names accepted by [UserRequestValidator.Validate] to restrict
// validation to a subset of a request's fields.
const (
	FieldUserID          = "user_id"
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldName            = "name"
	FieldPassword        = "password"
	FieldOldPassword     = "old_password"
	FieldUsernameOrEmail = "username_or_email"
	FieldToken           = "token"
)

const (
	maxUsernameLength   = 64
	maxEmailLength      = 254
	maxNameLength       = 128
	maxPasswordLength   = 1024
	maxIdentifierLength = maxEmailLength
	maxTokenLength      = 512
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// usernameRules reject "@" so that a username can never be mistaken for an
// email address in username-or-email lookups.
func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(3, maxUsernameLength),
		validation.Match(usernamePattern).Error("must contain only letters, digits, '.', '_' or '-'"),
	}
}

// UserRequestValidator checks the shape of the credential lifecycle
// requests. Password strength is a business rule and is checked by the
// service, not here.
type UserRequestValidator struct{}

func NewUserRequestValidator() Validator {
	return &UserRequestValidator{}
}

func (v *UserRequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	var err error

	switch value := obj.(type) {
	case models.SignupRequest:
		err = v.validateSignupRequest(value, fields...)
	case *models.SignupRequest:
		err = v.validateSignupRequest(*value, fields...)

	case models.LoginRequest:
		err = v.validateLoginRequest(value, fields...)
	case *models.LoginRequest:
		err = v.validateLoginRequest(*value, fields...)

	case models.ChangePasswordRequest:
		err = v.validateChangePasswordRequest(value, fields...)
	case *models.ChangePasswordRequest:
		err = v.validateChangePasswordRequest(*value, fields...)

	case models.ResetPasswordRequest:
		err = v.validateResetPasswordRequest(value, fields...)
	case *models.ResetPasswordRequest:
		err = v.validateResetPasswordRequest(*value, fields...)

	case models.RecoverPasswordRequest:
		err = v.validateRecoverPasswordRequest(value, fields...)
	case *models.RecoverPasswordRequest:
		err = v.validateRecoverPasswordRequest(*value, fields...)

	case models.UpdateProfileRequest:
		err = v.validateUpdateProfileRequest(value, fields...)
	case *models.UpdateProfileRequest:
		err = v.validateUpdateProfileRequest(*value, fields...)

	default:
		return ErrUnsupportedType
	}

	return err
}

func (v *UserRequestValidator) validateSignupRequest(r models.SignupRequest, fields ...string) error {
	return validateSelected(&r, fields, []namedRules{
		{FieldUsername, validation.Field(&r.Username, append([]validation.Rule{validation.Required}, usernameRules()...)...)},
		{FieldEmail, validation.Field(&r.Email, validation.Required, validation.Length(3, maxEmailLength), is.Email)},
		{FieldName, validation.Field(&r.Name, validation.Length(0, maxNameLength))},
		{FieldPassword, validation.Field(&r.Password, validation.Required, validation.Length(1, maxPasswordLength))},
	})
}

func (v *UserRequestValidator) validateLoginRequest(r models.LoginRequest, fields ...string) error {
	return validateSelected(&r, fields, []namedRules{
		{FieldUsername, validation.Field(&r.Username, validation.Required, validation.Length(1, maxIdentifierLength))},
		{FieldPassword, validation.Field(&r.Password, validation.Required, validation.Length(1, maxPasswordLength))},
	})
}

func (v *UserRequestValidator) validateChangePasswordRequest(r models.ChangePasswordRequest, fields ...string) error {
	return validateSelected(&r, fields, []namedRules{
		{FieldUserID, validation.Field(&r.UserID, validation.Required, is.UUID)},
		{FieldOldPassword, validation.Field(&r.OldPassword, validation.Required, validation.Length(1, maxPasswordLength))},
		{FieldPassword, validation.Field(&r.Password, validation.Required, validation.Length(1, maxPasswordLength))},
	})
}

func (v *UserRequestValidator) validateResetPasswordRequest(r models.ResetPasswordRequest, fields ...string) error {
	return validateSelected(&r, fields, []namedRules{
		{FieldUsernameOrEmail, validation.Field(&r.UsernameOrEmail, validation.Required, validation.Length(1, maxIdentifierLength))},
	})
}

func (v *UserRequestValidator) validateRecoverPasswordRequest(r models.RecoverPasswordRequest, fields ...string) error {
	return validateSelected(&r, fields, []namedRules{
		{FieldToken, validation.Field(&r.Token, validation.Required, validation.Length(1, maxTokenLength))},
		{FieldPassword, validation.Field(&r.Password, validation.Required, validation.Length(1, maxPasswordLength))},
	})
}

func (v *UserRequestValidator) validateUpdateProfileRequest(r models.UpdateProfileRequest, fields ...string) error {
	if r.Username == "" && r.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrNoFieldsToUpdate)
	}

	return validateSelected(&r, fields, []namedRules{
		{FieldUserID, validation.Field(&r.UserID, validation.Required, is.UUID)},
		{FieldUsername, validation.Field(&r.Username, usernameRules()...)},
		{FieldName, validation.Field(&r.Name, validation.Length(0, maxNameLength))},
	})
}

type namedRules struct {
	name  string
	rules *validation.FieldRules
}

// validateSelected runs the rules of the requested fields, or of all fields
// when none are requested. structPtr must be the struct the rules point into.
func validateSelected(structPtr any, fields []string, all []namedRules) error {
	selected := make([]*validation.FieldRules, 0, len(all))

	if len(fields) == 0 {
		for _, r := range all {
			selected = append(selected, r.rules)
		}
	}

	for _, f := range fields {
		found := false
		for _, r := range all {
			if r.name == f {
				selected = append(selected, r.rules)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}

	if err := validation.ValidateStruct(structPtr, selected...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return nil
}
