// Package validation wraps go-playground/validator with the directory's
// custom rules and converts failures into VALIDATION_FAILED errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// PasswordSpecials are the only non-alphanumeric characters a password may contain.
const PasswordSpecials = "@$!%*?&"

// Password length bounds. bcrypt only accepts inputs up to 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// Validator validates request structs.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the password_strength and digits rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return Digits(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s and returns a VALIDATION_FAILED DomainError listing each
// failing field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewBadRequest("invalid payload")
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	return apperrors.NewValidationError("request validation failed", details)
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperrors.NewValidationError("request validation failed", map[string]any{
				field: describe(fieldErrs[0]),
			})
		}
		return apperrors.NewBadRequest("invalid payload")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "digits":
		return "must contain only digits"
	case "password_strength":
		return fmt.Sprintf("must have %d to %d characters with a lowercase letter, an uppercase letter, a digit and one of %s",
			MinPasswordLength, MaxPasswordLength, PasswordSpecials)
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

// StrongPassword reports whether p has between MinPasswordLength and
// MaxPasswordLength characters drawn only from ASCII letters, digits and
// PasswordSpecials, with at least one of each class.
func StrongPassword(p string) bool {
	if len(p) < MinPasswordLength || len(p) > MaxPasswordLength {
		return false
	}
	var lower, upper, digit, special bool
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.IndexByte(PasswordSpecials, c) >= 0:
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// Digits reports whether s is non-empty and made of ASCII digits only.
func Digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
