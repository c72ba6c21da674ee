package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so messages match the request body.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// patchRules mirrors Patch with the same constraints Draft applies on create.
type patchRules struct {
	Title *string  `json:"title" validate:"omitnil,min=3,max=255"`
	Body  *string  `json:"body" validate:"omitnil,min=10"`
	Tags  []string `json:"tags" validate:"omitempty,dive,required,excludes=;"`
}

// Validate checks the field constraints of a new article.
// It returns a *ValidationError describing the first violation found.
func (d Draft) Validate() error {
	return toValidationError(validatorInstance().Struct(d))
}

// Validate checks the fields present in the patch.
// Title and Body cannot be cleared; Tags and PublishedAt can.
func (p Patch) Validate() error {
	if p.Title.Set && p.Title.Null {
		return &ValidationError{Field: "title", Message: "must not be null"}
	}
	if p.Body.Set && p.Body.Null {
		return &ValidationError{Field: "body", Message: "must not be null"}
	}

	var rules patchRules
	if p.Title.Set {
		rules.Title = &p.Title.Value
	}
	if p.Body.Set {
		rules.Body = &p.Body.Value
	}
	if p.Tags.Set && !p.Tags.Null {
		rules.Tags = p.Tags.Value
	}
	return toValidationError(validatorInstance().Struct(rules))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "excludes":
		return fmt.Sprintf("must not contain %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
