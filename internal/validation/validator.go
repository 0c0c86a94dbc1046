package validation

import (
	"errors"
	"reflect"
	"strings"
	"vocab-quiz/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator checks request DTOs against their `validate` struct tags and
// reports failures as domain.ValidationErrors keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateStruct returns nil when s passes, otherwise one entry per failed field.
func (v *Validator) ValidateStruct(s interface{}) domain.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationErrors{domain.NewInvalidFormatError("request", err.Error())}
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		switch fe.Tag() {
		case "required":
			out = append(out, domain.NewMissingFieldError(field))
		case "min", "gte", "gt":
			out = append(out, domain.NewOutOfRangeError(field, fe.Value(), fe.Param(), ""))
		case "max", "lte", "lt":
			out = append(out, domain.NewOutOfRangeError(field, fe.Value(), "", fe.Param()))
		default:
			out = append(out, domain.NewInvalidFormatError(field, fe.Value()))
		}
	}
	return out
}

// fieldPath drops the top-level struct name: "UpdateSettingsRequest.levels[0]" → "levels[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
