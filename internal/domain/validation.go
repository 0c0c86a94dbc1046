package domain

import (
	"fmt"
	"strings"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors collects every field error of one request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Message: "invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max string) ValidationError {
	msg := "value is out of range"
	switch {
	case min != "" && max != "":
		msg = fmt.Sprintf("must be between %s and %s", min, max)
	case min != "":
		msg = fmt.Sprintf("must be at least %s", min)
	case max != "":
		msg = fmt.Sprintf("must be at most %s", max)
	}
	return ValidationError{Field: field, Message: msg, Value: value}
}
