package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DecodeAndValidate decodes a JSON request body into v and checks its
// validate struct tags. Handlers call this before touching any field so the
// services only ever see typed, structurally valid input.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// ValidationError is one field-level violation reported to the client.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors flattens validator errors into client-facing
// field/message pairs. Returns nil for non-validator errors (e.g. a JSON
// decode failure), which callers report as a generic bad request instead.
func FormatValidationErrors(err error) []ValidationError {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	out := make([]ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Message: fieldErrorMessage(e),
		})
	}
	return out
}

func fieldErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}
