// Package response holds the JSON error envelope every failing request is answered with.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	EmptyRequestBodyResponse   = Error("Request body is empty")
	InvalidRequestBodyResponse = Error("Invalid request body")
	ServerErrorResponse        = Error("Internal server error")
)

func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "url":
		return "Invalid url."
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []ValidationError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := make([]ValidationError, 0, len(validationErrs))
	for _, e := range validationErrs {
		details = append(details, ValidationError{
			Field:   e.Field(),
			Message: messageForTag(e.Tag()),
		})
	}

	return details
}

// ValidationErrorResponse builds a 400 body listing each field the validator rejected.
func ValidationErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Error:   "Validation failed",
		Details: getValidationErrors(err),
	}
}
