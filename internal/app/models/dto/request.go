package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts gin binding errors into a structured
// validation error detail with a field → message map.
func HandleValidationError(err error) *ErrorDetail {
	fields := FieldErrors{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				fields.Add(field, "This field is required")
			case "email":
				fields.Add(field, "Enter a valid email address")
			case "min":
				fields.Add(field, fmt.Sprintf("Must be at least %s characters", fe.Param()))
			default:
				fields.Add(field, "This field is invalid")
			}
		}
		return NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(fields)
	}

	return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())
}
