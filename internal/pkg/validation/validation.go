package validation

import (
	"errors"
	"strings"

	"expensio/internal/pkg/response"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates a tagged input struct and returns the failing fields.
// A nil slice means the input passed.
func Struct(input interface{}) []response.FieldError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []response.FieldError{{Field: "", Message: err.Error()}}
	}

	details := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, response.FieldError{
			Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Message: messageFor(fe),
		})
	}
	return details
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
