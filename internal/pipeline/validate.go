package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

// ErrInvalidRequest marks a request field outside its allowed range.
var ErrInvalidRequest = errors.New("invalid request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON / query names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// validateRequest checks req and maps the first failure to a domain error.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return fmt.Errorf("%w: missing %q field", domain.ErrMissingField, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
