package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks req against its struct tags and reports every failing
// field at once.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("Validation Error", []string{err.Error()})
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return apperrors.NewValidationError("Validation Error", msgs)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch {
	case fe.Tag() == "email":
		return "Please provide a valid email address"
	case field == "password" && fe.Tag() == "min":
		return fmt.Sprintf("Password must be at least %s characters long", fe.Param())
	case field == "password" && fe.Tag() == "max":
		return fmt.Sprintf("Password must be at most %s characters long", fe.Param())
	case field == "name" && (fe.Tag() == "min" || fe.Tag() == "max"):
		return "Name must be between 2 and 50 characters"
	case field == "token":
		return "Valid token is required"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must have at least %s entries or characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries or characters", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}
