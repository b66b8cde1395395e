// utils/validate.go - Request payload validation
package utils

import (
	"fmt"
	"regexp"
	"strings"

	"xmasbingo/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// handle is the shared charset for group names and usernames.
var handleRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func init() {
	_ = validate.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handleRe.MatchString(fl.Field().String())
	})
}

// ValidateStruct runs the `validate` tags on a request struct and
// folds the first failure into a user-facing ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &models.ValidationError{Reason: "invalid request"}
	}

	fe := errs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return &models.ValidationError{Reason: fmt.Sprintf("%s is required", field)}
	case "min":
		return &models.ValidationError{Reason: fmt.Sprintf("%s must be at least %s characters", field, fe.Param())}
	case "max":
		return &models.ValidationError{Reason: fmt.Sprintf("%s must be no more than %s characters", field, fe.Param())}
	case "handle":
		return &models.ValidationError{Reason: fmt.Sprintf("%s can only contain letters, numbers, hyphens, and underscores", field)}
	default:
		return &models.ValidationError{Reason: fmt.Sprintf("%s is invalid", field)}
	}
}
