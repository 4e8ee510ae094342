// Package validation checks structs against their `validate` tags.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/uniedit/paysync/internal/utils/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v. Failures come back as a VALIDATION_ERROR AppError whose
// details map each failing field to the rule it broke.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ValidationError(err.Error())
	}

	fields := make([]string, 0, len(verrs))
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		details[fe.Field()] = fe.Tag()
	}

	return apperrors.ValidationError(
		fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", ")),
	).WithDetails(details)
}
