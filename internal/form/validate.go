package form

import (
	"errors"

	"pycsa-web/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("province", func(fl validator.FieldLevel) bool {
		return domain.IsProvince(fl.Field().String())
	})
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errs []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errs
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Este campo es obligatorio"
	case "email":
		return "Correo electrónico inválido"
	case "min":
		return "El valor es demasiado corto"
	case "max":
		return "El valor es demasiado largo (máximo " + e.Param() + ")"
	case "gte":
		return "El valor debe ser mayor o igual a " + e.Param()
	case "province":
		return "Provincia no válida"
	default:
		return "Valor inválido"
	}
}

// check validates v and turns the first failure into a form-level Error.
// messages maps "Field.tag" or "Field" to the text shown to the user.
func check(v any, messages map[string]string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	first := validationErrors[0]
	if msg, ok := messages[first.Field()+"."+first.Tag()]; ok {
		return &Error{Message: msg, Fields: FormatValidationErrors(err)}
	}
	if msg, ok := messages[first.Field()]; ok {
		return &Error{Message: msg, Fields: FormatValidationErrors(err)}
	}
	return &Error{Message: first.Field() + ": " + getErrorMessage(first), Fields: FormatValidationErrors(err)}
}
