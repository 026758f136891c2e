package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carbonaccess/plategate/internal/plategate/plate"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

var (
	ErrEmptyPlate         = errors.New("plate is required")
	ErrInvalidPlateFormat = errors.New("invalid plate format")
	ErrDuplicateTagID     = errors.New("tag id already registered")
	ErrDuplicatePlate     = errors.New("plate already registered")
	ErrUnknownEmployee    = errors.New("employee not found")
	ErrInvalidCategory    = errors.New("invalid vehicle category")
	ErrInvalidPhoto       = errors.New("photo is not a supported image")
)

// ValidationError carries one message per rejected input field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names for validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		return plate.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return types.VehicleCategory(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct returns the domain sentinel for plate and category
// failures and a *ValidationError for everything else.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var msgs []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "plate":
			return ErrInvalidPlateFormat
		case "category":
			return fmt.Errorf("%w: %q", ErrInvalidCategory, fe.Value())
		}
		msgs = append(msgs, fieldErrorMessage(fe))
	}
	return &ValidationError{Fields: msgs}
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
