package validator

import (
	"go-clinic-scheduler/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// slottime accepts only the half-hour labels of the booking grid, e.g. "10:30 AM".
	_ = v.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		return entity.IsValidSlotTime(fl.Field().String())
	})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "required_with":
				errors[field] = field + " is required when " + e.Param() + " is set"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param()
			case "max":
				errors[field] = field + " must be at most " + e.Param()
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "unique":
				errors[field] = field + " must not contain duplicates"
			case "datetime":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "slottime":
				errors[field] = field + " must be a half-hour slot such as 10:30 AM"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
