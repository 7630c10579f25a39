package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := utils.NewValidator()
	_ = v.RegisterValidation("modality", func(fl validator.FieldLevel) bool {
		return models.Modality(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("skill_level", func(fl validator.FieldLevel) bool {
		return models.SkillLevel(fl.Field().String()).IsValid()
	})
	v.RegisterStructValidation(categoryAgeRange, CategoryInput{})
	return v
}

// categoryAgeRange: минимальный возраст не больше максимального.
func categoryAgeRange(sl validator.StructLevel) {
	input := sl.Current().Interface().(CategoryInput)
	if input.MinAge != nil && input.MaxAge != nil && *input.MinAge > *input.MaxAge {
		sl.ReportError(input.MinAge, "min_age", "MinAge", "age_range", "")
	}
}

// validateInput проверяет теги validate и переводит первую ошибку в ошибку сервиса.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "slug":
		return ErrInvalidSlug
	case "email":
		return ErrInvalidEmail
	case "modality":
		return ErrInvalidModality
	case "skill_level":
		return ErrInvalidLevel
	case "age_range":
		return ErrInvalidAgeRange
	case "required":
		return fmt.Errorf("%w: %s is required", ErrValidationFailed, fe.Field())
	}
	return fmt.Errorf("%w: %s is invalid", ErrValidationFailed, fe.Field())
}
