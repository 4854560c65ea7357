package validator

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct tag validation with the question rules
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("option_texts", validateOptionTexts)
	validate.RegisterValidation("position_key", validatePositionKeys)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).Valid()
}

// validateOptionTexts requires every option text to be non-blank and distinct
func validateOptionTexts(fl validator.FieldLevel) bool {
	options, ok := fl.Field().Interface().([]models.Option)
	if !ok {
		return false
	}
	return DuplicateOrBlankOption(options) < 0
}

// validatePositionKeys requires every key of a submitted answer map to be a positive integer
func validatePositionKeys(fl validator.FieldLevel) bool {
	answers, ok := fl.Field().Interface().(map[string][]string)
	if !ok {
		return false
	}
	for key := range answers {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 {
			return false
		}
	}
	return true
}

// DuplicateOrBlankOption returns the index of the first blank or repeated option text, or -1
func DuplicateOrBlankOption(options []models.Option) int {
	seen := make(map[string]struct{}, len(options))
	for i, o := range options {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			return i
		}
		if _, dup := seen[text]; dup {
			return i
		}
		seen[text] = struct{}{}
	}
	return -1
}
