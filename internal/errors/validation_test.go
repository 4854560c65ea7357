package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("test_field", "test message", "test_value")

	assert.Equal(t, "test_field", err.Field)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, "test_value", err.Value)
	assert.Equal(t, "validation error on field 'test_field': test message", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())
	assert.NoError(t, errs.OrNil())

	errs.Add("field1", "message1", "", nil)
	assert.Equal(t, "validation failed: field1 message1", errs.Error())

	errs = append(errs, *NewValidationError("field2", "message2", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
	assert.Error(t, errs.OrNil())
}

func TestIsValidationError(t *testing.T) {
	var errs ValidationErrors
	errs.Add("formulation", "is required", "required", "")

	assert.True(t, IsValidationError(errs))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", errs)))
	assert.True(t, IsValidationError(NewValidationError("a", "b", nil)))
	assert.False(t, IsValidationError(fmt.Errorf("plain")))
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		Name     string `validate:"required"`
		TasksNum int    `validate:"min=1"`
	}

	v := validator.New()
	err := v.Struct(payload{TasksNum: 0})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "Name", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "TasksNum", errs[1].Field)
	assert.Equal(t, "must be at least 1", errs[1].Message)
	assert.Equal(t, "min", errs[1].Rule)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	assert.Empty(t, ToValidationErrors(fmt.Errorf("boom")))
}
