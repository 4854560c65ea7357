package validator

import (
	"testing"

	"github.com/SAP-F-2025/quizer-service/internal/errors"
	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() *models.Question {
	return &models.Question{
		TestID:      1,
		Formulation: "  2 + 2 = ?  ",
		Options: []models.Option{
			{Text: "4", IsCorrect: true},
			{Text: " 5 "},
			{Text: "22"},
		},
	}
}

func TestQuestionValidator_Normalize(t *testing.T) {
	v := NewQuestionValidator()

	q := validQuestion()
	v.Normalize(q)

	assert.Equal(t, "2 + 2 = ?", q.Formulation)
	assert.Equal(t, "5", q.Options[1].Text)
	assert.Equal(t, 1, q.RequiredAnswers)
	assert.False(t, q.Multiselect)

	q.Options[1].IsCorrect = true
	q.RequiredAnswers = 0
	v.Normalize(q)
	assert.Equal(t, 2, q.RequiredAnswers)
	assert.False(t, q.Multiselect, "multiselect is never inferred from the options")
	assert.Error(t, v.ValidateQuestion(q))
}

func TestQuestionValidator_ValidateQuestion(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name      string
		mutate    func(q *models.Question)
		wantField string
	}{
		{
			name:   "valid question",
			mutate: func(q *models.Question) {},
		},
		{
			name:      "missing test",
			mutate:    func(q *models.Question) { q.TestID = 0 },
			wantField: "test_id",
		},
		{
			name:      "blank formulation",
			mutate:    func(q *models.Question) { q.Formulation = "   " },
			wantField: "formulation",
		},
		{
			name:      "single option",
			mutate:    func(q *models.Question) { q.Options = q.Options[:1] },
			wantField: "options",
		},
		{
			name:      "duplicate option text",
			mutate:    func(q *models.Question) { q.Options[2].Text = "4" },
			wantField: "options[2]",
		},
		{
			name:      "blank option text",
			mutate:    func(q *models.Question) { q.Options[1].Text = " " },
			wantField: "options[1]",
		},
		{
			name:      "no correct option",
			mutate:    func(q *models.Question) { q.Options[0].IsCorrect = false },
			wantField: "options",
		},
		{
			name:      "required answers mismatch",
			mutate:    func(q *models.Question) { q.RequiredAnswers = 2 },
			wantField: "required_answers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			v.Normalize(q)
			tt.mutate(q)

			err := v.ValidateQuestion(q)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var errs errors.ValidationErrors
			require.ErrorAs(t, err, &errs)

			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestQuestionValidator_SingleChoiceWithTwoCorrect(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion()
	q.Options[1].IsCorrect = true
	q.RequiredAnswers = 2

	err := v.ValidateQuestion(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiselect")
}

func TestQuestionValidator_ValidateBatch(t *testing.T) {
	v := NewQuestionValidator()

	assert.Error(t, v.ValidateBatch(nil))

	good := validQuestion()
	v.Normalize(good)
	bad := validQuestion()
	bad.Formulation = ""
	v.Normalize(bad)

	assert.NoError(t, v.ValidateBatch([]*models.Question{good}))

	err := v.ValidateBatch([]*models.Question{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 2")
	assert.True(t, errors.IsValidationError(err))
}

func TestQuestionValidator_ValidateOptionsUpdate(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion()
	v.Normalize(q)

	err := v.ValidateOptionsUpdate(q, []models.Option{{Text: "a", IsCorrect: true}, {Text: " b "}})
	assert.NoError(t, err)

	err = v.ValidateOptionsUpdate(q, []models.Option{{Text: "a"}, {Text: "b"}})
	assert.Error(t, err)

	// q is single choice, two correct options are rejected
	err = v.ValidateOptionsUpdate(q, []models.Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}})
	assert.Error(t, err)

	q.Multiselect = true
	err = v.ValidateOptionsUpdate(q, []models.Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}})
	assert.NoError(t, err)
}

func TestValidator_StructTags(t *testing.T) {
	v := New()

	err := v.Validate(&models.QuestionCreateRequest{
		Formulation: "Pick one",
		Options:     []models.Option{{Text: "a", IsCorrect: true}, {Text: "a"}},
	})
	require.Error(t, err)
	var errs errors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "options", errs[0].Field)
	assert.Equal(t, "option_texts", errs[0].Rule)

	assert.NoError(t, v.Validate(&models.SubmitAttemptRequest{Answers: map[string][]string{"1": {"a"}, "2": nil}}))
	assert.Error(t, v.Validate(&models.SubmitAttemptRequest{Answers: map[string][]string{"zero": {"a"}}}))
	assert.Error(t, v.Validate(&models.SubmitAttemptRequest{Answers: map[string][]string{"0": {"a"}}}))

	assert.NoError(t, v.Validate(&models.Identity{UserID: "u", Role: models.RoleLecturer}))
	assert.Error(t, v.Validate(&models.Identity{UserID: "u", Role: "teacher"}))
}

func TestDuplicateOrBlankOption(t *testing.T) {
	assert.Equal(t, -1, DuplicateOrBlankOption([]models.Option{{Text: "a"}, {Text: "b"}}))
	assert.Equal(t, 1, DuplicateOrBlankOption([]models.Option{{Text: "a"}, {Text: " a "}}))
	assert.Equal(t, 0, DuplicateOrBlankOption([]models.Option{{Text: ""}, {Text: "b"}}))
}
