package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quizer-service/internal/models"
)

const (
	minOptions = 2
	maxOptions = 20
)

// QuestionValidator handles question-specific rules that struct tags cannot express
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// Normalize trims texts and fills derived fields. It must run before ValidateQuestion.
//
// A zero RequiredAnswers defaults to the number of correct options. The
// multiselect flag is left as submitted.
func (v *QuestionValidator) Normalize(question *models.Question) {
	question.Formulation = strings.TrimSpace(question.Formulation)
	for i := range question.Options {
		question.Options[i].Text = strings.TrimSpace(question.Options[i].Text)
	}

	correct := len(question.CorrectOptions())
	if question.RequiredAnswers == 0 {
		question.RequiredAnswers = correct
	}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	var errs ValidationErrors

	if question.TestID == 0 {
		errs.Add("test_id", "is required", "required", question.TestID)
	}
	if strings.TrimSpace(question.Formulation) == "" {
		errs.Add("formulation", "is required", "required", question.Formulation)
	}

	if len(question.Options) < minOptions {
		errs.Add("options", fmt.Sprintf("must have at least %d options", minOptions), "min", len(question.Options))
	} else if len(question.Options) > maxOptions {
		errs.Add("options", fmt.Sprintf("must have at most %d options", maxOptions), "max", len(question.Options))
	}

	if idx := DuplicateOrBlankOption(question.Options); idx >= 0 {
		errs.Add(fmt.Sprintf("options[%d]", idx), "must be non-empty and distinct from the other options", "option_texts", question.Options[idx].Text)
	}

	correct := len(question.CorrectOptions())
	if correct == 0 {
		errs.Add("options", "must have at least 1 correct option", "correct_option", nil)
	} else if question.RequiredAnswers != correct {
		errs.Add("required_answers", fmt.Sprintf("must equal the number of correct options (%d)", correct), "answer_count", question.RequiredAnswers)
	}

	if !question.Multiselect && correct > 1 {
		errs.Add("multiselect", "single choice question must have exactly one correct option", "multiselect", question.Multiselect)
	}

	return errs.OrNil()
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		var errs ValidationErrors
		errs.Add("questions", "cannot be empty", "required", 0)
		return errs
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// ValidateOptionsUpdate checks a replacement option list against the stored
// question. The multiselect flag of the stored question is kept, so a single
// choice question cannot receive several correct options.
func (v *QuestionValidator) ValidateOptionsUpdate(question *models.Question, options []models.Option) error {
	candidate := *question
	candidate.Options = make([]models.Option, len(options))
	for i, o := range options {
		candidate.Options[i] = models.Option{Text: strings.TrimSpace(o.Text), IsCorrect: o.IsCorrect}
	}
	candidate.RequiredAnswers = len(candidate.CorrectOptions())
	return v.ValidateQuestion(&candidate)
}
