package models

import (
	"time"
)

// Option is one answer choice of a question.
type Option struct {
	Text      string `json:"text" bson:"option" validate:"required,max=1000"`
	IsCorrect bool   `json:"is_correct" bson:"is_true"`
}

// Question belongs to exactly one test and is stored in the question bank.
type Question struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	TestID          uint      `json:"test_id" bson:"test_id" validate:"required"`
	Formulation     string    `json:"formulation" bson:"formulation" validate:"required,min=1,max=5000"`
	RequiredAnswers int       `json:"required_answers" bson:"tasks_num" validate:"omitempty,min=1"`
	Multiselect     bool      `json:"multiselect" bson:"multiselect"`
	WithImages      bool      `json:"with_images" bson:"with_images"`
	Options         []Option  `json:"options" bson:"options" validate:"required,min=2,max=20,option_texts,dive"`
	CreatedBy       string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// CorrectOptions returns the texts of the options marked correct, in stored order.
func (q *Question) CorrectOptions() []string {
	var out []string
	for _, o := range q.Options {
		if o.IsCorrect {
			out = append(out, o.Text)
		}
	}
	return out
}

type QuestionCreateRequest struct {
	Formulation     string   `json:"formulation" validate:"required,min=1,max=5000"`
	RequiredAnswers int      `json:"required_answers" validate:"omitempty,min=1"`
	Multiselect     bool     `json:"multiselect"`
	WithImages      bool     `json:"with_images"`
	Options         []Option `json:"options" validate:"required,min=2,max=20,option_texts,dive"`
}

type QuestionBatchRequest struct {
	Questions []QuestionCreateRequest `json:"questions" validate:"required,min=1,max=500,dive"`
}

type QuestionUpdateRequest struct {
	Formulation string   `json:"formulation" validate:"required,min=1,max=5000"`
	Options     []Option `json:"options" validate:"omitempty,min=2,max=20,option_texts,dive"`
}

type QuestionDeleteRequest struct {
	// Formulation or question id of the question to remove.
	Question string `json:"question" validate:"required"`
}
