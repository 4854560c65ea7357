package models

import (
	"time"
)

type Subject struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:200;uniqueIndex" validate:"required,min=1,max=200"`
	Description *string   `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	CreatedBy   string    `json:"created_by" gorm:"size:255;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tests []Test `json:"tests,omitempty" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	TestsCount int64 `json:"tests_count" gorm:"-"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Test is a named quiz definition. The questions themselves live in the question bank.
type Test struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SubjectID   uint      `json:"subject_id" gorm:"not null;index" validate:"required"`
	Name        string    `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string   `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	TasksNum    int       `json:"tasks_num" gorm:"not null" validate:"required,min=1,max=500"`
	Duration    int       `json:"duration" gorm:"not null" validate:"required,min=1,max=1440"` // minutes
	CreatedBy   string    `json:"created_by" gorm:"size:255;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`

	// Computed fields (not stored)
	QuestionsCount int64 `json:"questions_count" gorm:"-"`
}

func (Test) TableName() string {
	return "tests"
}

type SubjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type SubjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type TestCreateRequest struct {
	SubjectID   uint    `json:"subject_id" validate:"required"`
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	TasksNum    int     `json:"tasks_num" validate:"required,min=1,max=500"`
	Duration    int     `json:"duration" validate:"required,min=1,max=1440"`
}

type TestUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	TasksNum    *int    `json:"tasks_num" validate:"omitempty,min=1,max=500"`
	Duration    *int    `json:"duration" validate:"omitempty,min=1,max=1440"`
}

// DeleteSummary reports what a cascading catalog delete removed.
type DeleteSummary struct {
	Tests     int   `json:"tests_deleted"`
	Questions int64 `json:"questions_deleted"`
}

type TestListResponse struct {
	Tests  []*Test `json:"tests"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
