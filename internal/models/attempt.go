package models

import (
	"sort"
	"strconv"
	"time"
)

// AnswerKeyEntry is the expected answer set for one presented question.
type AnswerKeyEntry struct {
	QuestionID   string   `json:"id"`
	Formulation  string   `json:"formulation"`
	RightAnswers []string `json:"right_answers"`
}

// RunningAttempt is a student's in-progress attempt. At most one exists per user.
type RunningAttempt struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	TestID     uint      `json:"test_id"`
	TestName   string    `json:"test_name"`
	RunID      string    `json:"run_id"`
	LecturerID string    `json:"lecturer_id"`
	StartedAt  time.Time `json:"started_at"`
	Duration   int       `json:"duration"` // minutes

	// AnswerKey is keyed by 1-based question position rendered as a string.
	AnswerKey map[string]AnswerKeyEntry `json:"answer_key"`
}

func (a *RunningAttempt) Deadline() time.Time {
	return a.StartedAt.Add(time.Duration(a.Duration) * time.Minute)
}

// Remaining returns the time left until the deadline, never negative.
func (a *RunningAttempt) Remaining(now time.Time) time.Duration {
	left := a.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (a *RunningAttempt) TasksNum() int {
	return len(a.AnswerKey)
}

// Positions returns the answer key positions in ascending numeric order.
func (a *RunningAttempt) Positions() []string {
	positions := make([]string, 0, len(a.AnswerKey))
	for p := range a.AnswerKey {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positionLess(positions[i], positions[j])
	})
	return positions
}

func positionLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ai < bi
}

// PresentedQuestion is a question as shown to a student, without correctness flags.
type PresentedQuestion struct {
	Position        string   `json:"position"`
	QuestionID      string   `json:"id"`
	Formulation     string   `json:"formulation"`
	RequiredAnswers int      `json:"required_answers"`
	Multiselect     bool     `json:"multiselect"`
	WithImages      bool     `json:"with_images"`
	Options         []string `json:"options"`
}

type StartAttemptRequest struct {
	TestID     uint   `json:"test_id" validate:"required"`
	LecturerID string `json:"lecturer_id" validate:"omitempty,max=255"`
}

type SubmitAttemptRequest struct {
	// Answers maps question position to the chosen option texts.
	Answers map[string][]string `json:"answers" validate:"required,position_key"`
	// ElapsedMinutes is the client's own measurement; it is recorded but not trusted.
	ElapsedMinutes *int `json:"elapsed_minutes" validate:"omitempty,min=0"`
}

// StartedAttempt is what a student receives when an attempt begins.
type StartedAttempt struct {
	RunID      string              `json:"run_id"`
	TestID     uint                `json:"test_id"`
	TestName   string              `json:"test_name"`
	LecturerID string              `json:"lecturer_id"`
	Duration   int                 `json:"duration"`
	StartedAt  time.Time           `json:"started_at"`
	Deadline   time.Time           `json:"deadline"`
	Questions  []PresentedQuestion `json:"questions"`
}

type RemainingTime struct {
	RunID            string    `json:"run_id"`
	TestID           uint      `json:"test_id"`
	Duration         int       `json:"duration"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Deadline         time.Time `json:"deadline"`
	Expired          bool      `json:"expired"`
}
