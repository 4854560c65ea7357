package models

import (
	"sort"
	"time"
)

// TestRun is one launch of a test by a lecturer. Only one active run exists per
// (test, lecturer) pair.
type TestRun struct {
	ID         string      `json:"id" bson:"_id,omitempty"`
	TestID     uint        `json:"test_id" bson:"test_id"`
	TestName   string      `json:"test_name" bson:"test_name"`
	SubjectID  uint        `json:"subject_id" bson:"subject_id"`
	LecturerID string      `json:"lecturer_id" bson:"lecturer_id"`
	Active     bool        `json:"active" bson:"active"`
	LaunchedAt time.Time   `json:"launched_at" bson:"launched_at"`
	StoppedAt  *time.Time  `json:"stopped_at,omitempty" bson:"stopped_at,omitempty"`
	Results    []RunResult `json:"results" bson:"results"`
}

// SortResults orders results by submission time, earliest first.
func (r *TestRun) SortResults() {
	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].SubmittedAt.Before(r.Results[j].SubmittedAt)
	})
}

// GradedAnswer is the grading outcome for a single question of an attempt.
type GradedAnswer struct {
	Position    string   `json:"position" bson:"position"`
	QuestionID  string   `json:"question_id" bson:"question_id"`
	Formulation string   `json:"formulation" bson:"formulation"`
	Selected    []string `json:"selected" bson:"selected"`
	Expected    []string `json:"expected" bson:"expected"`
	Correct     bool     `json:"correct" bson:"correct"`
}

// RunResult is a graded attempt. Results are immutable once appended to a run.
type RunResult struct {
	UserID         string         `json:"user_id" bson:"user_id"`
	Username       string         `json:"username" bson:"username"`
	RightAnswers   int            `json:"right_answers" bson:"right_answers"`
	TasksNum       int            `json:"tasks_num" bson:"tasks_num"`
	Answers        []GradedAnswer `json:"answers" bson:"answers"`
	StartedAt      time.Time      `json:"started_at" bson:"started_at"`
	SubmittedAt    time.Time      `json:"submitted_at" bson:"submitted_at"`
	ElapsedSeconds int64          `json:"elapsed_seconds" bson:"elapsed_seconds"`
	Duration       int            `json:"duration" bson:"duration"` // minutes

	// ReportedElapsedMinutes is what the client claimed, kept for audit only.
	ReportedElapsedMinutes *int `json:"reported_elapsed_minutes,omitempty" bson:"reported_elapsed_minutes,omitempty"`
	Late                   bool `json:"late" bson:"late"`
	// Forced marks results produced for attempts that were abandoned.
	Forced bool `json:"forced" bson:"forced"`
}

func (r *RunResult) Score() float64 {
	if r.TasksNum == 0 {
		return 0
	}
	return float64(r.RightAnswers) / float64(r.TasksNum)
}

type LaunchRunRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

type StopRunRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

// AvailableRun is an active run as listed to students.
type AvailableRun struct {
	RunID       string    `json:"run_id"`
	TestID      uint      `json:"test_id"`
	TestName    string    `json:"test_name"`
	Description *string   `json:"description,omitempty"`
	TasksNum    int       `json:"tasks_num"`
	Duration    int       `json:"duration"`
	LecturerID  string    `json:"lecturer_id"`
	LaunchedAt  time.Time `json:"launched_at"`
}

// RunningTest is a lecturer's active run with the catalog test it belongs to.
type RunningTest struct {
	Test *Test    `json:"test"`
	Run  *TestRun `json:"run"`
}
