package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events emitted around test runs
type EventType string

const (
	// Run lifecycle events
	EventRunLaunched EventType = "run.launched"
	EventRunStopped  EventType = "run.stopped"

	// Attempt events
	EventAttemptStarted  EventType = "attempt.started"
	EventAttemptGraded   EventType = "attempt.graded"
	EventAttemptOrphaned EventType = "attempt.orphaned"
)

const (
	eventSource  = "quizer-service"
	eventVersion = "1.0"
)

// RunEvent is the envelope for every event published by the service
type RunEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Run event payloads

type RunLaunchedEvent struct {
	RunID      string    `json:"run_id"`
	TestID     uint      `json:"test_id"`
	TestName   string    `json:"test_name"`
	LecturerID string    `json:"lecturer_id"`
	LaunchedAt time.Time `json:"launched_at"`
}

type RunStoppedEvent struct {
	RunID       string    `json:"run_id"`
	TestID      uint      `json:"test_id"`
	LecturerID  string    `json:"lecturer_id"`
	StoppedAt   time.Time `json:"stopped_at"`
	ResultCount int       `json:"result_count"`
}

// Attempt event payloads

type AttemptStartedEvent struct {
	RunID      string    `json:"run_id"`
	TestID     uint      `json:"test_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	StartedAt  time.Time `json:"started_at"`
	TasksNum   int       `json:"tasks_num"`
	Duration   int       `json:"duration"` // minutes
	LecturerID string    `json:"lecturer_id"`
}

type AttemptGradedEvent struct {
	RunID        string    `json:"run_id"`
	TestID       uint      `json:"test_id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	RightAnswers int       `json:"right_answers"`
	TasksNum     int       `json:"tasks_num"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Late         bool      `json:"late"`
	Forced       bool      `json:"forced"`
}

func newRunEvent(eventType EventType, data interface{}) *RunEvent {
	return &RunEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// Event factory functions

func NewRunLaunchedEvent(payload RunLaunchedEvent) *RunEvent {
	return newRunEvent(EventRunLaunched, payload)
}

func NewRunStoppedEvent(payload RunStoppedEvent) *RunEvent {
	return newRunEvent(EventRunStopped, payload)
}

func NewAttemptStartedEvent(payload AttemptStartedEvent) *RunEvent {
	return newRunEvent(EventAttemptStarted, payload)
}

// NewAttemptGradedEvent emits attempt.orphaned instead of attempt.graded when
// the result was produced for an attempt that was never submitted.
func NewAttemptGradedEvent(payload AttemptGradedEvent) *RunEvent {
	if payload.Forced {
		return newRunEvent(EventAttemptOrphaned, payload)
	}
	return newRunEvent(EventAttemptGraded, payload)
}

// GenerateEventID returns a random event identifier
func GenerateEventID() string {
	return uuid.NewString()
}
