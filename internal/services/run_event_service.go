package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/quizer-service/internal/events"
	"github.com/SAP-F-2025/quizer-service/internal/models"
)

// RunEventService turns run state transitions into published events.
// Publishing is best effort: failures are logged and never reach the caller.
type RunEventService interface {
	NotifyRunLaunched(ctx context.Context, run *models.TestRun)
	NotifyRunStopped(ctx context.Context, run *models.TestRun)
	NotifyAttemptStarted(ctx context.Context, attempt *models.RunningAttempt)
	NotifyAttemptGraded(ctx context.Context, attempt *models.RunningAttempt, result *models.RunResult)
}

type runEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewRunEventService(eventPublisher events.EventPublisher, logger *slog.Logger) RunEventService {
	return &runEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *runEventService) publish(ctx context.Context, event *events.RunEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.PublishRunEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish run event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

func (s *runEventService) NotifyRunLaunched(ctx context.Context, run *models.TestRun) {
	s.publish(ctx, events.NewRunLaunchedEvent(events.RunLaunchedEvent{
		RunID:      run.ID,
		TestID:     run.TestID,
		TestName:   run.TestName,
		LecturerID: run.LecturerID,
		LaunchedAt: run.LaunchedAt,
	}))
}

func (s *runEventService) NotifyRunStopped(ctx context.Context, run *models.TestRun) {
	payload := events.RunStoppedEvent{
		RunID:       run.ID,
		TestID:      run.TestID,
		LecturerID:  run.LecturerID,
		ResultCount: len(run.Results),
	}
	if run.StoppedAt != nil {
		payload.StoppedAt = *run.StoppedAt
	}
	s.publish(ctx, events.NewRunStoppedEvent(payload))
}

func (s *runEventService) NotifyAttemptStarted(ctx context.Context, attempt *models.RunningAttempt) {
	s.publish(ctx, events.NewAttemptStartedEvent(events.AttemptStartedEvent{
		RunID:      attempt.RunID,
		TestID:     attempt.TestID,
		UserID:     attempt.UserID,
		Username:   attempt.Username,
		StartedAt:  attempt.StartedAt,
		TasksNum:   attempt.TasksNum(),
		Duration:   attempt.Duration,
		LecturerID: attempt.LecturerID,
	}))
}

func (s *runEventService) NotifyAttemptGraded(ctx context.Context, attempt *models.RunningAttempt, result *models.RunResult) {
	s.publish(ctx, events.NewAttemptGradedEvent(events.AttemptGradedEvent{
		RunID:        attempt.RunID,
		TestID:       attempt.TestID,
		UserID:       result.UserID,
		Username:     result.Username,
		RightAnswers: result.RightAnswers,
		TasksNum:     result.TasksNum,
		SubmittedAt:  result.SubmittedAt,
		Late:         result.Late,
		Forced:       result.Forced,
	}))
}
