package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/monitoring"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
)

const (
	outcomeSubmitted = "submitted"
	outcomeLate      = "late"
	outcomeForced    = "forced"
	outcomeDropped   = "dropped"
)

// RunService drives the lifecycle of test runs and student attempts
type RunService interface {
	// Lecturer side
	LaunchRun(ctx context.Context, lecturerID string, testID uint) (*models.TestRun, error)
	StopRun(ctx context.Context, lecturerID string, testID uint) (*models.TestRun, error)
	RunningResults(ctx context.Context, lecturerID string, testID uint) (*models.TestRun, error)
	LecturerRunningTests(ctx context.Context, lecturerID string) ([]*models.RunningTest, error)
	LatestResults(ctx context.Context, lecturerID string, testID uint) ([]*models.TestRun, error)
	LaunchableTests(ctx context.Context) ([]*models.Test, error)
	ListRuns(ctx context.Context, filters repositories.RunFilters) ([]*models.TestRun, error)
	GetRun(ctx context.Context, runID string) (*models.TestRun, error)

	// Student side
	ActiveTestIDs(ctx context.Context) ([]uint, error)
	ActiveRuns(ctx context.Context) ([]*models.AvailableRun, error)
	StartAttempt(ctx context.Context, userID, username string, testID uint, lecturerID string) (*models.StartedAttempt, error)
	SubmitAttempt(ctx context.Context, userID, username string, answers map[string][]string, reportedElapsed *int) (*models.RunResult, error)
	RemainingTime(ctx context.Context, userID string) (*models.RemainingTime, error)
}

type runService struct {
	questions repositories.QuestionRepository
	attempts  repositories.AttemptRepository
	runs      repositories.RunRepository
	catalog   repositories.CatalogRepository
	notifier  RunEventService
	logger    *ServiceLogger
	rng       randomSource
	now       func() time.Time
}

func NewRunService(
	questions repositories.QuestionRepository,
	attempts repositories.AttemptRepository,
	runs repositories.RunRepository,
	catalog repositories.CatalogRepository,
	notifier RunEventService,
	logger *slog.Logger,
) RunService {
	return &runService{
		questions: questions,
		attempts:  attempts,
		runs:      runs,
		catalog:   catalog,
		notifier:  notifier,
		logger:    NewServiceLogger(logger, LogConfig{Service: "quizer", Component: "run"}),
		rng:       globalRand{},
		now:       time.Now,
	}
}

// ===== LECTURER OPERATIONS =====

func (s *runService) getTest(ctx context.Context, testID uint) (*models.Test, error) {
	test, err := s.catalog.GetTest(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

func (s *runService) LaunchRun(ctx context.Context, lecturerID string, testID uint) (run *models.TestRun, err error) {
	op := s.logger.WithOperation(ctx, "launch_run", lecturerID)
	defer func() { op.LogResult(fmt.Sprint(testID), "test", err) }()

	test, err := s.getTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	available, err := s.questions.CountByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if available < int64(test.TasksNum) {
		return nil, newInsufficientQuestionsError(testID, available, test.TasksNum)
	}

	run = &models.TestRun{
		TestID:     test.ID,
		TestName:   test.Name,
		SubjectID:  test.SubjectID,
		LecturerID: lecturerID,
		Active:     true,
		LaunchedAt: s.now(),
	}
	if err := s.runs.Launch(ctx, run); err != nil {
		if errors.Is(err, repositories.ErrDuplicateRun) {
			return nil, ErrDuplicateRun
		}
		return nil, fmt.Errorf("failed to launch run: %w", err)
	}

	monitoring.RunsLaunched.Inc()
	s.notifier.NotifyRunLaunched(ctx, run)
	return run, nil
}

func (s *runService) StopRun(ctx context.Context, lecturerID string, testID uint) (run *models.TestRun, err error) {
	op := s.logger.WithOperation(ctx, "stop_run", lecturerID)
	defer func() { op.LogResult(fmt.Sprint(testID), "test", err) }()

	run, err = s.runs.Stop(ctx, testID, lecturerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to stop run: %w", err)
	}

	monitoring.RunsStopped.Inc()
	s.notifier.NotifyRunStopped(ctx, run)
	return run, nil
}

func (s *runService) RunningResults(ctx context.Context, lecturerID string, testID uint) (*models.TestRun, error) {
	run, err := s.runs.GetActive(ctx, testID, lecturerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get running test: %w", err)
	}
	run.SortResults()
	return run, nil
}

func (s *runService) LecturerRunningTests(ctx context.Context, lecturerID string) ([]*models.RunningTest, error) {
	active := true
	runs, err := s.runs.List(ctx, repositories.RunFilters{LecturerID: lecturerID, Active: &active, Limit: repositories.MaxPageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to list running tests: %w", err)
	}

	tests, err := s.testsByID(ctx, runTestIDs(runs))
	if err != nil {
		return nil, err
	}

	out := make([]*models.RunningTest, 0, len(runs))
	for _, run := range runs {
		run.SortResults()
		out = append(out, &models.RunningTest{Test: tests[run.TestID], Run: run})
	}
	return out, nil
}

func (s *runService) LatestResults(ctx context.Context, lecturerID string, testID uint) ([]*models.TestRun, error) {
	runs, err := s.runs.LatestFor(ctx, lecturerID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest results: %w", err)
	}
	for _, run := range runs {
		run.SortResults()
	}
	return runs, nil
}

// LaunchableTests lists catalog tests that nobody is running right now
func (s *runService) LaunchableTests(ctx context.Context) ([]*models.Test, error) {
	running, err := s.ActiveTestIDs(ctx)
	if err != nil {
		return nil, err
	}
	skip := make(map[uint]struct{}, len(running))
	for _, id := range running {
		skip[id] = struct{}{}
	}

	tests, _, err := s.catalog.ListTests(ctx, repositories.TestFilters{Limit: repositories.MaxPageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	out := make([]*models.Test, 0, len(tests))
	for _, t := range tests {
		if _, ok := skip[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *runService) ListRuns(ctx context.Context, filters repositories.RunFilters) ([]*models.TestRun, error) {
	filters.Limit = repositories.PageSize(filters.Limit)
	runs, err := s.runs.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (s *runService) GetRun(ctx context.Context, runID string) (*models.TestRun, error) {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.SortResults()
	return run, nil
}

// ===== STUDENT OPERATIONS =====

func (s *runService) ActiveTestIDs(ctx context.Context) ([]uint, error) {
	ids, err := s.runs.ListActiveTestIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list running tests: %w", err)
	}
	return ids, nil
}

// ActiveRuns lists every active run of every lecturer with its test details
func (s *runService) ActiveRuns(ctx context.Context) ([]*models.AvailableRun, error) {
	runs, err := s.runs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list running tests: %w", err)
	}

	tests, err := s.testsByID(ctx, runTestIDs(runs))
	if err != nil {
		return nil, err
	}

	out := make([]*models.AvailableRun, 0, len(runs))
	for _, run := range runs {
		test, ok := tests[run.TestID]
		if !ok {
			// test deleted while running
			continue
		}
		out = append(out, &models.AvailableRun{
			RunID:       run.ID,
			TestID:      run.TestID,
			TestName:    test.Name,
			Description: test.Description,
			TasksNum:    test.TasksNum,
			Duration:    test.Duration,
			LecturerID:  run.LecturerID,
			LaunchedAt:  run.LaunchedAt,
		})
	}
	return out, nil
}

// resolveRun finds the run a student joins. Without a lecturer the test must be
// run by exactly one lecturer.
func (s *runService) resolveRun(ctx context.Context, testID uint, lecturerID string) (*models.TestRun, error) {
	if lecturerID != "" {
		run, err := s.runs.GetActive(ctx, testID, lecturerID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrRunNotFound
			}
			return nil, fmt.Errorf("failed to get running test: %w", err)
		}
		return run, nil
	}

	active := true
	runs, err := s.runs.List(ctx, repositories.RunFilters{TestID: &testID, Active: &active, Limit: 2})
	if err != nil {
		return nil, fmt.Errorf("failed to get running test: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, ErrRunNotFound
	case 1:
		return runs[0], nil
	default:
		return nil, ErrAmbiguousRun
	}
}

func (s *runService) StartAttempt(ctx context.Context, userID, username string, testID uint, lecturerID string) (started *models.StartedAttempt, err error) {
	op := s.logger.WithOperation(ctx, "start_attempt", userID)
	defer func() { op.LogResult(fmt.Sprint(testID), "test", err) }()

	run, err := s.resolveRun(ctx, testID, lecturerID)
	if err != nil {
		return nil, err
	}

	test, err := s.getTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	pool, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	// questions may have been deleted after launch
	if len(pool) < test.TasksNum {
		return nil, newInsufficientQuestionsError(testID, int64(len(pool)), test.TasksNum)
	}

	presented, key := buildAnswerKey(s.rng, sampleQuestions(s.rng, pool, test.TasksNum))
	attempt := &models.RunningAttempt{
		UserID:     userID,
		Username:   username,
		TestID:     test.ID,
		TestName:   test.Name,
		RunID:      run.ID,
		LecturerID: run.LecturerID,
		StartedAt:  s.now(),
		Duration:   test.Duration,
		AnswerKey:  key,
	}

	orphan, err := s.attempts.Begin(ctx, attempt)
	if errors.Is(err, repositories.ErrCorruptAttempt) {
		s.logger.Logger().WarnContext(ctx, "Unreadable previous attempt discarded",
			"user_id", userID, "error", err)
		monitoring.AttemptsGraded.WithLabelValues(outcomeDropped).Inc()
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to begin attempt: %w", err)
	}
	if orphan != nil {
		s.closeOrphan(ctx, orphan)
	}

	monitoring.AttemptsStarted.Inc()
	s.notifier.NotifyAttemptStarted(ctx, attempt)

	return &models.StartedAttempt{
		RunID:      run.ID,
		TestID:     test.ID,
		TestName:   test.Name,
		LecturerID: run.LecturerID,
		Duration:   test.Duration,
		StartedAt:  attempt.StartedAt,
		Deadline:   attempt.Deadline(),
		Questions:  presented,
	}, nil
}

// closeOrphan records a zero credit result for an abandoned attempt in the run
// it was started under. Failures are logged, the new attempt proceeds anyway.
func (s *runService) closeOrphan(ctx context.Context, orphan *models.RunningAttempt) {
	result := forcedResult(orphan, s.now())
	log := s.logger.Logger().With(
		"user_id", orphan.UserID,
		"run_id", orphan.RunID,
		"test_id", orphan.TestID)

	if err := s.runs.AppendResult(ctx, orphan.RunID, result); err != nil {
		if repositories.IsNotFoundError(err) {
			log.WarnContext(ctx, "Abandoned attempt dropped, its run is no longer active")
			monitoring.AttemptsGraded.WithLabelValues(outcomeDropped).Inc()
			return
		}
		log.ErrorContext(ctx, "Failed to record abandoned attempt", "error", err)
		return
	}

	log.InfoContext(ctx, "Abandoned attempt graded")
	monitoring.ObserveGraded(outcomeForced, result.Score())
	s.notifier.NotifyAttemptGraded(ctx, orphan, result)
}

// restoreAttempt gives a taken attempt back to its owner after its result could
// not be saved, so the submission can be retried.
func (s *runService) restoreAttempt(ctx context.Context, attempt *models.RunningAttempt) {
	log := s.logger.Logger().With("user_id", attempt.UserID, "run_id", attempt.RunID)

	restored, err := s.attempts.Restore(ctx, attempt)
	switch {
	case err != nil:
		log.ErrorContext(ctx, "Failed to restore attempt after save error", "error", err)
	case !restored:
		log.WarnContext(ctx, "Attempt not restored, a newer attempt was started")
	default:
		log.InfoContext(ctx, "Attempt restored for retry")
	}
}

func (s *runService) SubmitAttempt(ctx context.Context, userID, username string, answers map[string][]string, reportedElapsed *int) (result *models.RunResult, err error) {
	op := s.logger.WithOperation(ctx, "submit_attempt", userID)
	defer func() { op.LogResult(userID, "attempt", err) }()

	attempt, err := s.attempts.Take(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.Username == "" {
		attempt.Username = username
	}

	result = gradedResult(attempt, answers, reportedElapsed, s.now())
	if err := s.runs.AppendResult(ctx, attempt.RunID, result); err != nil {
		if repositories.IsNotFoundError(err) {
			monitoring.AttemptsGraded.WithLabelValues(outcomeDropped).Inc()
			return nil, ErrRunNotActive
		}
		s.restoreAttempt(ctx, attempt)
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	outcome := outcomeSubmitted
	if result.Late {
		outcome = outcomeLate
	}
	monitoring.ObserveGraded(outcome, result.Score())
	s.notifier.NotifyAttemptGraded(ctx, attempt, result)
	return result, nil
}

func (s *runService) RemainingTime(ctx context.Context, userID string) (*models.RemainingTime, error) {
	left, attempt, err := s.attempts.RemainingTime(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("failed to get remaining time: %w", err)
	}

	return &models.RemainingTime{
		RunID:            attempt.RunID,
		TestID:           attempt.TestID,
		Duration:         attempt.Duration,
		RemainingSeconds: int64(left / time.Second),
		Deadline:         attempt.Deadline(),
		Expired:          left == 0,
	}, nil
}

// ===== HELPERS =====

func runTestIDs(runs []*models.TestRun) []uint {
	seen := make(map[uint]struct{}, len(runs))
	ids := make([]uint, 0, len(runs))
	for _, run := range runs {
		if _, ok := seen[run.TestID]; ok {
			continue
		}
		seen[run.TestID] = struct{}{}
		ids = append(ids, run.TestID)
	}
	return ids
}

func (s *runService) testsByID(ctx context.Context, ids []uint) (map[uint]*models.Test, error) {
	out := make(map[uint]*models.Test, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	tests, err := s.catalog.GetTestsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tests: %w", err)
	}
	for _, t := range tests {
		out[t.ID] = t
	}
	return out, nil
}
