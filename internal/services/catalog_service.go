package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
)

// CatalogService manages subjects and tests. Deleting either cascades into the
// question bank.
type CatalogService interface {
	CreateSubject(ctx context.Context, req *models.SubjectCreateRequest, userID string) (*models.Subject, error)
	GetSubject(ctx context.Context, id uint) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id uint, req *models.SubjectUpdateRequest) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	DeleteSubject(ctx context.Context, id uint) (*models.DeleteSummary, error)

	CreateTest(ctx context.Context, req *models.TestCreateRequest, userID string) (*models.Test, error)
	GetTest(ctx context.Context, id uint) (*models.Test, error)
	UpdateTest(ctx context.Context, id uint, req *models.TestUpdateRequest) (*models.Test, error)
	ListTests(ctx context.Context, filters repositories.TestFilters) (*models.TestListResponse, error)
	DeleteTest(ctx context.Context, id uint) (*models.DeleteSummary, error)
}

type catalogService struct {
	catalog   repositories.CatalogRepository
	runs      repositories.RunRepository
	questions QuestionBankService
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewCatalogService(
	catalog repositories.CatalogRepository,
	runs repositories.RunRepository,
	questions QuestionBankService,
	validator *validator.Validator,
	logger *slog.Logger,
) CatalogService {
	return &catalogService{
		catalog:   catalog,
		runs:      runs,
		questions: questions,
		validator: validator,
		logger:    NewServiceLogger(logger, LogConfig{Service: "quizer", Component: "catalog"}),
	}
}

// ===== SUBJECTS =====

func (s *catalogService) CreateSubject(ctx context.Context, req *models.SubjectCreateRequest, userID string) (subject *models.Subject, err error) {
	op := s.logger.WithOperation(ctx, "create_subject", userID)
	defer func() { op.LogResult(req.Name, "subject", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	subject = &models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := s.catalog.CreateSubject(ctx, subject); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrSubjectDuplicateName
		}
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}
	return subject, nil
}

func (s *catalogService) GetSubject(ctx context.Context, id uint) (*models.Subject, error) {
	subject, err := s.catalog.GetSubject(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

func (s *catalogService) UpdateSubject(ctx context.Context, id uint, req *models.SubjectUpdateRequest) (subject *models.Subject, err error) {
	op := s.logger.WithOperation(ctx, "update_subject", "")
	defer func() { op.LogResult(fmt.Sprint(id), "subject", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	subject, err = s.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		subject.Description = req.Description
	}

	if err := s.catalog.UpdateSubject(ctx, subject); err != nil {
		switch {
		case repositories.IsDuplicateError(err):
			return nil, ErrSubjectDuplicateName
		case repositories.IsNotFoundError(err):
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}
	return subject, nil
}

func (s *catalogService) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.catalog.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// DeleteSubject removes the subject, its tests and every question of those tests.
// It refuses while any of the tests is running.
func (s *catalogService) DeleteSubject(ctx context.Context, id uint) (summary *models.DeleteSummary, err error) {
	op := s.logger.WithOperation(ctx, "delete_subject", "")
	defer func() { op.LogResult(fmt.Sprint(id), "subject", err) }()

	if _, err := s.GetSubject(ctx, id); err != nil {
		return nil, err
	}

	tests, _, err := s.catalog.ListTests(ctx, repositories.TestFilters{SubjectID: &id, Limit: repositories.MaxPageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to list subject tests: %w", err)
	}
	for _, t := range tests {
		if err := s.ensureNotRunning(ctx, t.ID); err != nil {
			return nil, err
		}
	}

	testIDs, err := s.catalog.DeleteSubject(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to delete subject: %w", err)
	}

	summary = &models.DeleteSummary{Tests: len(testIDs)}
	if len(testIDs) > 0 {
		summary.Questions, err = s.questions.DeleteAllForTests(ctx, testIDs)
		if err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// ===== TESTS =====

func (s *catalogService) ensureNotRunning(ctx context.Context, testID uint) error {
	n, err := s.runs.CountActiveForTest(ctx, testID)
	if err != nil {
		return fmt.Errorf("failed to check running test: %w", err)
	}
	if n > 0 {
		return ErrTestRunning
	}
	return nil
}

func (s *catalogService) CreateTest(ctx context.Context, req *models.TestCreateRequest, userID string) (test *models.Test, err error) {
	op := s.logger.WithOperation(ctx, "create_test", userID)
	defer func() { op.LogResult(req.Name, "test", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	test = &models.Test{
		SubjectID:   req.SubjectID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		TasksNum:    req.TasksNum,
		Duration:    req.Duration,
		CreatedBy:   userID,
	}
	if err := s.catalog.CreateTest(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	return test, nil
}

func (s *catalogService) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.catalog.GetTest(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	count, err := s.questions.Count(ctx, id)
	if err != nil {
		return nil, err
	}
	test.QuestionsCount = count
	return test, nil
}

// UpdateTest edits a test. A tasks count above the current pool is accepted;
// the pool is checked when the test is launched.
func (s *catalogService) UpdateTest(ctx context.Context, id uint, req *models.TestUpdateRequest) (test *models.Test, err error) {
	op := s.logger.WithOperation(ctx, "update_test", "")
	defer func() { op.LogResult(fmt.Sprint(id), "test", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test, err = s.GetTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		test.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.TasksNum != nil {
		test.TasksNum = *req.TasksNum
	}
	if req.Duration != nil {
		test.Duration = *req.Duration
	}

	if err := s.catalog.UpdateTest(ctx, test); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to update test: %w", err)
	}
	return test, nil
}

func (s *catalogService) ListTests(ctx context.Context, filters repositories.TestFilters) (*models.TestListResponse, error) {
	filters.Limit = repositories.PageSize(filters.Limit)
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	tests, total, err := s.catalog.ListTests(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	ids := make([]uint, 0, len(tests))
	for _, t := range tests {
		ids = append(ids, t.ID)
	}
	if len(ids) > 0 {
		counts, err := s.questions.CountForTests(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, t := range tests {
			t.QuestionsCount = counts[t.ID]
		}
	}

	return &models.TestListResponse{
		Tests:  tests,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// DeleteTest removes a test that is not running together with its questions
func (s *catalogService) DeleteTest(ctx context.Context, id uint) (summary *models.DeleteSummary, err error) {
	op := s.logger.WithOperation(ctx, "delete_test", "")
	defer func() { op.LogResult(fmt.Sprint(id), "test", err) }()

	if err := s.ensureNotRunning(ctx, id); err != nil {
		return nil, err
	}

	if err := s.catalog.DeleteTest(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to delete test: %w", err)
	}

	removed, err := s.questions.DeleteAll(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.DeleteSummary{Tests: 1, Questions: removed}, nil
}
