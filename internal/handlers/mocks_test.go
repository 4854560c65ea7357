package handlers

import (
	"context"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/SAP-F-2025/quizer-service/internal/services"
	"github.com/stretchr/testify/mock"
)

type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) LaunchRun(ctx context.Context, lecturerID string, testID uint) (*models.TestRun, error) {
	args := m.Called(ctx, lecturerID, testID)
	run, _ := args.Get(0).(*models.TestRun)
	return run, args.Error(1)
}

func (m *MockRunService) StopRun(ctx context.Context, lecturerID string, testID uint) (*models.TestRun, error) {
	args := m.Called(ctx, lecturerID, testID)
	run, _ := args.Get(0).(*models.TestRun)
	return run, args.Error(1)
}

func (m *MockRunService) RunningResults(ctx context.Context, lecturerID string, testID uint) (*models.TestRun, error) {
	args := m.Called(ctx, lecturerID, testID)
	run, _ := args.Get(0).(*models.TestRun)
	return run, args.Error(1)
}

func (m *MockRunService) LecturerRunningTests(ctx context.Context, lecturerID string) ([]*models.RunningTest, error) {
	args := m.Called(ctx, lecturerID)
	running, _ := args.Get(0).([]*models.RunningTest)
	return running, args.Error(1)
}

func (m *MockRunService) LatestResults(ctx context.Context, lecturerID string, testID uint) ([]*models.TestRun, error) {
	args := m.Called(ctx, lecturerID, testID)
	runs, _ := args.Get(0).([]*models.TestRun)
	return runs, args.Error(1)
}

func (m *MockRunService) LaunchableTests(ctx context.Context) ([]*models.Test, error) {
	args := m.Called(ctx)
	tests, _ := args.Get(0).([]*models.Test)
	return tests, args.Error(1)
}

func (m *MockRunService) ListRuns(ctx context.Context, filters repositories.RunFilters) ([]*models.TestRun, error) {
	args := m.Called(ctx, filters)
	runs, _ := args.Get(0).([]*models.TestRun)
	return runs, args.Error(1)
}

func (m *MockRunService) GetRun(ctx context.Context, runID string) (*models.TestRun, error) {
	args := m.Called(ctx, runID)
	run, _ := args.Get(0).(*models.TestRun)
	return run, args.Error(1)
}

func (m *MockRunService) ActiveTestIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uint)
	return ids, args.Error(1)
}

func (m *MockRunService) ActiveRuns(ctx context.Context) ([]*models.AvailableRun, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]*models.AvailableRun)
	return runs, args.Error(1)
}

func (m *MockRunService) StartAttempt(ctx context.Context, userID, username string, testID uint, lecturerID string) (*models.StartedAttempt, error) {
	args := m.Called(ctx, userID, username, testID, lecturerID)
	started, _ := args.Get(0).(*models.StartedAttempt)
	return started, args.Error(1)
}

func (m *MockRunService) SubmitAttempt(ctx context.Context, userID, username string, answers map[string][]string, reportedElapsed *int) (*models.RunResult, error) {
	args := m.Called(ctx, userID, username, answers, reportedElapsed)
	result, _ := args.Get(0).(*models.RunResult)
	return result, args.Error(1)
}

func (m *MockRunService) RemainingTime(ctx context.Context, userID string) (*models.RemainingTime, error) {
	args := m.Called(ctx, userID)
	left, _ := args.Get(0).(*models.RemainingTime)
	return left, args.Error(1)
}

type MockQuestionBankService struct {
	mock.Mock
}

func (m *MockQuestionBankService) Add(ctx context.Context, testID uint, question *models.Question) (*models.Question, error) {
	args := m.Called(ctx, testID, question)
	q, _ := args.Get(0).(*models.Question)
	return q, args.Error(1)
}

func (m *MockQuestionBankService) AddBatch(ctx context.Context, testID uint, questions []*models.Question) (int, error) {
	args := m.Called(ctx, testID, questions)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionBankService) ListFor(ctx context.Context, testID uint) ([]*models.Question, error) {
	args := m.Called(ctx, testID)
	qs, _ := args.Get(0).([]*models.Question)
	return qs, args.Error(1)
}

func (m *MockQuestionBankService) Get(ctx context.Context, questionID string) (*models.Question, error) {
	args := m.Called(ctx, questionID)
	q, _ := args.Get(0).(*models.Question)
	return q, args.Error(1)
}

func (m *MockQuestionBankService) DeleteOne(ctx context.Context, testID uint, formulationOrID string) (int64, error) {
	args := m.Called(ctx, testID, formulationOrID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionBankService) DeleteAll(ctx context.Context, testID uint) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionBankService) DeleteAllForTests(ctx context.Context, testIDs []uint) (int64, error) {
	args := m.Called(ctx, testIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionBankService) Update(ctx context.Context, questionID, formulation string, options []models.Option) (*models.Question, error) {
	args := m.Called(ctx, questionID, formulation, options)
	q, _ := args.Get(0).(*models.Question)
	return q, args.Error(1)
}

func (m *MockQuestionBankService) UpdateFormulation(ctx context.Context, questionID, formulation string) (*models.Question, error) {
	args := m.Called(ctx, questionID, formulation)
	q, _ := args.Get(0).(*models.Question)
	return q, args.Error(1)
}

func (m *MockQuestionBankService) Count(ctx context.Context, testID uint) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionBankService) CountForTests(ctx context.Context, testIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, testIDs)
	counts, _ := args.Get(0).(map[uint]int64)
	return counts, args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateSubject(ctx context.Context, req *models.SubjectCreateRequest, userID string) (*models.Subject, error) {
	args := m.Called(ctx, req, userID)
	s, _ := args.Get(0).(*models.Subject)
	return s, args.Error(1)
}

func (m *MockCatalogService) GetSubject(ctx context.Context, id uint) (*models.Subject, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Subject)
	return s, args.Error(1)
}

func (m *MockCatalogService) UpdateSubject(ctx context.Context, id uint, req *models.SubjectUpdateRequest) (*models.Subject, error) {
	args := m.Called(ctx, id, req)
	s, _ := args.Get(0).(*models.Subject)
	return s, args.Error(1)
}

func (m *MockCatalogService) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]*models.Subject)
	return s, args.Error(1)
}

func (m *MockCatalogService) DeleteSubject(ctx context.Context, id uint) (*models.DeleteSummary, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.DeleteSummary)
	return s, args.Error(1)
}

func (m *MockCatalogService) CreateTest(ctx context.Context, req *models.TestCreateRequest, userID string) (*models.Test, error) {
	args := m.Called(ctx, req, userID)
	t, _ := args.Get(0).(*models.Test)
	return t, args.Error(1)
}

func (m *MockCatalogService) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Test)
	return t, args.Error(1)
}

func (m *MockCatalogService) UpdateTest(ctx context.Context, id uint, req *models.TestUpdateRequest) (*models.Test, error) {
	args := m.Called(ctx, id, req)
	t, _ := args.Get(0).(*models.Test)
	return t, args.Error(1)
}

func (m *MockCatalogService) ListTests(ctx context.Context, filters repositories.TestFilters) (*models.TestListResponse, error) {
	args := m.Called(ctx, filters)
	l, _ := args.Get(0).(*models.TestListResponse)
	return l, args.Error(1)
}

func (m *MockCatalogService) DeleteTest(ctx context.Context, id uint) (*models.DeleteSummary, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.DeleteSummary)
	return s, args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportRunResults(ctx context.Context, lecturerID, runID string) ([]byte, error) {
	args := m.Called(ctx, lecturerID, runID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockExportService) ExportRunResultsCSV(ctx context.Context, lecturerID, runID string) ([]byte, error) {
	args := m.Called(ctx, lecturerID, runID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type mockServiceManager struct {
	catalog      *MockCatalogService
	questionBank *MockQuestionBankService
	run          *MockRunService
	export       *MockExportService
}

func (m *mockServiceManager) Catalog() services.CatalogService           { return m.catalog }
func (m *mockServiceManager) QuestionBank() services.QuestionBankService { return m.questionBank }
func (m *mockServiceManager) Run() services.RunService                   { return m.run }
func (m *mockServiceManager) Export() services.ExportService             { return m.export }
