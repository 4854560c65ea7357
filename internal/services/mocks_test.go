package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) ListByTest(ctx context.Context, testID uint) ([]*models.Question, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByTest(ctx context.Context, testID uint) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) CountByTests(ctx context.Context, testIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, testIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int64), args.Error(1)
}

func (m *MockQuestionRepository) DeleteOne(ctx context.Context, testID uint, formulationOrID string) (int64, error) {
	args := m.Called(ctx, testID, formulationOrID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) DeleteByTest(ctx context.Context, testID uint) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) DeleteByTests(ctx context.Context, testIDs []uint) (int64, error) {
	args := m.Called(ctx, testIDs)
	return args.Get(0).(int64), args.Error(1)
}

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetSubject(ctx context.Context, id uint) (*models.Subject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subject), args.Error(1)
}

func (m *MockCatalogRepository) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subject), args.Error(1)
}

func (m *MockCatalogRepository) DeleteSubject(ctx context.Context, id uint) ([]uint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockCatalogRepository) CreateTest(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockCatalogRepository) UpdateTest(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockCatalogRepository) DeleteTest(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListTests(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) GetTestsByIDs(ctx context.Context, ids []uint) ([]*models.Test, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Test), args.Error(1)
}
