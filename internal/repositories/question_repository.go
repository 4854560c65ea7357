package repositories

import (
	"context"

	"github.com/SAP-F-2025/quizer-service/internal/models"
)

// QuestionRepository stores the question pool of every test
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error

	// Test scoped queries
	ListByTest(ctx context.Context, testID uint) ([]*models.Question, error)
	CountByTest(ctx context.Context, testID uint) (int64, error)
	CountByTests(ctx context.Context, testIDs []uint) (map[uint]int64, error)

	// Deletion, every method reports how many questions were removed
	DeleteOne(ctx context.Context, testID uint, formulationOrID string) (int64, error)
	DeleteByTest(ctx context.Context, testID uint) (int64, error)
	DeleteByTests(ctx context.Context, testIDs []uint) (int64, error)
}
