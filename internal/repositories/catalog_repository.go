package repositories

import (
	"context"

	"github.com/SAP-F-2025/quizer-service/internal/models"
)

// CatalogRepository persists subjects and tests
type CatalogRepository interface {
	// Subjects
	CreateSubject(ctx context.Context, subject *models.Subject) error
	GetSubject(ctx context.Context, id uint) (*models.Subject, error)
	UpdateSubject(ctx context.Context, subject *models.Subject) error
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	// DeleteSubject removes the subject with its tests and returns the removed test ids.
	DeleteSubject(ctx context.Context, id uint) ([]uint, error)

	// Tests
	CreateTest(ctx context.Context, test *models.Test) error
	GetTest(ctx context.Context, id uint) (*models.Test, error)
	UpdateTest(ctx context.Context, test *models.Test) error
	DeleteTest(ctx context.Context, id uint) error
	ListTests(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
	GetTestsByIDs(ctx context.Context, ids []uint) ([]*models.Test, error)
}
