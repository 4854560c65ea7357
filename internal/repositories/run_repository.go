package repositories

import (
	"context"

	"github.com/SAP-F-2025/quizer-service/internal/models"
)

// RunRepository is the ledger of test runs and their results
type RunRepository interface {
	// Launch inserts an active run. ErrDuplicateRun when the lecturer already runs the test.
	Launch(ctx context.Context, run *models.TestRun) error
	GetByID(ctx context.Context, runID string) (*models.TestRun, error)
	GetActive(ctx context.Context, testID uint, lecturerID string) (*models.TestRun, error)

	ListActive(ctx context.Context) ([]*models.TestRun, error)
	ListActiveTestIDs(ctx context.Context) ([]uint, error)
	List(ctx context.Context, filters RunFilters) ([]*models.TestRun, error)
	LatestFor(ctx context.Context, lecturerID string, testID uint) ([]*models.TestRun, error)

	// AppendResult adds a result to an active run. ErrRunNotFound when the run is stopped or gone.
	AppendResult(ctx context.Context, runID string, result *models.RunResult) error
	Stop(ctx context.Context, testID uint, lecturerID string) (*models.TestRun, error)
	CountActiveForTest(ctx context.Context, testID uint) (int64, error)
}
