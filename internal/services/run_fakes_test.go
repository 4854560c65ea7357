package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
)

// fakeRunRepository is an in-memory RunRepository with the same active run rules
// as the Mongo ledger.
type fakeRunRepository struct {
	mu   sync.Mutex
	runs []*models.TestRun
	seq  int

	// appendErr, when set, fails the next AppendResult once.
	appendErr error
}

func newFakeRunRepository() *fakeRunRepository {
	return &fakeRunRepository{}
}

func cloneRun(run *models.TestRun) *models.TestRun {
	out := *run
	out.Results = append([]models.RunResult{}, run.Results...)
	return &out
}

func (f *fakeRunRepository) Launch(ctx context.Context, run *models.TestRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.runs {
		if r.Active && r.TestID == run.TestID && r.LecturerID == run.LecturerID {
			return repositories.ErrDuplicateRun
		}
	}
	f.seq++
	run.ID = fmt.Sprintf("run-%d", f.seq)
	run.Results = []models.RunResult{}
	f.runs = append(f.runs, cloneRun(run))
	return nil
}

func (f *fakeRunRepository) GetByID(ctx context.Context, runID string) (*models.TestRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.runs {
		if r.ID == runID {
			return cloneRun(r), nil
		}
	}
	return nil, repositories.ErrRunNotFound
}

func (f *fakeRunRepository) GetActive(ctx context.Context, testID uint, lecturerID string) (*models.TestRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.runs {
		if r.Active && r.TestID == testID && r.LecturerID == lecturerID {
			return cloneRun(r), nil
		}
	}
	return nil, repositories.ErrRunNotFound
}

func (f *fakeRunRepository) ListActive(ctx context.Context) ([]*models.TestRun, error) {
	active := true
	return f.List(ctx, repositories.RunFilters{Active: &active})
}

func (f *fakeRunRepository) ListActiveTestIDs(ctx context.Context) ([]uint, error) {
	runs, _ := f.ListActive(ctx)
	return runTestIDs(runs), nil
}

func (f *fakeRunRepository) List(ctx context.Context, filters repositories.RunFilters) ([]*models.TestRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.TestRun
	for _, r := range f.runs {
		if filters.TestID != nil && r.TestID != *filters.TestID {
			continue
		}
		if filters.LecturerID != "" && r.LecturerID != filters.LecturerID {
			continue
		}
		if filters.Active != nil && r.Active != *filters.Active {
			continue
		}
		out = append(out, cloneRun(r))
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (f *fakeRunRepository) LatestFor(ctx context.Context, lecturerID string, testID uint) ([]*models.TestRun, error) {
	inactive := false
	runs, _ := f.List(ctx, repositories.RunFilters{TestID: &testID, LecturerID: lecturerID, Active: &inactive})
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].LaunchedAt.After(runs[j].LaunchedAt)
	})
	return runs, nil
}

func (f *fakeRunRepository) AppendResult(ctx context.Context, runID string, result *models.RunResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.appendErr; err != nil {
		f.appendErr = nil
		return err
	}

	for _, r := range f.runs {
		if r.ID == runID && r.Active {
			r.Results = append(r.Results, *result)
			return nil
		}
	}
	return repositories.ErrRunNotFound
}

func (f *fakeRunRepository) Stop(ctx context.Context, testID uint, lecturerID string) (*models.TestRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.runs {
		if r.Active && r.TestID == testID && r.LecturerID == lecturerID {
			r.Active = false
			out := cloneRun(r)
			out.SortResults()
			return out, nil
		}
	}
	return nil, repositories.ErrRunNotFound
}

func (f *fakeRunRepository) CountActiveForTest(ctx context.Context, testID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, r := range f.runs {
		if r.Active && r.TestID == testID {
			n++
		}
	}
	return n, nil
}

// results returns a snapshot of the results stored for runID
func (f *fakeRunRepository) results(runID string) []models.RunResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.runs {
		if r.ID == runID {
			return append([]models.RunResult{}, r.Results...)
		}
	}
	return nil
}
