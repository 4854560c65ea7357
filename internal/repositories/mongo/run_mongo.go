package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RunMongo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewRunMongo(db *mongo.Database) repositories.RunRepository {
	return &RunMongo{
		col: db.Collection(RunsCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func activeRunFilter(testID uint, lecturerID string) bson.M {
	return bson.M{"test_id": testID, "lecturer_id": lecturerID, "active": true}
}

// finishedRunsFilter matches the stopped runs of a test launched by the lecturer
func finishedRunsFilter(testID uint, lecturerID string) bson.M {
	return bson.M{"test_id": testID, "lecturer_id": lecturerID, "active": false}
}

// buildRunFilter translates history filters into a query document
func buildRunFilter(filters repositories.RunFilters) bson.M {
	filter := bson.M{}
	if filters.TestID != nil {
		filter["test_id"] = *filters.TestID
	}
	if filters.SubjectID != nil {
		filter["subject_id"] = *filters.SubjectID
	}
	if filters.LecturerID != "" {
		filter["lecturer_id"] = filters.LecturerID
	}
	if filters.Active != nil {
		filter["active"] = *filters.Active
	}
	if filters.DateFrom != nil || filters.DateTo != nil {
		launched := bson.M{}
		if filters.DateFrom != nil {
			launched["$gte"] = *filters.DateFrom
		}
		if filters.DateTo != nil {
			launched["$lt"] = filters.DateTo.Add(24 * time.Hour)
		}
		filter["launched_at"] = launched
	}
	return filter
}

func (r *RunMongo) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.TestRun, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err, "failed to query test runs")
	}

	runs := make([]*models.TestRun, 0)
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, translateError(err, "failed to decode test runs")
	}
	for _, run := range runs {
		run.SortResults()
	}
	return runs, nil
}

func (r *RunMongo) findOne(ctx context.Context, filter bson.M) (*models.TestRun, error) {
	var run models.TestRun
	if err := r.col.FindOne(ctx, filter).Decode(&run); err != nil {
		return nil, translateError(err, "test run")
	}
	run.SortResults()
	return &run, nil
}

func (r *RunMongo) Launch(ctx context.Context, run *models.TestRun) error {
	if run.ID == "" {
		run.ID = primitive.NewObjectID().Hex()
	}
	if run.LaunchedAt.IsZero() {
		run.LaunchedAt = r.now()
	}
	// $push needs an array, never null
	if run.Results == nil {
		run.Results = []models.RunResult{}
	}
	run.Active = true

	if _, err := r.col.InsertOne(ctx, run); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicateRun
		}
		return translateError(err, "failed to launch test run")
	}
	return nil
}

func (r *RunMongo) GetByID(ctx context.Context, runID string) (*models.TestRun, error) {
	run, err := r.findOne(ctx, bson.M{"_id": runID})
	if repositories.IsNotFoundError(err) {
		return nil, repositories.ErrRunNotFound
	}
	return run, err
}

func (r *RunMongo) GetActive(ctx context.Context, testID uint, lecturerID string) (*models.TestRun, error) {
	run, err := r.findOne(ctx, activeRunFilter(testID, lecturerID))
	if repositories.IsNotFoundError(err) {
		return nil, repositories.ErrRunNotFound
	}
	return run, err
}

func (r *RunMongo) ListActive(ctx context.Context) ([]*models.TestRun, error) {
	opts := options.Find().SetSort(bson.D{{Key: "launched_at", Value: 1}})
	return r.findMany(ctx, bson.M{"active": true}, opts)
}

func (r *RunMongo) ListActiveTestIDs(ctx context.Context) ([]uint, error) {
	values, err := r.col.Distinct(ctx, "test_id", bson.M{"active": true})
	if err != nil {
		return nil, translateError(err, "failed to list active tests")
	}

	ids := make([]uint, 0, len(values))
	for _, v := range values {
		if id, ok := toUint(v); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *RunMongo) List(ctx context.Context, filters repositories.RunFilters) ([]*models.TestRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "launched_at", Value: -1}}).
		SetLimit(int64(repositories.PageSize(filters.Limit))).
		SetSkip(int64(filters.Offset))
	return r.findMany(ctx, buildRunFilter(filters), opts)
}

func (r *RunMongo) LatestFor(ctx context.Context, lecturerID string, testID uint) ([]*models.TestRun, error) {
	opts := options.Find().SetSort(bson.D{{Key: "launched_at", Value: -1}})
	return r.findMany(ctx, finishedRunsFilter(testID, lecturerID), opts)
}

func (r *RunMongo) AppendResult(ctx context.Context, runID string, result *models.RunResult) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": runID, "active": true},
		bson.M{"$push": bson.M{"results": result}},
	)
	if err != nil {
		return translateError(err, "failed to append result")
	}
	if res.MatchedCount == 0 {
		return repositories.ErrRunNotFound
	}
	return nil
}

func (r *RunMongo) Stop(ctx context.Context, testID uint, lecturerID string) (*models.TestRun, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var run models.TestRun
	err := r.col.FindOneAndUpdate(ctx,
		activeRunFilter(testID, lecturerID),
		bson.M{"$set": bson.M{"active": false, "stopped_at": r.now()}},
		opts,
	).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrRunNotFound
		}
		return nil, translateError(err, "failed to stop test run")
	}

	run.SortResults()
	return &run, nil
}

func (r *RunMongo) CountActiveForTest(ctx context.Context, testID uint) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"test_id": testID, "active": true})
	if err != nil {
		return 0, translateError(err, "failed to count active runs")
	}
	return n, nil
}
