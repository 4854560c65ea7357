package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	QuestionsCollection = "questions"
	RunsCollection      = "test_runs"
)

// EnsureIndexes creates the indexes both collections rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(QuestionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "test_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("test_id_created_at"),
	})
	if err != nil {
		return fmt.Errorf("failed to create question index: %w", err)
	}

	_, err = db.Collection(RunsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// At most one active run per (test, lecturer).
			Keys: bson.D{{Key: "test_id", Value: 1}, {Key: "lecturer_id", Value: 1}},
			Options: options.Index().
				SetName("one_active_run_per_lecturer").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys:    bson.D{{Key: "lecturer_id", Value: 1}, {Key: "launched_at", Value: -1}},
			Options: options.Index().SetName("lecturer_launched_at"),
		},
		{
			Keys:    bson.D{{Key: "active", Value: 1}},
			Options: options.Index().SetName("active"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create run indexes: %w", err)
	}

	return nil
}

func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// toUint converts a numeric BSON value decoded into interface{} back to a test id
func toUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case int32:
		return uint(n), n >= 0
	case int64:
		return uint(n), n >= 0
	case float64:
		return uint(n), n >= 0
	case uint:
		return n, true
	default:
		return 0, false
	}
}
