package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionMongo struct {
	col *mongo.Collection
}

func NewQuestionMongo(db *mongo.Database) repositories.QuestionRepository {
	return &QuestionMongo{col: db.Collection(QuestionsCollection)}
}

func prepareInsert(q *models.Question, now time.Time) {
	if q.ID == "" {
		q.ID = primitive.NewObjectID().Hex()
	}
	if q.Options == nil {
		q.Options = []models.Option{}
	}
	q.CreatedAt = now
	q.UpdatedAt = now
}

func (r *QuestionMongo) Create(ctx context.Context, question *models.Question) error {
	prepareInsert(question, time.Now().UTC())
	if _, err := r.col.InsertOne(ctx, question); err != nil {
		return translateError(err, "failed to insert question")
	}
	return nil
}

func (r *QuestionMongo) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	// BSON dates have millisecond precision, so each question gets its own millisecond
	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]interface{}, 0, len(questions))
	for i, q := range questions {
		prepareInsert(q, now.Add(time.Duration(i)*time.Millisecond))
		docs = append(docs, q)
	}

	if _, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return translateError(err, "failed to insert questions")
	}
	return nil
}

func (r *QuestionMongo) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&question); err != nil {
		return nil, translateError(err, "question")
	}
	return &question, nil
}

func (r *QuestionMongo) Update(ctx context.Context, question *models.Question) error {
	question.UpdatedAt = time.Now().UTC()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": question.ID}, bson.M{"$set": bson.M{
		"formulation": question.Formulation,
		"options":     question.Options,
		"tasks_num":   question.RequiredAnswers,
		"multiselect": question.Multiselect,
		"with_images": question.WithImages,
		"updated_at":  question.UpdatedAt,
	}})
	if err != nil {
		return translateError(err, "failed to update question")
	}
	if res.MatchedCount == 0 {
		return translateError(mongo.ErrNoDocuments, "question")
	}
	return nil
}

func (r *QuestionMongo) ListByTest(ctx context.Context, testID uint) ([]*models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.col.Find(ctx, bson.M{"test_id": testID}, opts)
	if err != nil {
		return nil, translateError(err, "failed to list questions")
	}

	questions := make([]*models.Question, 0)
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, translateError(err, "failed to decode questions")
	}
	return questions, nil
}

func (r *QuestionMongo) CountByTest(ctx context.Context, testID uint) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"test_id": testID})
	if err != nil {
		return 0, translateError(err, "failed to count questions")
	}
	return n, nil
}

func (r *QuestionMongo) CountByTests(ctx context.Context, testIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(testIDs))
	if len(testIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"test_id": bson.M{"$in": testIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$test_id", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateError(err, "failed to aggregate question counts")
	}

	var rows []struct {
		TestID uint  `bson:"_id"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translateError(err, "failed to decode question counts")
	}
	for _, row := range rows {
		counts[row.TestID] = row.Count
	}
	return counts, nil
}

func questionMatchFilter(testID uint, formulationOrID string) bson.M {
	return bson.M{
		"test_id": testID,
		"$or": bson.A{
			bson.M{"_id": formulationOrID},
			bson.M{"formulation": formulationOrID},
		},
	}
}

// DeleteOne removes a single question of the test matched by id or by formulation
func (r *QuestionMongo) DeleteOne(ctx context.Context, testID uint, formulationOrID string) (int64, error) {
	res, err := r.col.DeleteOne(ctx, questionMatchFilter(testID, formulationOrID))
	if err != nil {
		return 0, translateError(err, "failed to delete question")
	}
	return res.DeletedCount, nil
}

func (r *QuestionMongo) DeleteByTest(ctx context.Context, testID uint) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"test_id": testID})
	if err != nil {
		return 0, translateError(err, fmt.Sprintf("failed to delete questions of test %d", testID))
	}
	return res.DeletedCount, nil
}

func (r *QuestionMongo) DeleteByTests(ctx context.Context, testIDs []uint) (int64, error) {
	if len(testIDs) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"test_id": bson.M{"$in": testIDs}})
	if err != nil {
		return 0, translateError(err, "failed to delete questions")
	}
	return res.DeletedCount, nil
}
