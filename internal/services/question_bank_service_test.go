package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newQuestionBankForTest() (QuestionBankService, *MockQuestionRepository, *MockCatalogRepository) {
	questions := new(MockQuestionRepository)
	catalog := new(MockCatalogRepository)
	svc := NewQuestionBankService(questions, catalog, validator.New(), discardLogger())
	return svc, questions, catalog
}

func singleChoice(formulation string) *models.Question {
	return &models.Question{
		Formulation: formulation,
		Options: []models.Option{
			{Text: "yes", IsCorrect: true},
			{Text: "no"},
		},
	}
}

func TestQuestionBankService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and stores a valid question", func(t *testing.T) {
		svc, questions, catalog := newQuestionBankForTest()
		catalog.On("GetTest", ctx, uint(7)).Return(&models.Test{ID: 7}, nil)
		questions.On("Create", ctx, mock.AnythingOfType("*models.Question")).Return(nil)

		q := &models.Question{
			Formulation: "  pick primes  ",
			Multiselect: true,
			Options: []models.Option{
				{Text: "2", IsCorrect: true},
				{Text: "3", IsCorrect: true},
				{Text: "4"},
			},
		}
		created, err := svc.Add(ctx, 7, q)

		require.NoError(t, err)
		assert.Equal(t, uint(7), created.TestID)
		assert.Equal(t, "pick primes", created.Formulation)
		assert.Equal(t, 2, created.RequiredAnswers)
		assert.True(t, created.Multiselect)
		questions.AssertExpectations(t)
	})

	t.Run("single choice with two correct options", func(t *testing.T) {
		svc, questions, catalog := newQuestionBankForTest()
		catalog.On("GetTest", ctx, uint(7)).Return(&models.Test{ID: 7}, nil)

		q := &models.Question{
			Formulation: "pick one",
			Options: []models.Option{
				{Text: "a", IsCorrect: true},
				{Text: "b", IsCorrect: true},
				{Text: "c"},
			},
		}
		_, err := svc.Add(ctx, 7, q)

		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.False(t, q.Multiselect)
		questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown test", func(t *testing.T) {
		svc, questions, catalog := newQuestionBankForTest()
		catalog.On("GetTest", ctx, uint(9)).Return(nil, repositories.ErrNotFound)

		_, err := svc.Add(ctx, 9, singleChoice("q"))

		assert.ErrorIs(t, err, ErrTestNotFound)
		questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid question is rejected before storage", func(t *testing.T) {
		svc, questions, catalog := newQuestionBankForTest()
		catalog.On("GetTest", ctx, uint(7)).Return(&models.Test{ID: 7}, nil)

		q := &models.Question{
			Formulation: "no correct option",
			Options:     []models.Option{{Text: "a"}, {Text: "b"}},
		}
		_, err := svc.Add(ctx, 7, q)

		assert.True(t, IsValidation(err))
		questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestQuestionBankService_AddBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("all valid", func(t *testing.T) {
		svc, questions, catalog := newQuestionBankForTest()
		catalog.On("GetTest", ctx, uint(1)).Return(&models.Test{ID: 1}, nil)
		questions.On("CreateBatch", ctx, mock.Anything).Return(nil)

		n, err := svc.AddBatch(ctx, 1, []*models.Question{singleChoice("a"), singleChoice("b")})

		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("one invalid question rejects the batch", func(t *testing.T) {
		svc, questions, catalog := newQuestionBankForTest()
		catalog.On("GetTest", ctx, uint(1)).Return(&models.Test{ID: 1}, nil)

		bad := singleChoice("")
		_, err := svc.AddBatch(ctx, 1, []*models.Question{singleChoice("a"), bad})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "question 2")
		questions.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("single choice with two correct options rejects the batch", func(t *testing.T) {
		svc, questions, catalog := newQuestionBankForTest()
		catalog.On("GetTest", ctx, uint(1)).Return(&models.Test{ID: 1}, nil)

		bad := singleChoice("both")
		bad.Options[1].IsCorrect = true
		_, err := svc.AddBatch(ctx, 1, []*models.Question{singleChoice("a"), bad})

		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "question 2")
		questions.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})
}

func TestQuestionBankService_DeleteOne(t *testing.T) {
	ctx := context.Background()

	t.Run("reports zero when nothing matches", func(t *testing.T) {
		svc, questions, _ := newQuestionBankForTest()
		questions.On("DeleteOne", ctx, uint(3), "missing").Return(int64(0), nil)

		n, err := svc.DeleteOne(ctx, 3, " missing ")

		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("blank identifier", func(t *testing.T) {
		svc, _, _ := newQuestionBankForTest()

		_, err := svc.DeleteOne(ctx, 3, "   ")

		assert.ErrorIs(t, err, ErrInvalidQuestionRequest)
	})
}

func TestQuestionBankService_DeleteAll(t *testing.T) {
	ctx := context.Background()
	svc, questions, _ := newQuestionBankForTest()
	questions.On("DeleteByTest", ctx, uint(3)).Return(int64(4), nil)

	n, err := svc.DeleteAll(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestQuestionBankService_Update(t *testing.T) {
	ctx := context.Background()

	stored := func() *models.Question {
		q := singleChoice("old")
		q.ID = "q1"
		q.TestID = 2
		q.RequiredAnswers = 1
		return q
	}

	t.Run("replaces formulation and options", func(t *testing.T) {
		svc, questions, _ := newQuestionBankForTest()
		questions.On("GetByID", ctx, "q1").Return(stored(), nil)
		questions.On("Update", ctx, mock.AnythingOfType("*models.Question")).Return(nil)

		updated, err := svc.Update(ctx, "q1", " new ", []models.Option{
			{Text: " x "},
			{Text: "y", IsCorrect: true},
			{Text: "z"},
		})

		require.NoError(t, err)
		assert.Equal(t, "new", updated.Formulation)
		assert.Equal(t, []string{"y"}, updated.CorrectOptions())
		assert.Equal(t, "x", updated.Options[0].Text)
	})

	t.Run("single choice cannot gain a second correct option", func(t *testing.T) {
		svc, questions, _ := newQuestionBankForTest()
		questions.On("GetByID", ctx, "q1").Return(stored(), nil)

		_, err := svc.Update(ctx, "q1", "new", []models.Option{
			{Text: "x", IsCorrect: true},
			{Text: "y", IsCorrect: true},
		})

		assert.True(t, IsValidation(err))
		questions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("formulation only keeps options", func(t *testing.T) {
		svc, questions, _ := newQuestionBankForTest()
		questions.On("GetByID", ctx, "q1").Return(stored(), nil)
		questions.On("Update", ctx, mock.AnythingOfType("*models.Question")).Return(nil)

		updated, err := svc.UpdateFormulation(ctx, "q1", "image question")

		require.NoError(t, err)
		assert.Equal(t, "image question", updated.Formulation)
		assert.Len(t, updated.Options, 2)
	})

	t.Run("missing question", func(t *testing.T) {
		svc, questions, _ := newQuestionBankForTest()
		questions.On("GetByID", ctx, "nope").Return(nil, repositories.ErrNotFound)

		_, err := svc.UpdateFormulation(ctx, "nope", "x")

		assert.ErrorIs(t, err, ErrQuestionNotFound)
	})
}

func TestQuestionBankService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, questions, _ := newQuestionBankForTest()
	questions.On("CountByTest", ctx, uint(5)).Return(int64(0), errors.New("connection refused"))

	_, err := svc.Count(ctx, 5)

	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}
