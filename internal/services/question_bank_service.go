package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
)

// QuestionBankService manages the question pool of each test
type QuestionBankService interface {
	Add(ctx context.Context, testID uint, question *models.Question) (*models.Question, error)
	AddBatch(ctx context.Context, testID uint, questions []*models.Question) (int, error)
	ListFor(ctx context.Context, testID uint) ([]*models.Question, error)
	Get(ctx context.Context, questionID string) (*models.Question, error)

	// DeleteOne removes the question matched by formulation or id. Zero means nothing matched.
	DeleteOne(ctx context.Context, testID uint, formulationOrID string) (int64, error)
	DeleteAll(ctx context.Context, testID uint) (int64, error)
	DeleteAllForTests(ctx context.Context, testIDs []uint) (int64, error)

	Update(ctx context.Context, questionID, formulation string, options []models.Option) (*models.Question, error)
	UpdateFormulation(ctx context.Context, questionID, formulation string) (*models.Question, error)

	Count(ctx context.Context, testID uint) (int64, error)
	CountForTests(ctx context.Context, testIDs []uint) (map[uint]int64, error)
}

type questionBankService struct {
	questions repositories.QuestionRepository
	catalog   repositories.CatalogRepository
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewQuestionBankService(
	questions repositories.QuestionRepository,
	catalog repositories.CatalogRepository,
	validator *validator.Validator,
	logger *slog.Logger,
) QuestionBankService {
	return &questionBankService{
		questions: questions,
		catalog:   catalog,
		validator: validator,
		logger:    NewServiceLogger(logger, LogConfig{Service: "quizer", Component: "question_bank"}),
	}
}

func (s *questionBankService) ensureTest(ctx context.Context, testID uint) error {
	if testID == 0 {
		return ErrTestNotFound
	}
	if _, err := s.catalog.GetTest(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}
	return nil
}

func (s *questionBankService) prepare(testID uint, question *models.Question) error {
	question.TestID = testID
	s.validator.Question().Normalize(question)
	return s.validator.Question().ValidateQuestion(question)
}

func (s *questionBankService) Add(ctx context.Context, testID uint, question *models.Question) (created *models.Question, err error) {
	op := s.logger.WithOperation(ctx, "add_question", question.CreatedBy)
	defer func() { op.LogResult(fmt.Sprint(testID), "test", err) }()

	if err := s.ensureTest(ctx, testID); err != nil {
		return nil, err
	}
	if err := s.prepare(testID, question); err != nil {
		return nil, err
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to add question: %w", err)
	}
	return question, nil
}

// AddBatch validates every question before inserting any of them
func (s *questionBankService) AddBatch(ctx context.Context, testID uint, questions []*models.Question) (n int, err error) {
	op := s.logger.WithOperation(ctx, "add_questions", "")
	defer func() { op.LogResult(fmt.Sprint(testID), "test", err) }()

	if err := s.ensureTest(ctx, testID); err != nil {
		return 0, err
	}

	for _, q := range questions {
		q.TestID = testID
		s.validator.Question().Normalize(q)
	}
	if err := s.validator.Question().ValidateBatch(questions); err != nil {
		return 0, err
	}

	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		return 0, fmt.Errorf("failed to add questions: %w", err)
	}
	return len(questions), nil
}

func (s *questionBankService) ListFor(ctx context.Context, testID uint) ([]*models.Question, error) {
	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *questionBankService) Get(ctx context.Context, questionID string) (*models.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionBankService) DeleteOne(ctx context.Context, testID uint, formulationOrID string) (int64, error) {
	formulationOrID = strings.TrimSpace(formulationOrID)
	if formulationOrID == "" {
		return 0, ErrInvalidQuestionRequest
	}

	n, err := s.questions.DeleteOne(ctx, testID, formulationOrID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Logger().InfoContext(ctx, "Question delete", "test_id", testID, "deleted", n)
	return n, nil
}

func (s *questionBankService) DeleteAll(ctx context.Context, testID uint) (int64, error) {
	n, err := s.questions.DeleteByTest(ctx, testID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete questions: %w", err)
	}

	s.logger.Logger().InfoContext(ctx, "Questions deleted", "test_id", testID, "deleted", n)
	return n, nil
}

func (s *questionBankService) DeleteAllForTests(ctx context.Context, testIDs []uint) (int64, error) {
	n, err := s.questions.DeleteByTests(ctx, testIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete questions: %w", err)
	}
	return n, nil
}

func (s *questionBankService) Update(ctx context.Context, questionID, formulation string, options []models.Option) (updated *models.Question, err error) {
	op := s.logger.WithOperation(ctx, "update_question", "")
	defer func() { op.LogResult(questionID, "question", err) }()

	question, err := s.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	question.Formulation = strings.TrimSpace(formulation)
	if options != nil {
		if err := s.validator.Question().ValidateOptionsUpdate(question, options); err != nil {
			return nil, err
		}
		question.Options = make([]models.Option, len(options))
		for i, o := range options {
			question.Options[i] = models.Option{Text: strings.TrimSpace(o.Text), IsCorrect: o.IsCorrect}
		}
		question.RequiredAnswers = len(question.CorrectOptions())
	}

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.questions.Update(ctx, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

// UpdateFormulation changes only the text, used for questions whose options are images
func (s *questionBankService) UpdateFormulation(ctx context.Context, questionID, formulation string) (*models.Question, error) {
	return s.Update(ctx, questionID, formulation, nil)
}

func (s *questionBankService) Count(ctx context.Context, testID uint) (int64, error) {
	n, err := s.questions.CountByTest(ctx, testID)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

func (s *questionBankService) CountForTests(ctx context.Context, testIDs []uint) (map[uint]int64, error) {
	counts, err := s.questions.CountByTests(ctx, testIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	return counts, nil
}
