package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/services"
	"github.com/SAP-F-2025/quizer-service/internal/utils"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionBankService
	validator       *validator.Validator
}

func NewQuestionHandler(
	questionService services.QuestionBankService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

func questionFromRequest(req *models.QuestionCreateRequest, userID string) *models.Question {
	return &models.Question{
		Formulation:     req.Formulation,
		RequiredAnswers: req.RequiredAnswers,
		Multiselect:     req.Multiselect,
		WithImages:      req.WithImages,
		Options:         req.Options,
		CreatedBy:       userID,
	}
}

// CreateQuestion adds a question to a test's pool
// @Router /tests/{id}/questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	testID := ParseUintParam(c, "id")
	if testID == 0 {
		return
	}

	var req models.QuestionCreateRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Creating question", "test_id", testID)

	question, err := h.questionService.Add(c.Request.Context(), testID, questionFromRequest(&req, user.UserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// CreateQuestionsBatch adds several questions at once; one invalid question rejects all
// @Router /tests/{id}/questions/batch [post]
func (h *QuestionHandler) CreateQuestionsBatch(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	testID := ParseUintParam(c, "id")
	if testID == 0 {
		return
	}

	var req models.QuestionBatchRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Creating questions batch", "test_id", testID, "count", len(req.Questions))

	questions := make([]*models.Question, 0, len(req.Questions))
	for i := range req.Questions {
		questions = append(questions, questionFromRequest(&req.Questions[i], user.UserID))
	}

	created, err := h.questionService.AddBatch(c.Request.Context(), testID, questions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Questions created", gin.H{"created": created}, "test_id", testID)
}

// ListQuestions returns the pool of a test in insertion order
// @Router /tests/{id}/questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	testID := ParseUintParam(c, "id")
	if testID == 0 {
		return
	}

	questions, err := h.questionService.ListFor(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// DeleteQuestion removes one question matched by formulation or id
// @Router /tests/{id}/questions [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	testID := ParseUintParam(c, "id")
	if testID == 0 {
		return
	}

	var req models.QuestionDeleteRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	deleted, err := h.questionService.DeleteOne(c.Request.Context(), testID, req.Question)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if deleted == 0 {
		h.RespondWithError(c, http.StatusNotFound, "Question not found", nil)
		return
	}

	c.JSON(http.StatusOK, DeleteCountResponse{Deleted: deleted})
}

// DeleteAllQuestions empties the pool of a test
// @Router /tests/{id}/questions/all [delete]
func (h *QuestionHandler) DeleteAllQuestions(c *gin.Context) {
	testID := ParseUintParam(c, "id")
	if testID == 0 {
		return
	}

	deleted, err := h.questionService.DeleteAll(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteCountResponse{Deleted: deleted})
}

// GetQuestion returns one question with its correct options
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := ParseStringIDParam(c, "id")
	if questionID == "" {
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// UpdateQuestion edits a question. Without options only the formulation changes,
// which is how image questions are edited.
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := ParseStringIDParam(c, "id")
	if questionID == "" {
		return
	}

	var req models.QuestionUpdateRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Updating question", "question_id", questionID)

	var (
		question *models.Question
		err      error
	)
	if req.Options == nil {
		question, err = h.questionService.UpdateFormulation(c.Request.Context(), questionID, req.Formulation)
	} else {
		question, err = h.questionService.Update(c.Request.Context(), questionID, req.Formulation, req.Options)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}
