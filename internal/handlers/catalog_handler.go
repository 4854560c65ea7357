package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/SAP-F-2025/quizer-service/internal/services"
	"github.com/SAP-F-2025/quizer-service/internal/utils"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
	validator      *validator.Validator
}

func NewCatalogHandler(
	catalogService services.CatalogService,
	validator *validator.Validator,
	logger utils.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
		validator:      validator,
	}
}

// ===== SUBJECTS =====

// @Router /subjects [post]
func (h *CatalogHandler) CreateSubject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SubjectCreateRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	subject, err := h.catalogService.CreateSubject(c.Request.Context(), &req, user.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.catalogService.ListSubjects(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// @Router /subjects/{id} [get]
func (h *CatalogHandler) GetSubject(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	subject, err := h.catalogService.GetSubject(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// @Router /subjects/{id} [put]
func (h *CatalogHandler) UpdateSubject(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req models.SubjectUpdateRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	subject, err := h.catalogService.UpdateSubject(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// DeleteSubject removes a subject with all its tests and their questions
// @Router /subjects/{id} [delete]
func (h *CatalogHandler) DeleteSubject(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting subject", "subject_id", id)

	summary, err := h.catalogService.DeleteSubject(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ===== TESTS =====

// @Router /tests [post]
func (h *CatalogHandler) CreateTest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.TestCreateRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	test, err := h.catalogService.CreateTest(c.Request.Context(), &req, user.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// @Router /tests [get]
func (h *CatalogHandler) ListTests(c *gin.Context) {
	var filters repositories.TestFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	list, err := h.catalogService.ListTests(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// @Router /tests/{id} [get]
func (h *CatalogHandler) GetTest(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	test, err := h.catalogService.GetTest(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// @Router /tests/{id} [put]
func (h *CatalogHandler) UpdateTest(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req models.TestUpdateRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	test, err := h.catalogService.UpdateTest(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest removes a test that is not running, together with its questions
// @Router /tests/{id} [delete]
func (h *CatalogHandler) DeleteTest(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting test", "test_id", id)

	summary, err := h.catalogService.DeleteTest(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
