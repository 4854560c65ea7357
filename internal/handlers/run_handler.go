package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/SAP-F-2025/quizer-service/internal/services"
	"github.com/SAP-F-2025/quizer-service/internal/utils"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RunHandler struct {
	BaseHandler
	runService    services.RunService
	exportService services.ExportService
	validator     *validator.Validator
}

func NewRunHandler(
	runService services.RunService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *RunHandler {
	return &RunHandler{
		BaseHandler:   NewBaseHandler(logger),
		runService:    runService,
		exportService: exportService,
		validator:     validator,
	}
}

// LaunchRun starts a run of a test for the calling lecturer
// @Router /runs [post]
func (h *RunHandler) LaunchRun(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.LaunchRunRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Launching test run", "test_id", req.TestID)

	run, err := h.runService.LaunchRun(c.Request.Context(), user.UserID, req.TestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, run)
}

// StopRun stops the caller's run of a test and returns its results
// @Router /runs/stop [post]
func (h *RunHandler) StopRun(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.StopRunRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Stopping test run", "test_id", req.TestID)

	run, err := h.runService.StopRun(c.Request.Context(), user.UserID, req.TestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetRunningTests lists the caller's active runs with their results so far
// @Router /runs/running [get]
func (h *RunHandler) GetRunningTests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	running, err := h.runService.LecturerRunningTests(c.Request.Context(), user.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, running)
}

// GetRunningResults returns the results of the caller's active run of a test
// @Router /runs/running/{test_id} [get]
func (h *RunHandler) GetRunningResults(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	testID := ParseUintParam(c, "test_id")
	if testID == 0 {
		return
	}

	run, err := h.runService.RunningResults(c.Request.Context(), user.UserID, testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetLatestResults returns the caller's stopped runs of a test, newest first
// @Router /runs/latest [get]
func (h *RunHandler) GetLatestResults(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	testID := ParseUintQuery(c, "test_id")
	if testID == 0 {
		return
	}

	runs, err := h.runService.LatestResults(c.Request.Context(), user.UserID, testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

// ListRuns returns run history filtered by query parameters
// @Router /runs [get]
func (h *RunHandler) ListRuns(c *gin.Context) {
	var filters repositories.RunFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	runs, err := h.runService.ListRuns(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

// GetRun returns one run with its results sorted by submission
// @Router /runs/{id} [get]
func (h *RunHandler) GetRun(c *gin.Context) {
	runID := ParseStringIDParam(c, "id")
	if runID == "" {
		return
	}

	run, err := h.runService.GetRun(c.Request.Context(), runID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// ExportRun downloads the results of one of the caller's runs as xlsx or csv
// @Router /runs/{id}/export [get]
func (h *RunHandler) ExportRun(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	runID := ParseStringIDParam(c, "id")
	if runID == "" {
		return
	}

	var (
		data        []byte
		err         error
		contentType = xlsxContentType
		extension   = "xlsx"
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		data, err = h.exportService.ExportRunResults(c.Request.Context(), user.UserID, runID)
	case "csv":
		data, err = h.exportService.ExportRunResultsCSV(c.Request.Context(), user.UserID, runID)
		contentType, extension = "text/csv", "csv"
	default:
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported export format", nil)
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s-results.%s"`, runID, extension))
	c.Data(http.StatusOK, contentType, data)
}

// GetLaunchableTests lists tests that are not running anywhere
// @Router /tests/launchable [get]
func (h *RunHandler) GetLaunchableTests(c *gin.Context) {
	tests, err := h.runService.LaunchableTests(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// GetActiveRuns lists every running test a student can join
// @Router /runs/active [get]
func (h *RunHandler) GetActiveRuns(c *gin.Context) {
	runs, err := h.runService.ActiveRuns(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}
