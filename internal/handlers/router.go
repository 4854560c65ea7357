package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/middleware"
	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/monitoring"
	"github.com/SAP-F-2025/quizer-service/internal/services"
	"github.com/SAP-F-2025/quizer-service/internal/utils"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the HTTP concerns that sit outside the handlers
type RouterConfig struct {
	AllowedOrigins []string
	Resolver       middleware.IdentityResolver
	TimeLimiter    *middleware.UserRateLimiter
}

type HandlerManager struct {
	catalogHandler  *CatalogHandler
	questionHandler *QuestionHandler
	runHandler      *RunHandler
	attemptHandler  *AttemptHandler
	logger          utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		catalogHandler:  NewCatalogHandler(serviceManager.Catalog(), validator, logger),
		questionHandler: NewQuestionHandler(serviceManager.QuestionBank(), validator, logger),
		runHandler:      NewRunHandler(serviceManager.Run(), serviceManager.Export(), validator, logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Run(), validator, logger),
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, cfg RouterConfig) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(utils.ContextLogger(hm.logger))
	router.Use(utils.LoggerMiddleware(hm.logger))
	router.Use(monitoring.MetricsMiddleware())

	router.GET("/health", HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(cfg.Resolver))

	// Any authenticated user
	{
		v1.GET("/runs/active", hm.runHandler.GetActiveRuns)

		attempts := v1.Group("/attempts")
		attempts.POST("", hm.attemptHandler.StartAttempt)
		attempts.POST("/submit", hm.attemptHandler.SubmitAttempt)
		if cfg.TimeLimiter != nil {
			attempts.GET("/time-left", cfg.TimeLimiter.Middleware(), hm.attemptHandler.GetTimeLeft)
		} else {
			attempts.GET("/time-left", hm.attemptHandler.GetTimeLeft)
		}
	}

	lecturer := v1.Group("")
	lecturer.Use(middleware.RequireRole(models.RoleLecturer))
	{
		subjects := lecturer.Group("/subjects")
		{
			subjects.POST("", hm.catalogHandler.CreateSubject)
			subjects.GET("", hm.catalogHandler.ListSubjects)
			subjects.GET("/:id", hm.catalogHandler.GetSubject)
			subjects.PUT("/:id", hm.catalogHandler.UpdateSubject)
			subjects.DELETE("/:id", hm.catalogHandler.DeleteSubject)
		}

		tests := lecturer.Group("/tests")
		{
			tests.POST("", hm.catalogHandler.CreateTest)
			tests.GET("", hm.catalogHandler.ListTests)
			tests.GET("/launchable", hm.runHandler.GetLaunchableTests)
			tests.GET("/:id", hm.catalogHandler.GetTest)
			tests.PUT("/:id", hm.catalogHandler.UpdateTest)
			tests.DELETE("/:id", hm.catalogHandler.DeleteTest)

			// Question pool of a test
			tests.GET("/:id/questions", hm.questionHandler.ListQuestions)
			tests.POST("/:id/questions", hm.questionHandler.CreateQuestion)
			tests.POST("/:id/questions/batch", hm.questionHandler.CreateQuestionsBatch)
			tests.DELETE("/:id/questions", hm.questionHandler.DeleteQuestion)
			tests.DELETE("/:id/questions/all", hm.questionHandler.DeleteAllQuestions)
		}

		questions := lecturer.Group("/questions")
		{
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
		}

		runs := lecturer.Group("/runs")
		{
			runs.POST("", hm.runHandler.LaunchRun)
			runs.POST("/stop", hm.runHandler.StopRun)
			runs.GET("", hm.runHandler.ListRuns)
			runs.GET("/running", hm.runHandler.GetRunningTests)
			runs.GET("/running/:test_id", hm.runHandler.GetRunningResults)
			runs.GET("/latest", hm.runHandler.GetLatestResults)
			runs.GET("/:id", hm.runHandler.GetRun)
			runs.GET("/:id/export", hm.runHandler.ExportRun)
		}
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quizer-service",
		"time":    time.Now().UTC(),
	})
}
