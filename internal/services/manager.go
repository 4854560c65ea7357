package services

import (
	"log/slog"

	"github.com/SAP-F-2025/quizer-service/internal/events"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
)

// ServiceManager groups the services exposed over HTTP
type ServiceManager interface {
	Catalog() CatalogService
	QuestionBank() QuestionBankService
	Run() RunService
	Export() ExportService
}

// Dependencies are the stores and adapters the services are built from
type Dependencies struct {
	Catalog   repositories.CatalogRepository
	Questions repositories.QuestionRepository
	Attempts  repositories.AttemptRepository
	Runs      repositories.RunRepository
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger
}

type serviceManager struct {
	catalog      CatalogService
	questionBank QuestionBankService
	run          RunService
	export       ExportService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	questionBank := NewQuestionBankService(deps.Questions, deps.Catalog, deps.Validator, deps.Logger)
	notifier := NewRunEventService(deps.Publisher, deps.Logger)

	return &serviceManager{
		catalog:      NewCatalogService(deps.Catalog, deps.Runs, questionBank, deps.Validator, deps.Logger),
		questionBank: questionBank,
		run:          NewRunService(deps.Questions, deps.Attempts, deps.Runs, deps.Catalog, notifier, deps.Logger),
		export:       NewExportService(deps.Runs, deps.Logger),
	}
}

func (m *serviceManager) Catalog() CatalogService           { return m.catalog }
func (m *serviceManager) QuestionBank() QuestionBankService { return m.questionBank }
func (m *serviceManager) Run() RunService                   { return m.run }
func (m *serviceManager) Export() ExportService             { return m.export }
