package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/quizer-service/internal/config"
	"github.com/SAP-F-2025/quizer-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// MigrateCatalog creates or updates the subject and test tables
func MigrateCatalog(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Subject{}, &models.Test{}); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}
