package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"gorm.io/gorm"
)

type CatalogPostgreSQL struct {
	db *gorm.DB
}

func NewCatalogPostgreSQL(db *gorm.DB) repositories.CatalogRepository {
	return &CatalogPostgreSQL{db: db}
}

// translateError maps gorm errors onto repository sentinels
func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// ===== SUBJECTS =====

func (c *CatalogPostgreSQL) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if err := c.db.WithContext(ctx).Create(subject).Error; err != nil {
		return translateError(err, "failed to create subject")
	}
	return nil
}

func (c *CatalogPostgreSQL) GetSubject(ctx context.Context, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := c.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, translateError(err, "subject")
	}
	return &subject, nil
}

func (c *CatalogPostgreSQL) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	result := c.db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("id = ?", subject.ID).
		Updates(map[string]interface{}{
			"name":        subject.Name,
			"description": subject.Description,
		})
	if result.Error != nil {
		return translateError(result.Error, "failed to update subject")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "subject")
	}
	return nil
}

// ListSubjects returns all subjects ordered by name with their test counts filled in
func (c *CatalogPostgreSQL) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if err := c.db.WithContext(ctx).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, translateError(err, "failed to list subjects")
	}

	var counts []struct {
		SubjectID uint
		Count     int64
	}
	err := c.db.WithContext(ctx).
		Model(&models.Test{}).
		Select("subject_id, COUNT(*) AS count").
		Group("subject_id").
		Scan(&counts).Error
	if err != nil {
		return nil, translateError(err, "failed to count tests")
	}

	bySubject := make(map[uint]int64, len(counts))
	for _, row := range counts {
		bySubject[row.SubjectID] = row.Count
	}
	for _, s := range subjects {
		s.TestsCount = bySubject[s.ID]
	}

	return subjects, nil
}

func (c *CatalogPostgreSQL) DeleteSubject(ctx context.Context, id uint) ([]uint, error) {
	var testIDs []uint

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Subject{}, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Test{}).Where("subject_id = ?", id).Pluck("id", &testIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.Test{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Subject{}, id).Error
	})
	if err != nil {
		return nil, translateError(err, "failed to delete subject")
	}

	return testIDs, nil
}

// ===== TESTS =====

func (c *CatalogPostgreSQL) CreateTest(ctx context.Context, test *models.Test) error {
	if err := c.db.WithContext(ctx).Omit("Subject").Create(test).Error; err != nil {
		return translateError(err, "failed to create test")
	}
	return nil
}

func (c *CatalogPostgreSQL) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	err := c.db.WithContext(ctx).
		Preload("Subject").
		First(&test, id).Error
	if err != nil {
		return nil, translateError(err, "test")
	}
	return &test, nil
}

func (c *CatalogPostgreSQL) UpdateTest(ctx context.Context, test *models.Test) error {
	result := c.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", test.ID).
		Updates(map[string]interface{}{
			"name":        test.Name,
			"description": test.Description,
			"tasks_num":   test.TasksNum,
			"duration":    test.Duration,
		})
	if result.Error != nil {
		return translateError(result.Error, "failed to update test")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "test")
	}
	return nil
}

func (c *CatalogPostgreSQL) DeleteTest(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return translateError(result.Error, "failed to delete test")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "test")
	}
	return nil
}

func (c *CatalogPostgreSQL) ListTests(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Test{})

	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.CreatedBy != "" {
		query = query.Where("created_by = ?", filters.CreatedBy)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "failed to count tests")
	}

	var tests []*models.Test
	err := query.
		Preload("Subject").
		Order("subject_id ASC, name ASC").
		Limit(repositories.PageSize(filters.Limit)).
		Offset(filters.Offset).
		Find(&tests).Error
	if err != nil {
		return nil, 0, translateError(err, "failed to list tests")
	}

	return tests, total, nil
}

func (c *CatalogPostgreSQL) GetTestsByIDs(ctx context.Context, ids []uint) ([]*models.Test, error) {
	if len(ids) == 0 {
		return []*models.Test{}, nil
	}
	var tests []*models.Test
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&tests).Error; err != nil {
		return nil, translateError(err, "failed to get tests")
	}
	return tests, nil
}
