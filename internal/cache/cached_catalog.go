package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
)

const testKeyPrefix = "quizer:catalog:test:"

func testKey(id uint) string {
	return fmt.Sprintf("%s%d", testKeyPrefix, id)
}

// CachedCatalog is a read-through cache for single test lookups, which every
// launch and attempt start performs. Writes go to the store and evict the entry.
type CachedCatalog struct {
	repositories.CatalogRepository
	cache  CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedCatalog(next repositories.CatalogRepository, cache CacheService, ttl time.Duration, logger *slog.Logger) *CachedCatalog {
	return &CachedCatalog{
		CatalogRepository: next,
		cache:             cache,
		ttl:               ttl,
		logger:            logger,
	}
}

func (c *CachedCatalog) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	var cached models.Test
	err := c.cache.Get(ctx, testKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.WarnContext(ctx, "Catalog cache read failed", "test_id", id, "error", err)
	}

	test, err := c.CatalogRepository.GetTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, testKey(id), test, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "Catalog cache write failed", "test_id", id, "error", err)
	}
	return test, nil
}

func (c *CachedCatalog) evict(ctx context.Context, ids ...uint) {
	for _, id := range ids {
		if err := c.cache.Delete(ctx, testKey(id)); err != nil {
			c.logger.WarnContext(ctx, "Catalog cache eviction failed", "test_id", id, "error", err)
		}
	}
}

func (c *CachedCatalog) UpdateTest(ctx context.Context, test *models.Test) error {
	err := c.CatalogRepository.UpdateTest(ctx, test)
	c.evict(ctx, test.ID)
	return err
}

func (c *CachedCatalog) DeleteTest(ctx context.Context, id uint) error {
	err := c.CatalogRepository.DeleteTest(ctx, id)
	c.evict(ctx, id)
	return err
}

func (c *CachedCatalog) DeleteSubject(ctx context.Context, id uint) ([]uint, error) {
	ids, err := c.CatalogRepository.DeleteSubject(ctx, id)
	c.evict(ctx, ids...)
	return ids, err
}

// UpdateSubject also drops every cached test because tests embed their subject
func (c *CachedCatalog) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	err := c.CatalogRepository.UpdateSubject(ctx, subject)
	if cerr := c.cache.DeletePattern(ctx, testKeyPrefix+"*"); cerr != nil {
		c.logger.WarnContext(ctx, "Catalog cache eviction failed", "subject_id", subject.ID, "error", cerr)
	}
	return err
}
