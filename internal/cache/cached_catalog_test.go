package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCatalog serves tests from memory and counts store reads
type countingCatalog struct {
	repositories.CatalogRepository
	tests map[uint]*models.Test
	reads int
}

func (c *countingCatalog) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	c.reads++
	t, ok := c.tests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (c *countingCatalog) UpdateTest(ctx context.Context, test *models.Test) error {
	copied := *test
	c.tests[test.ID] = &copied
	return nil
}

func (c *countingCatalog) DeleteTest(ctx context.Context, id uint) error {
	delete(c.tests, id)
	return nil
}

func (c *countingCatalog) DeleteSubject(ctx context.Context, id uint) ([]uint, error) {
	var ids []uint
	for testID, t := range c.tests {
		if t.SubjectID == id {
			ids = append(ids, testID)
			delete(c.tests, testID)
		}
	}
	return ids, nil
}

func (c *countingCatalog) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	return nil
}

func newCachedCatalog(t *testing.T) (*CachedCatalog, *countingCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &countingCatalog{tests: map[uint]*models.Test{
		1: {ID: 1, SubjectID: 10, Name: "Algebra", TasksNum: 5, Duration: 20},
		2: {ID: 2, SubjectID: 10, Name: "Geometry", TasksNum: 3, Duration: 15},
	}}
	return NewCachedCatalog(store, NewRedisCache(client, logger), time.Minute, logger), store, mr
}

func TestCachedCatalog_GetTestReadsThrough(t *testing.T) {
	ctx := context.Background()
	catalog, store, mr := newCachedCatalog(t)

	first, err := catalog.GetTest(ctx, 1)
	require.NoError(t, err)
	second, err := catalog.GetTest(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, store.reads)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 5, second.TasksNum)
	assert.True(t, mr.Exists(testKey(1)))
	assert.Equal(t, time.Minute, mr.TTL(testKey(1)))
}

func TestCachedCatalog_MissIsNotCached(t *testing.T) {
	ctx := context.Background()
	catalog, store, mr := newCachedCatalog(t)

	_, err := catalog.GetTest(ctx, 99)
	assert.True(t, repositories.IsNotFoundError(err))
	assert.False(t, mr.Exists(testKey(99)))

	_, _ = catalog.GetTest(ctx, 99)
	assert.Equal(t, 2, store.reads)
}

func TestCachedCatalog_UpdateEvicts(t *testing.T) {
	ctx := context.Background()
	catalog, _, _ := newCachedCatalog(t)

	test, err := catalog.GetTest(ctx, 1)
	require.NoError(t, err)

	test.Duration = 45
	require.NoError(t, catalog.UpdateTest(ctx, test))

	fresh, err := catalog.GetTest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, fresh.Duration)
}

func TestCachedCatalog_DeleteEvicts(t *testing.T) {
	ctx := context.Background()
	catalog, _, mr := newCachedCatalog(t)

	_, err := catalog.GetTest(ctx, 1)
	require.NoError(t, err)
	_, err = catalog.GetTest(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteTest(ctx, 1))
	assert.False(t, mr.Exists(testKey(1)))

	ids, err := catalog.DeleteSubject(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)
	assert.False(t, mr.Exists(testKey(2)))

	_, err = catalog.GetTest(ctx, 2)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestCachedCatalog_UpdateSubjectDropsAllTests(t *testing.T) {
	ctx := context.Background()
	catalog, _, mr := newCachedCatalog(t)

	_, _ = catalog.GetTest(ctx, 1)
	_, _ = catalog.GetTest(ctx, 2)
	require.NoError(t, catalog.UpdateSubject(ctx, &models.Subject{ID: 10}))

	assert.False(t, mr.Exists(testKey(1)))
	assert.False(t, mr.Exists(testKey(2)))
}

func TestRedisCache_CorruptValueIsAMiss(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := NewRedisCache(client, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, mr.Set("k", "{not json"))

	var dest models.Test
	assert.ErrorIs(t, c.Get(ctx, "k", &dest), ErrCacheMiss)
	assert.False(t, mr.Exists("k"))
}
