package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/repositories"
	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "quizer:attempt:"

type AttemptRedis struct {
	client    redis.UniversalClient
	retention time.Duration
	now       func() time.Time
}

// NewAttemptRedis stores running attempts in Redis. A positive retention expires
// attempts whose owner never comes back; zero keeps them until replaced or taken.
func NewAttemptRedis(client redis.UniversalClient, retention time.Duration) repositories.AttemptRepository {
	return &AttemptRedis{
		client:    client,
		retention: retention,
		now:       time.Now,
	}
}

func attemptKey(userID string) string {
	return attemptKeyPrefix + userID
}

func decodeAttempt(raw string) (*models.RunningAttempt, error) {
	var attempt models.RunningAttempt
	if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
		return nil, fmt.Errorf("failed to decode running attempt: %w", err)
	}
	return &attempt, nil
}

func (r *AttemptRedis) Begin(ctx context.Context, attempt *models.RunningAttempt) (*models.RunningAttempt, error) {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return nil, fmt.Errorf("failed to encode running attempt: %w", err)
	}

	key := attemptKey(attempt.UserID)
	var previous *redis.StringCmd

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		previous = pipe.GetSet(ctx, key, payload)
		if r.retention > 0 {
			pipe.Expire(ctx, key, r.retention)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to begin attempt: %w", err)
	}

	raw, err := previous.Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read previous attempt: %w", err)
	}

	orphan, err := decodeAttempt(raw)
	if err != nil {
		return nil, fmt.Errorf("%w for user %s: %v", repositories.ErrCorruptAttempt, attempt.UserID, err)
	}
	return orphan, nil
}

func (r *AttemptRedis) Get(ctx context.Context, userID string) (*models.RunningAttempt, error) {
	raw, err := r.client.Get(ctx, attemptKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repositories.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return decodeAttempt(raw)
}

func (r *AttemptRedis) RemainingTime(ctx context.Context, userID string) (time.Duration, *models.RunningAttempt, error) {
	attempt, err := r.Get(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	return attempt.Remaining(r.now()), attempt, nil
}

func (r *AttemptRedis) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, attemptKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}
	return nil
}

func (r *AttemptRedis) Take(ctx context.Context, userID string) (*models.RunningAttempt, error) {
	raw, err := r.client.GetDel(ctx, attemptKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repositories.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take attempt: %w", err)
	}
	return decodeAttempt(raw)
}

func (r *AttemptRedis) Restore(ctx context.Context, attempt *models.RunningAttempt) (bool, error) {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return false, fmt.Errorf("failed to encode running attempt: %w", err)
	}

	ok, err := r.client.SetNX(ctx, attemptKey(attempt.UserID), payload, r.retention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to restore attempt: %w", err)
	}
	return ok, nil
}
