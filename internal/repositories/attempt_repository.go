package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
)

// AttemptRepository holds at most one running attempt per user
type AttemptRepository interface {
	// Begin stores attempt as the user's running attempt and returns the one it
	// replaced, if any. The swap is atomic. When the replaced value cannot be
	// decoded the new attempt is still stored and the error wraps ErrCorruptAttempt.
	Begin(ctx context.Context, attempt *models.RunningAttempt) (*models.RunningAttempt, error)
	Get(ctx context.Context, userID string) (*models.RunningAttempt, error)
	RemainingTime(ctx context.Context, userID string) (time.Duration, *models.RunningAttempt, error)
	Delete(ctx context.Context, userID string) error
	// Take atomically reads and removes the running attempt.
	Take(ctx context.Context, userID string) (*models.RunningAttempt, error)
	// Restore puts back a taken attempt unless the user already began a new one.
	// It reports whether the attempt was stored.
	Restore(ctx context.Context, attempt *models.RunningAttempt) (bool, error)
}
