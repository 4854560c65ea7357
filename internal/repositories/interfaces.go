package repositories

import (
	"errors"
	"fmt"
	"time"
)

// ===== SHARED ERRORS =====

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")

	ErrAttemptNotFound = fmt.Errorf("running attempt: %w", ErrNotFound)
	ErrRunNotFound     = fmt.Errorf("test run: %w", ErrNotFound)
	ErrDuplicateRun    = fmt.Errorf("active test run: %w", ErrDuplicate)

	// ErrCorruptAttempt marks a stored attempt that could not be decoded.
	ErrCorruptAttempt = errors.New("corrupt running attempt")
)

// IsNotFoundError reports whether err means the requested record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is a uniqueness violation
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// ===== SHARED FILTER STRUCTS =====

type RunFilters struct {
	TestID     *uint      `json:"test_id" form:"test_id"`
	SubjectID  *uint      `json:"subject_id" form:"subject_id"`
	LecturerID string     `json:"lecturer_id" form:"lecturer_id"`
	Active     *bool      `json:"active" form:"active"`
	DateFrom   *time.Time `json:"date_from" form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `json:"date_to" form:"date_to" time_format:"2006-01-02"`
	Limit      int        `json:"limit" form:"limit"`
	Offset     int        `json:"offset" form:"offset"`
}

type TestFilters struct {
	SubjectID *uint  `json:"subject_id" form:"subject_id"`
	CreatedBy string `json:"created_by" form:"created_by"`
	Search    string `json:"search" form:"search"`
	Limit     int    `json:"limit" form:"limit"`
	Offset    int    `json:"offset" form:"offset"`
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// PageSize clamps a requested limit into [1, MaxPageSize]
func PageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
